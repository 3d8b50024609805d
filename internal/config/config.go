package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Upstream Upstream `koanf:"upstream"`
	Grid     Grid     `koanf:"grid"`
	Refresh  Refresh  `koanf:"refresh"`
}

type UpstreamKind string

const (
	UpstreamAPI UpstreamKind = "api"
	UpstreamICS UpstreamKind = "ics"
)

type Upstream struct {
	Kind    UpstreamKind  `koanf:"kind"`
	BaseURL string        `koanf:"baseurl"`
	ApiKey  string        `koanf:"apikey"`
	Timeout time.Duration `koanf:"timeout"`
	// IcsPath is a local .ics file used when Kind is "ics".
	IcsPath string `koanf:"icspath"`
}

type Grid struct {
	StartHour     int     `koanf:"starthour"`
	EndHour       int     `koanf:"endhour"`
	HeaderPixels  float64 `koanf:"headerpixels"`
	PixelsPerHour float64 `koanf:"pixelsperhour"`
	Timezone      string  `koanf:"timezone"`
}

type Refresh struct {
	Enabled bool `koanf:"enabled"`
	// Schedule is a robfig/cron spec, e.g. "@every 1m" or "*/5 * * * *".
	Schedule string `koanf:"schedule"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:8282",
		Port: 8282,
		Upstream: Upstream{
			Kind:    UpstreamAPI,
			BaseURL: "http://localhost:3000",
			Timeout: 10 * time.Second,
		},
		Grid: Grid{
			StartHour:     7,
			EndHour:       20,
			HeaderPixels:  50,
			PixelsPerHour: 60,
			Timezone:      "Local",
		},
		Refresh: Refresh{
			Enabled:  true,
			Schedule: "@every 1m",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "AGENDA_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "AGENDA_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	if err := app.Validate(); err != nil {
		return Application{}, err
	}

	return app, nil
}

// Validate rejects settings the server cannot start with. Grid hour ranges
// are checked again by the grid engine on every layout.
func (a Application) Validate() error {
	if a.Grid.StartHour < 0 || a.Grid.EndHour > 24 || a.Grid.StartHour >= a.Grid.EndHour {
		return fmt.Errorf("invalid grid hours %d-%d", a.Grid.StartHour, a.Grid.EndHour)
	}
	switch a.Upstream.Kind {
	case UpstreamAPI:
		if a.Upstream.BaseURL == "" {
			return fmt.Errorf("upstream.baseurl is required for kind %q", a.Upstream.Kind)
		}
	case UpstreamICS:
		if a.Upstream.IcsPath == "" {
			return fmt.Errorf("upstream.icspath is required for kind %q", a.Upstream.Kind)
		}
	default:
		return fmt.Errorf("unknown upstream kind %q", a.Upstream.Kind)
	}
	return nil
}
