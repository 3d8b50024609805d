package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/klokku/agenda/internal/app"
	"github.com/klokku/agenda/internal/cli"
	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/pkg/timezone"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	ConfigPath string
	Timezone   string
	Output     string
	Verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "agenda",
		Short:        "Print the agenda and the weekly time grid from the command line.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbose {
				log.SetLevel(log.DebugLevel)
			}
			if opts.Output != "" && opts.Output != cli.OutputJSON && opts.Output != "table" {
				return fmt.Errorf("unknown output %q, use table or json", opts.Output)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "./config/application.yaml", "configuration file")
	flags.StringVar(&opts.Timezone, "timezone", "", "IANA zone to view the agenda in, defaults to grid.timezone")
	flags.StringVarP(&opts.Output, "output", "o", "table", "output format: table or json")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&color.NoColor, "no-color", color.NoColor, "disable coloured output")

	cmd.AddCommand(newListCommand(opts), newWeekCommand(opts))
	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List upcoming events grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, tz, err := load(cmd, opts)
			if err != nil {
				return err
			}
			list := &cli.List{
				Viewer:   deps.CalendarViewService,
				Timezone: tz,
				Output:   opts.Output,
				Out:      color.Output,
			}
			return list.Do(cmd.Context())
		},
	}
}

func newWeekCommand(opts *rootOptions) *cobra.Command {
	days := 0
	cmd := &cobra.Command{
		Use:   "week [YYYY-MM-DD]",
		Short: "Show the grid placements of the week containing a date, today by default",
		Example: `
agenda week
agenda week 2024-03-15 --days 3
agenda week -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, tz, err := load(cmd, opts)
			if err != nil {
				return err
			}
			viewerZone := deps.CalendarViewService.Zone(tz)
			date := viewerZone.DateOf(time.Now())
			if len(args) == 1 {
				if date, err = timezone.ParseDate(args[0]); err != nil {
					return err
				}
			}
			week := &cli.Week{
				Viewer:   deps.CalendarViewService,
				Timezone: tz,
				Date:     date,
				Days:     days,
				Output:   opts.Output,
				Out:      color.Output,
			}
			return week.Do(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "number of days from the date instead of its Monday week")
	return cmd
}

// load builds the application services and fetches one snapshot.
func load(cmd *cobra.Command, opts *rootOptions) (*app.Dependencies, *timezone.Normalizer, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	deps, err := app.BuildDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	var tz *timezone.Normalizer
	if opts.Timezone != "" {
		if tz, err = timezone.NewNormalizer(opts.Timezone); err != nil {
			return nil, nil, err
		}
	}

	if err := deps.Snapshot.Refresh(cmd.Context()); err != nil {
		return nil, nil, err
	}
	return deps, tz, nil
}
