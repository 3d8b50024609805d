package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
