// Package main provides the azchat CLI.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/dotcommander/azchat/internal/cmd"
	"github.com/dotcommander/azchat/internal/config"
)

// Build vars.
var (
	//nolint: gochecknoglobals
	Version = ""
	//nolint: gochecknoglobals
	CommitSHA = ""
)

func main() {
	_ = godotenv.Load()

	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	if os.Getenv("AZCHAT_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	cfg, cfgErr := config.Ensure()
	if cfgErr == nil && cfg.Quiet {
		log.SetLevel(log.WarnLevel)
	}
	cmd.Execute(cmd.BuildInfo{Version: Version, CommitSHA: CommitSHA}, cfg, cfgErr)
}
