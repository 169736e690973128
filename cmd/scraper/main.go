package main

import (
	"fmt"
	"os"

	"go-locator/internal/config"
	"go-locator/internal/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "locator",
	Short:         "Search job boards and rental sites around an address",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newRunCmd(), newCheckCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config and builds the logger every command uses.
func setup() (*config.Config, logger.Logger, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, closeLog, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		FluentHost: cfg.Log.FluentHost,
		FluentPort: cfg.Log.FluentPort,
		FluentTag:  "locator.scraper",
	})
	if err != nil {
		// The console logger still works without fluent.
		log.Warn("⚠️ Fluent logging disabled", logger.Fields{"error": err.Error()})
	}
	return cfg, log, closeLog, nil
}
