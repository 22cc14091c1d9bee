// Package commands wires the CLI for the BLAST database configuration
// generator.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FlyBase/blast-db-configuration/internal/config"
)

var (
	cfgFile string
	cfg     *config.Configuration
)

var rootCmd = &cobra.Command{
	Use:   "blastdbconfig",
	Short: "Generate AGR BLAST database configuration from NCBI genome assemblies",
	Long: `blastdbconfig resolves the current RefSeq genome assembly for each
organism in the organisms list, reconciles the sequence files against the
archive's checksum manifests, and emits the AGR BLAST database
configuration document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.NewDefault()
		if cfgFile != "" {
			if err := cfg.LoadFromFile(cfgFile); err != nil {
				return err
			}
		}
		if err := cfg.LoadFromEnv(); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
}

// newLogger builds the process logger from the logging configuration.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(lc.Level) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
