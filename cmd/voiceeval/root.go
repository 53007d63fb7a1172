package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ent0n29/voiceeval/internal/config"
	"github.com/ent0n29/voiceeval/internal/logger"
)

const appName = "voiceeval"

var (
	cfgFile   string
	jsonLogs  bool
	debugLogs bool

	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "voiceeval runs voice interview sessions and stores their evaluations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file; environment variables take precedence")
	rootCmd.PersistentFlags().BoolVarP(&debugLogs, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLogs, "json", "j", false, "json format for logging")
}

// loadRuntime reads the configuration and builds the logger. Flags only
// switch logging options on; LOG_JSON and LOG_DEBUG still apply.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config error: %w", err)
	}
	cfg.LogJSON = cfg.LogJSON || jsonLogs
	cfg.LogDebug = cfg.LogDebug || debugLogs

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}
