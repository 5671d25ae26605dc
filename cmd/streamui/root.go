package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/config"
	"github.com/haowjy/meridian-streamui-go/logging"
)

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "streamui",
	Short: "Stream UI components from a tool-calling model",
	Long: `streamui serves a page that streams a weather component when the
prompt is about the weather, and the model's text otherwise.

Examples:
  streamui serve
  streamui serve --provider lorem
  streamui ask what is the weather in Paris
  streamui models --provider openai`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Version:           version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: streamui.yaml in the user config dir or .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(modelsCmd)
}

// Execute is the entry point called from main.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}

	level, err := logging.ParseLevel(loaded.Log.Level)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logging.SetLogger(logging.New(level, loaded.Log.Format, os.Stderr))

	if loaded.CapabilitiesFile != "" {
		if err := streamui.LoadCapabilitiesFromFile(loaded.CapabilitiesFile); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	cfg = loaded
	return nil
}
