// Package cmd provides the command-line interface for combochart.
//
// Configuration System:
//
//	Settings are resolved with this precedence:
//	1. Command-line flags (--config, --port, --log-level, etc.) - highest priority
//	2. COMBOCHART_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (COMBOCHART_SERVER_PORT, etc.)
//	4. Configuration file (.combochart.yml) - lowest priority
//
// Environment Variables:
//
//	COMBOCHART_CONFIG_FILE: Path to custom configuration file
//	COMBOCHART_CHART_WIDTH: Default chart width
//	COMBOCHART_ANIMATION_DURATION: Transition duration (e.g. 500ms)
//	COMBOCHART_SERVER_PORT: Preview server port
//	And every other key following the COMBOCHART_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/combochart/internal/config"
	"github.com/conneroisu/combochart/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "combochart",
	Short: "Render animated combination charts as SVG",
	Long: `combochart renders combination charts (bars, lines, areas, scatter,
regression and waterfall series over a shared x axis and up to two y axes)
from YAML or JSON chart definitions.

Quick Start:
  combochart validate chart.yaml         Check a definition
  combochart render chart.yaml -o out    Write the settled chart as SVG
  combochart inspect chart.yaml          Show computed domains and scales
  combochart serve chart.yaml            Live preview with animation
  combochart watch charts/*.yaml -o out  Re-render on change`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .combochart.yml, can also use COMBOCHART_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the configuration file and enables
// COMBOCHART_ environment overrides.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag
//  2. COMBOCHART_CONFIG_FILE environment variable
//  3. .combochart.yml in the current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("COMBOCHART_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".combochart")
	}

	viper.SetEnvPrefix("COMBOCHART")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadRuntime loads the configuration and builds the logger every command
// shares.
func loadRuntime(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	return cfg, logging.NewLogger(lc), nil
}
