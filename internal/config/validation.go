package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/conneroisu/combochart/internal/logging"
)

// validateConfig validates configuration values, reporting every problem.
func validateConfig(config *Config) error {
	return multierr.Combine(
		validateChartConfig(&config.Chart),
		validateAnimationConfig(&config.Animation),
		validateServerConfig(&config.Server),
		validateWatchConfig(&config.Watch),
		validateLogConfig(&config.Log),
	)
}

func validateChartConfig(config *ChartConfig) error {
	var err error
	if config.Width <= 0 || config.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("chart: size %gx%g must be positive", config.Width, config.Height))
	}
	m := config.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		err = multierr.Append(err, fmt.Errorf("chart: margins must not be negative"))
	}
	if m.Left+m.Right >= config.Width || m.Top+m.Bottom >= config.Height {
		err = multierr.Append(err, fmt.Errorf("chart: margins leave no room for the plot"))
	}
	for i, c := range config.Palette {
		if strings.TrimSpace(c) == "" {
			err = multierr.Append(err, fmt.Errorf("chart: palette colour %d is empty", i))
		}
	}
	return err
}

func validateAnimationConfig(config *AnimationConfig) error {
	var err error
	if config.Duration < 0 {
		err = multierr.Append(err, fmt.Errorf("animation: duration %s must not be negative", config.Duration))
	}
	if config.FPS < 0 || config.FPS > 240 {
		err = multierr.Append(err, fmt.Errorf("animation: fps %d is not in range 0-240", config.FPS))
	}
	return err
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("server: port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("server: host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

func validateWatchConfig(config *WatchConfig) error {
	if config.Debounce < 0 {
		return fmt.Errorf("watch: debounce %s must not be negative", config.Debounce)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	var err error
	if _, lerr := logging.ParseLevel(config.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log: %w", lerr))
	}
	if config.Format != "" && config.Format != "text" && config.Format != "json" {
		err = multierr.Append(err, fmt.Errorf("log: format %q must be text or json", config.Format))
	}
	return err
}
