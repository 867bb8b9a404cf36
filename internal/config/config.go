// Package config provides configuration management for combochart using
// Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with the COMBOCHART_ prefix. It holds chart defaults (size,
// margins, palette), animation timing, preview server settings, file
// watching and logging.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/chartdef"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/logging"
	"github.com/conneroisu/combochart/internal/scene"
)

type Config struct {
	Chart     ChartConfig     `mapstructure:"chart" yaml:"chart"`
	Animation AnimationConfig `mapstructure:"animation" yaml:"animation"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ChartConfig struct {
	Width   float64      `mapstructure:"width" yaml:"width"`
	Height  float64      `mapstructure:"height" yaml:"height"`
	Margin  chart.Margin `mapstructure:"margin" yaml:"margin"`
	Palette []string     `mapstructure:"palette" yaml:"palette"`
	Grid    bool         `mapstructure:"grid" yaml:"grid"`
	Legend  bool         `mapstructure:"legend" yaml:"legend"`
}

type AnimationConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Duration time.Duration `mapstructure:"duration" yaml:"duration"`
	// FPS is the frame rate of the preview server while transitions run.
	FPS int `mapstructure:"fps" yaml:"fps"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	m := chart.DefaultMargin()
	v.SetDefault("chart.width", 800)
	v.SetDefault("chart.height", 400)
	v.SetDefault("chart.margin.top", m.Top)
	v.SetDefault("chart.margin.right", m.Right)
	v.SetDefault("chart.margin.bottom", m.Bottom)
	v.SetDefault("chart.margin.left", m.Left)
	v.SetDefault("chart.palette", chart.DefaultPalette)
	v.SetDefault("chart.grid", true)
	v.SetDefault("chart.legend", true)

	v.SetDefault("animation.enabled", true)
	v.SetDefault("animation.duration", scene.DefaultDuration)
	v.SetDefault("animation.fps", 30)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("watch.debounce", 250*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom applies defaults to v, unmarshals and validates.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "cannot decode configuration")
	}

	if err := validateConfig(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "invalid configuration")
	}

	return &config, nil
}

// Transition is the animation setting as a scene transition.
func (c *Config) Transition() scene.Transition {
	tr := scene.DefaultTransition()
	tr.Enabled = c.Animation.Enabled
	tr.Duration = c.Animation.Duration
	return tr
}

// Defaults is what chart definitions inherit.
func (c *Config) Defaults() chartdef.Defaults {
	return chartdef.Defaults{
		Width:      c.Chart.Width,
		Height:     c.Chart.Height,
		Margin:     c.Chart.Margin,
		Palette:    c.Chart.Palette,
		Grid:       c.Chart.Grid,
		Legend:     c.Chart.Legend,
		Transition: c.Transition(),
	}
}

// FrameInterval is the delay between animation frames.
func (c *Config) FrameInterval() time.Duration {
	if c.Animation.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Animation.FPS)
}

// LoggerConfig maps the log section onto the logger.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	lc := logging.DefaultConfig()
	if lvl, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = lvl
	}
	lc.Format = c.Log.Format
	return lc
}
