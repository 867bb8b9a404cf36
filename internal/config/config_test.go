package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 800.0, cfg.Chart.Width)
	assert.Equal(t, 400.0, cfg.Chart.Height)
	assert.Equal(t, chart.DefaultMargin(), cfg.Chart.Margin)
	assert.Equal(t, chart.DefaultPalette, cfg.Chart.Palette)
	assert.True(t, cfg.Animation.Enabled)
	assert.Equal(t, 300*time.Millisecond, cfg.Animation.Duration)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
chart:
  width: 1024
  margin: {top: 10, right: 10, bottom: 30, left: 50}
animation:
  enabled: false
  duration: 1s
  fps: 60
server:
  port: 9000
  allowed_origins: ["http://localhost:3000"]
log:
  level: debug
  format: json
`)))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 1024.0, cfg.Chart.Width)
	assert.Equal(t, 400.0, cfg.Chart.Height)
	assert.Equal(t, chart.Margin{Top: 10, Right: 10, Bottom: 30, Left: 50}, cfg.Chart.Margin)
	assert.Equal(t, time.Second, cfg.Animation.Duration)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, time.Second/60, cfg.FrameInterval())

	tr := cfg.Transition()
	assert.False(t, tr.Enabled)
	assert.Equal(t, time.Second, tr.Duration)

	d := cfg.Defaults()
	assert.Equal(t, 1024.0, d.Width)
	assert.Equal(t, cfg.Chart.Margin, d.Margin)

	lc := cfg.LoggerConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("COMBOCHART_SERVER_PORT", "7000")
	v := viper.New()
	v.SetEnvPrefix("COMBOCHART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want int
	}{
		{"bad port", map[string]any{"server.port": 70000}, 1},
		{"unparseable port", map[string]any{"server.port": "nope"}, 1},
		{"dangerous host", map[string]any{"server.host": "a;b"}, 1},
		{"negative size", map[string]any{"chart.width": -5}, 2},
		{"margins too large", map[string]any{"chart.margin.left": 500, "chart.margin.right": 400}, 1},
		{"several problems", map[string]any{"animation.duration": "-1s", "log.format": "xml", "watch.debounce": "-2s"}, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tc.set {
				v.Set(k, val)
			}
			cfg, err := LoadFrom(v)
			require.Error(t, err)
			assert.Nil(t, cfg)

			var ce *errors.ChartError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, errors.ErrorTypeConfig, ce.Type)
			if tc.name != "unparseable port" {
				assert.Len(t, multierr.Errors(ce.Cause), tc.want)
			}
		})
	}
}
