// Package chartdef reads chart definition files: a title, the x key, the
// size, inline or file-backed data and the list of series. Definitions are
// YAML or JSON and decode into the engine's input.
package chartdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/dataset"
	"github.com/conneroisu/combochart/internal/engine"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/scene"
)

// Animation overrides the configured transition.
type Animation struct {
	Enabled  *bool         `mapstructure:"enabled" yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Duration time.Duration `mapstructure:"duration" yaml:"duration,omitempty" json:"duration,omitempty"`
}

// Definition is a chart definition as written on disk. Series stay raw
// maps until Series decodes them, so that validation can report every
// problem at once.
type Definition struct {
	Title     string           `mapstructure:"title" yaml:"title,omitempty" json:"title,omitempty"`
	XKey      string           `mapstructure:"xKey" yaml:"xKey" json:"xKey"`
	Width     float64          `mapstructure:"width" yaml:"width,omitempty" json:"width,omitempty"`
	Height    float64          `mapstructure:"height" yaml:"height,omitempty" json:"height,omitempty"`
	Margin    *chart.Margin    `mapstructure:"margin" yaml:"margin,omitempty" json:"margin,omitempty"`
	Grid      *bool            `mapstructure:"grid" yaml:"grid,omitempty" json:"grid,omitempty"`
	Legend    *bool            `mapstructure:"legend" yaml:"legend,omitempty" json:"legend,omitempty"`
	Palette   []string         `mapstructure:"palette" yaml:"palette,omitempty" json:"palette,omitempty"`
	Animation *Animation       `mapstructure:"animation" yaml:"animation,omitempty" json:"animation,omitempty"`
	Data      []map[string]any `mapstructure:"data" yaml:"data,omitempty" json:"data,omitempty"`
	DataFile  string           `mapstructure:"dataFile" yaml:"dataFile,omitempty" json:"dataFile,omitempty"`
	Sheet     string           `mapstructure:"sheet" yaml:"sheet,omitempty" json:"sheet,omitempty"`
	Series    []map[string]any `mapstructure:"series" yaml:"series" json:"series"`

	// Path is the file the definition was read from, if any.
	Path string `mapstructure:"-" yaml:"-" json:"-"`
}

// Load reads and decodes the definition at path.
func Load(fs afero.Fs, path string) (*Definition, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.WrapRead(err, "cannot read chart definition", path)
	}
	def, err := Parse(b, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, errors.WrapValidation(err, errors.ErrCodeDecode, "cannot decode chart definition").WithLocation(path, 0)
	}
	def.Path = path
	return def, nil
}

// Parse decodes a definition from YAML, or from JSON when isJSON is set.
func Parse(b []byte, isJSON bool) (*Definition, error) {
	var raw map[string]any
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	var def Definition
	if err := decode(raw, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			numberHook,
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// numberHook unwraps json.Number so JSON and YAML decode alike.
func numberHook(_, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	if to.Kind() == reflect.String {
		return n.String(), nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	return n.Float64()
}

// SeriesType reads the "type" field of a raw series.
func SeriesType(raw map[string]any) chart.MarkType {
	s, _ := raw["type"].(string)
	return chart.MarkType(s)
}

// NewSeries returns an empty descriptor for t.
func NewSeries(t chart.MarkType) (chart.Series, bool) {
	switch t {
	case chart.MarkBar:
		return &chart.BarSeries{}, true
	case chart.MarkLine:
		return &chart.LineSeries{}, true
	case chart.MarkArea:
		return &chart.AreaSeries{}, true
	case chart.MarkStackedArea:
		return &chart.StackedAreaSeries{}, true
	case chart.MarkScatter:
		return &chart.ScatterSeries{}, true
	case chart.MarkWaterfall:
		return &chart.WaterfallSeries{}, true
	}
	return nil, false
}

// DecodeSeries turns one raw series into its variant. Fields that do not
// belong to the variant are ignored.
func DecodeSeries(raw map[string]any) (chart.Series, error) {
	t := SeriesType(raw)
	s, ok := NewSeries(t)
	if !ok {
		return nil, errors.ErrUnknownMark(string(t))
	}
	if err := decode(raw, s); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeAll decodes every series, stopping at the first failure.
func (d *Definition) DecodeAll() ([]chart.Series, error) {
	out := make([]chart.Series, 0, len(d.Series))
	for i, raw := range d.Series {
		s, err := DecodeSeries(raw)
		if err != nil {
			return nil, errors.WrapValidation(err, errors.ErrCodeValidationFailed,
				fmt.Sprintf("series[%d]", i)).WithLocation(d.Path, 0)
		}
		out = append(out, s)
	}
	return out, nil
}

// Defaults fill in what a definition leaves out.
type Defaults struct {
	Width      float64
	Height     float64
	Margin     chart.Margin
	Palette    []string
	Grid       bool
	Legend     bool
	Transition scene.Transition
}

// Chart is a definition resolved into engine input.
type Chart struct {
	Definition *Definition
	Input      engine.Input
	Transition scene.Transition
	// DataPath is the resolved dataset path, or empty for inline data.
	DataPath string
}

// Resolve applies defaults, decodes the series and loads the data. A
// relative dataFile is read next to the definition.
func Resolve(fs afero.Fs, d *Definition, defaults Defaults) (*Chart, error) {
	series, err := d.DecodeAll()
	if err != nil {
		return nil, err
	}

	c := &Chart{Definition: d, Transition: defaults.Transition}
	in := engine.Input{
		Title:   d.Title,
		Series:  series,
		XKey:    d.XKey,
		Width:   orDefault(d.Width, defaults.Width),
		Height:  orDefault(d.Height, defaults.Height),
		Margin:  defaults.Margin,
		Palette: defaults.Palette,
		Grid:    defaults.Grid,
		Legend:  defaults.Legend,
	}
	if d.Margin != nil {
		in.Margin = *d.Margin
	}
	if len(d.Palette) > 0 {
		in.Palette = d.Palette
	}
	if d.Grid != nil {
		in.Grid = *d.Grid
	}
	if d.Legend != nil {
		in.Legend = *d.Legend
	}
	if a := d.Animation; a != nil {
		if a.Enabled != nil {
			c.Transition.Enabled = *a.Enabled
		}
		if a.Duration > 0 {
			c.Transition.Duration = a.Duration
		}
	}

	switch {
	case d.DataFile != "":
		c.DataPath = d.DataFile
		if !filepath.IsAbs(c.DataPath) && d.Path != "" {
			c.DataPath = filepath.Join(filepath.Dir(d.Path), c.DataPath)
		}
		in.Data, err = dataset.Load(fs, c.DataPath, dataset.Options{Sheet: d.Sheet})
		if err != nil {
			return nil, err
		}
	default:
		in.Data = make([]chart.Record, len(d.Data))
		for i, r := range d.Data {
			in.Data[i] = chart.Record(r)
		}
	}

	c.Input = in
	return c, nil
}

// Open loads and resolves the definition at path.
func Open(fs afero.Fs, path string, defaults Defaults) (*Chart, error) {
	d, err := Load(fs, path)
	if err != nil {
		return nil, err
	}
	return Resolve(fs, d, defaults)
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
