package chart

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPalette is the categorical fallback used when a series has no colour.
var DefaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Margin is the space reserved around the plotting area for axes and legend.
type Margin struct {
	Top    float64 `mapstructure:"top" json:"top" yaml:"top"`
	Right  float64 `mapstructure:"right" json:"right" yaml:"right"`
	Bottom float64 `mapstructure:"bottom" json:"bottom" yaml:"bottom"`
	Left   float64 `mapstructure:"left" json:"left" yaml:"left"`
}

// DefaultMargin leaves room for a bottom axis and two value axes.
func DefaultMargin() Margin {
	return Margin{Top: 20, Right: 60, Bottom: 40, Left: 60}
}

// ContentArea is the size of the plotting area inside the margins.
type ContentArea struct {
	Width  float64
	Height float64
}

// Content computes the plotting area; it never goes negative.
func Content(width, height float64, m Margin) ContentArea {
	return ContentArea{
		Width:  max(0, width-m.Left-m.Right),
		Height: max(0, height-m.Top-m.Bottom),
	}
}

// DisplayName is the series label shown in legends and axis titles.
func DisplayName(s Series) string {
	b := s.Base()
	if b.Name != "" {
		return b.Name
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(b.DataKey)
}

// Datum is the resolved data point handed to interaction callbacks.
type Datum struct {
	Index  int
	X      any
	Y      float64
	Record Record
}

// EventKind enumerates the pointer interactions a mark can receive.
type EventKind string

const (
	EventClick EventKind = "click"
	EventHover EventKind = "hover"
	EventLeave EventKind = "leave"
)

// Event is a pointer interaction targeted at a rendered mark.
type Event struct {
	Kind EventKind `json:"kind"`
	Key  string    `json:"key"`
	X    float64   `json:"x,omitempty"`
	Y    float64   `json:"y,omitempty"`
}

// Handlers receives synchronous interaction callbacks.
type Handlers interface {
	OnSeriesClick(s Series, d Datum, ev Event)
	OnSeriesHover(s Series, d Datum, ev Event)
}

// NopHandlers ignores every interaction.
type NopHandlers struct{}

func (NopHandlers) OnSeriesClick(Series, Datum, Event) {}
func (NopHandlers) OnSeriesHover(Series, Datum, Event) {}
