package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatText  = "text"
)

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(def string, allowed ...string) *enumValue {
	return &enumValue{value: def, allowed: allowed}
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Set(val string) error {
	val = strings.ToLower(strings.TrimSpace(val))
	for _, a := range e.allowed {
		if val == a {
			e.value = val
			return nil
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", val, strings.Join(e.allowed, ", "))
}

func (e *enumValue) Type() string { return strings.Join(e.allowed, "|") }

// frameAt selects which animation frame render writes: the settled frame,
// or the frame at a fixed offset into the entry transition.
type frameAt struct {
	final  bool
	offset time.Duration
}

var _ pflag.Value = (*frameAt)(nil)

func (f *frameAt) String() string {
	if f.final {
		return "final"
	}
	return f.offset.String()
}

func (f *frameAt) Set(val string) error {
	if strings.EqualFold(strings.TrimSpace(val), "final") {
		*f = frameAt{final: true}
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return fmt.Errorf("invalid frame %q, want \"final\" or a duration such as 150ms", val)
	}
	if d < 0 {
		return fmt.Errorf("frame offset must not be negative, got %s", d)
	}
	*f = frameAt{offset: d}
	return nil
}

func (f *frameAt) Type() string { return "final|duration" }
