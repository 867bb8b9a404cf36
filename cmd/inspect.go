package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/chartdef"
	"github.com/conneroisu/combochart/internal/config"
	"github.com/conneroisu/combochart/internal/domain"
	"github.com/conneroisu/combochart/internal/engine"
	"github.com/conneroisu/combochart/internal/logging"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <definition>",
	Short: "Show the computed domains and scales of a chart",
	Long: `Run one render pass and print what it computed: the x domain, the
left and right y extents, the series with their assigned colours and
axes, and every registered scale.

Examples:
  combochart inspect chart.yaml
  combochart inspect chart.yaml -o json
  combochart inspect chart.yaml -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectFormat = newEnumValue(FormatTable, FormatTable, FormatJSON, FormatYAML)

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().VarP(inspectFormat, "output", "o", "Output format")
}

// Report is the inspect output.
type Report struct {
	Definition string         `json:"definition" yaml:"definition"`
	X          XReport        `json:"x" yaml:"x"`
	LeftY      *domain.Extent `json:"leftY,omitempty" yaml:"leftY,omitempty"`
	RightY     *domain.Extent `json:"rightY,omitempty" yaml:"rightY,omitempty"`
	Series     []SeriesReport `json:"series" yaml:"series"`
	Scales     []scale.Entry  `json:"scales" yaml:"scales"`
	Skipped    []string       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// XReport describes the x domain.
type XReport struct {
	Kind       domain.XKind `json:"kind" yaml:"kind"`
	Min        *float64     `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64     `json:"max,omitempty" yaml:"max,omitempty"`
	Categories []string     `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// SeriesReport is one series after domain processing.
type SeriesReport struct {
	Key   string         `json:"key" yaml:"key"`
	Name  string         `json:"name" yaml:"name"`
	Type  chart.MarkType `json:"type" yaml:"type"`
	Axis  chart.Axis     `json:"axis" yaml:"axis"`
	Color string         `json:"color" yaml:"color"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	report, err := inspect(contextOf(cmd), afero.NewOsFs(), cfg, log, args[0])
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, inspectFormat.String())
}

func inspect(ctx context.Context, fs afero.Fs, cfg *config.Config, log logging.Logger, path string) (*Report, error) {
	c, err := chartdef.Open(fs, path, cfg.Defaults())
	if err != nil {
		return nil, err
	}
	e := engine.New(engine.Options{Logger: log, Transition: scene.Immediate()})
	pass, err := e.Render(ctx, c.Input, renderEpoch)
	if err != nil {
		return nil, err
	}
	return newReport(path, pass), nil
}

func newReport(path string, pass engine.Pass) *Report {
	res := pass.Domain
	r := &Report{
		Definition: path,
		X:          XReport{Kind: res.X.Kind, Categories: res.X.Categories},
		Skipped:    pass.Skipped,
	}
	if res.X.Kind != domain.XCategorical && !res.Empty() {
		lo, hi := res.X.Min, res.X.Max
		r.X.Min, r.X.Max = &lo, &hi
	}
	if res.LeftUsed {
		ext := res.LeftY
		r.LeftY = &ext
	}
	if res.RightUsed {
		ext := res.RightY
		r.RightY = &ext
	}
	for _, s := range res.Series {
		b := s.Base()
		r.Series = append(r.Series, SeriesReport{
			Key:   b.Key(),
			Name:  chart.DisplayName(s),
			Type:  s.Type(),
			Axis:  b.Axis(),
			Color: b.Color,
		})
	}
	if pass.Registry != nil {
		r.Scales = pass.Registry.Entries()
	}
	return r
}

func writeReport(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	default:
		return writeReportTable(w, r)
	}
}

func writeReportTable(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "DEFINITION\t%s\n", r.Definition)
	switch {
	case len(r.X.Categories) > 0:
		fmt.Fprintf(tw, "X\t%s\t%s\n", r.X.Kind, strings.Join(r.X.Categories, ", "))
	case r.X.Min != nil:
		fmt.Fprintf(tw, "X\t%s\t[%s, %s]\n", r.X.Kind, scene.FormatNumber(*r.X.Min), scene.FormatNumber(*r.X.Max))
	default:
		fmt.Fprintf(tw, "X\t%s\t-\n", r.X.Kind)
	}
	if r.LeftY != nil {
		fmt.Fprintf(tw, "LEFT Y\t[%s, %s]\n", scene.FormatNumber(r.LeftY.Min), scene.FormatNumber(r.LeftY.Max))
	}
	if r.RightY != nil {
		fmt.Fprintf(tw, "RIGHT Y\t[%s, %s]\n", scene.FormatNumber(r.RightY.Min), scene.FormatNumber(r.RightY.Max))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SERIES\tNAME\tTYPE\tAXIS\tCOLOR")
	for _, s := range r.Series {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Key, s.Name, s.Type, s.Axis, s.Color)
	}

	if len(r.Scales) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "SCALE\tAXIS\tTYPE\tDOMAIN\tRANGE")
		for _, e := range r.Scales {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t[%s, %s]\n", e.Key, e.Axis, e.Config.Kind,
				formatDomain(e.Config.Domain), scene.FormatNumber(e.Config.Range[0]), scene.FormatNumber(e.Config.Range[1]))
		}
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "SKIPPED\t%s\n", strings.Join(r.Skipped, ", "))
	}
	return tw.Flush()
}

func formatDomain(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok {
			parts[i] = scene.FormatNumber(f)
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
