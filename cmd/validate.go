package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/combochart/internal/chartdef"
	"github.com/conneroisu/combochart/internal/config"
	"github.com/conneroisu/combochart/internal/engine"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/scene"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate <definition...>",
	Short: "Validate chart definitions",
	Long: `Validate chart definitions and report every problem at once:

- Unknown series types
- Missing xKey or dataKey
- Invalid yAxis, curve, stacking or regression settings
- Unreadable or malformed data files

Series the engine would skip at render time (for example a series on
an axis without a scale) are reported as warnings.

Examples:
  combochart validate chart.yaml
  combochart validate charts/*.yaml --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidateCommand,
}

var validateFormat = newEnumValue(FormatText, FormatText, FormatJSON)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().VarP(validateFormat, "format", "f", "Output format")
}

type ValidationResult struct {
	Definition string   `json:"definition"`
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
}

type ValidationSummary struct {
	Total   int                `json:"total"`
	Valid   int                `json:"valid"`
	Invalid int                `json:"invalid"`
	Results []ValidationResult `json:"results"`
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	summary := validateDefinitions(contextOf(cmd), afero.NewOsFs(), cfg, args)

	var werr error
	if validateFormat.String() == FormatJSON {
		werr = outputValidationJSON(cmd.OutOrStdout(), summary)
	} else {
		werr = outputValidationText(cmd.OutOrStdout(), summary)
	}
	if werr != nil {
		return werr
	}
	if summary.Invalid > 0 {
		return fmt.Errorf("%d of %d definitions are invalid", summary.Invalid, summary.Total)
	}
	return nil
}

func validateDefinitions(ctx context.Context, fs afero.Fs, cfg *config.Config, paths []string) ValidationSummary {
	summary := ValidationSummary{
		Total:   len(paths),
		Results: make([]ValidationResult, 0, len(paths)),
	}
	for _, path := range paths {
		result := validateDefinition(ctx, fs, cfg, path)
		if result.Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

func validateDefinition(ctx context.Context, fs afero.Fs, cfg *config.Config, path string) ValidationResult {
	result := ValidationResult{
		Definition: path,
		Valid:      true,
		Errors:     make([]string, 0),
		Warnings:   make([]string, 0),
	}
	fail := func(err error) ValidationResult {
		result.Valid = false
		for _, e := range errors.Problems(err) {
			result.Errors = append(result.Errors, e.Error())
		}
		return result
	}

	def, err := chartdef.Load(fs, path)
	if err != nil {
		return fail(err)
	}
	if err := def.Validate(); err != nil {
		return fail(err)
	}
	c, err := chartdef.Resolve(fs, def, cfg.Defaults())
	if err != nil {
		return fail(err)
	}

	if len(c.Input.Data) == 0 {
		result.Warnings = append(result.Warnings, "no data records; the chart will be empty")
	}
	pass, err := engine.New(engine.Options{Transition: scene.Immediate()}).Render(ctx, c.Input, renderEpoch)
	if err != nil {
		return fail(err)
	}
	for _, key := range pass.Skipped {
		result.Warnings = append(result.Warnings, fmt.Sprintf("series %q is not rendered: its axis has no scale", key))
	}
	return result
}

func outputValidationText(w io.Writer, summary ValidationSummary) error {
	for _, r := range summary.Results {
		status := "ok"
		if !r.Valid {
			status = "invalid"
		}
		fmt.Fprintf(w, "%s: %s\n", r.Definition, status)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}
	_, err := fmt.Fprintf(w, "\n%d checked, %d valid, %d invalid\n", summary.Total, summary.Valid, summary.Invalid)
	return err
}

func outputValidationJSON(w io.Writer, summary ValidationSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
