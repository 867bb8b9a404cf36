package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/multierr"
)

// Wrap wraps an error with additional context, creating a ChartError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *ChartError {
	if err == nil {
		return nil
	}

	// An existing ChartError keeps its location and series.
	var ce *ChartError
	if errors.As(err, &ce) {
		return &ChartError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       ce,
			Context:     ce.Context,
			Series:      ce.Series,
			FilePath:    ce.FilePath,
			Line:        ce.Line,
			Recoverable: ce.Recoverable,
		}
	}

	return &ChartError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeRender,
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(err error, code, message string) *ChartError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapIO wraps an error as an I/O error with the offending path
func WrapIO(err error, code, message, path string) *ChartError {
	ce := Wrap(err, ErrorTypeIO, code, message)
	if ce != nil {
		ce.Recoverable = false
		ce.FilePath = path
	}
	return ce
}

// WrapRead wraps a failed read of path. A missing file becomes
// ErrFileNotFound.
func WrapRead(err error, message, path string) *ChartError {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrFileNotFound(path, err)
	}
	return WrapIO(err, ErrCodeFileRead, message, path)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *ChartError {
	ce := Wrap(err, ErrorTypeConfig, code, message)
	if ce != nil {
		ce.Recoverable = false
	}
	return ce
}

// WrapRender wraps an error raised while rendering a chart file
func WrapRender(err error, code, message, path string) *ChartError {
	ce := Wrap(err, ErrorTypeRender, code, message)
	if ce != nil {
		ce.FilePath = path
	}
	return ce
}

// FormatError formats an error for user display. Aggregated errors are
// listed one per line; field errors carry their suggestions.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	errs := multierr.Errors(err)
	if len(errs) == 1 {
		var ce *ChartError
		if !errors.As(err, &ce) || len(multierr.Errors(ce.Cause)) < 2 {
			return formatOne(errs[0])
		}
		// A wrapped aggregate prints its own header above the list.
		header := *ce
		header.Cause = nil
		b.WriteString(header.Error())
		b.WriteString(": ")
		errs = multierr.Errors(ce.Cause)
	}

	fmt.Fprintf(&b, "%d problems:", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(formatOne(e))
	}
	return b.String()
}

func formatOne(err error) string {
	var fe *FieldValidationError
	if errors.As(err, &fe) && len(fe.Suggestions()) > 0 {
		result := err.Error()
		for _, suggestion := range fe.Suggestions() {
			result += fmt.Sprintf("\n      hint: %s", suggestion)
		}
		return result
	}
	return err.Error()
}

// GetErrorContext extracts context information from a ChartError
func GetErrorContext(err error) map[string]interface{} {
	var ce *ChartError
	if errors.As(err, &ce) {
		context := make(map[string]interface{})
		for k, v := range ce.Context {
			context[k] = v
		}
		if ce.Series != "" {
			context["series"] = ce.Series
		}
		if ce.FilePath != "" {
			context["file"] = ce.FilePath
			if ce.Line > 0 {
				context["line"] = ce.Line
			}
		}
		context["type"] = string(ce.Type)
		context["code"] = ce.Code
		context["recoverable"] = ce.Recoverable
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// ExtractCause extracts the root cause from a wrapped error
func ExtractCause(err error) error {
	for err != nil {
		var ce *ChartError
		if !errors.As(err, &ce) {
			return err
		}
		if ce.Cause == nil {
			return ce
		}
		err = ce.Cause
	}
	return nil
}

// CombineErrors aggregates errs, dropping nils. The result unpacks with
// multierr.Errors.
func CombineErrors(errs ...error) error {
	return multierr.Combine(errs...)
}

// Count returns how many errors err aggregates.
func Count(err error) int {
	return len(multierr.Errors(err))
}

// Problems lists the individual errors in err. A ChartError wrapping an
// aggregate is unpacked to the aggregated errors.
func Problems(err error) []error {
	errs := multierr.Errors(err)
	if len(errs) != 1 {
		return errs
	}
	var ce *ChartError
	if errors.As(err, &ce) {
		if inner := multierr.Errors(ce.Cause); len(inner) > 1 {
			return inner
		}
	}
	return errs
}
