package errors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeConfig     ErrorType = "config"
)

// ChartError is a structured error type with context.
type ChartError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Series      string
	FilePath    string
	Line        int
	Recoverable bool
}

// Error implements the error interface.
func (e *ChartError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	if e.Series != "" {
		parts = append(parts, "series:"+e.Series)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ChartError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ChartError) Is(target error) bool {
	var t *ChartError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ChartError) WithContext(key string, value interface{}) *ChartError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *ChartError) WithLocation(filePath string, line int) *ChartError {
	e.FilePath = filePath
	e.Line = line

	return e
}

// WithSeries names the series the error is about.
func (e *ChartError) WithSeries(key string) *ChartError {
	e.Series = key

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *ChartError {
	return &ChartError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string, cause error) *ChartError {
	return &ChartError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *ChartError {
	return &ChartError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}

	return false
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsIOError checks if an error is an I/O error.
func IsIOError(err error) bool {
	return hasType(err, ErrorTypeIO)
}

func hasType(err error, t ErrorType) bool {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Type == t
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err with its context fields. Recoverable errors are
// warnings; everything else is an error.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ce *ChartError
	if !errors.As(err, &ce) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	info := GetErrorContext(err)
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		fields = append(fields, k, info[k])
	}

	if !IsRecoverable(err) {
		h.logger.Error(ctx, err, "Error occurred", fields...)
		return
	}
	switch ce.Type {
	case ErrorTypeValidation:
		h.logger.Warn(ctx, err, "Validation error occurred", fields...)
	case ErrorTypeRender:
		h.logger.Warn(ctx, err, "Render error occurred", fields...)
	default:
		h.logger.Warn(ctx, err, "Recoverable error occurred", fields...)
	}
}

// Common error codes.
const (
	ErrCodeFileNotFound      = "ERR_FILE_NOT_FOUND"
	ErrCodeFileRead          = "ERR_FILE_READ"
	ErrCodeFileWrite         = "ERR_FILE_WRITE"
	ErrCodeUnsupportedFormat = "ERR_UNSUPPORTED_FORMAT"
	ErrCodeDecode            = "ERR_DECODE"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeValidationFailed  = "ERR_VALIDATION_FAILED"
	ErrCodeScale             = "ERR_SCALE"
	ErrCodeRenderFailed      = "ERR_RENDER_FAILED"
	ErrCodeUnknownMark       = "ERR_UNKNOWN_MARK"
)

// FieldValidationError reports one invalid field of a definition.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
	HelpText     []string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("%s: %s", fve.FieldName, fve.ErrorMessage)
}

// Field returns the field path that failed validation.
func (fve *FieldValidationError) Field() string {
	return fve.FieldName
}

// Value returns the invalid value.
func (fve *FieldValidationError) Value() interface{} {
	return fve.FieldValue
}

// Suggestions returns helpful suggestions for fixing the error.
func (fve *FieldValidationError) Suggestions() []string {
	return fve.HelpText
}

// NewFieldValidationError creates a new field validation error.
func NewFieldValidationError(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) *FieldValidationError {
	return &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
		HelpText:     suggestions,
	}
}

// ErrFileNotFound creates a missing file error.
func ErrFileNotFound(path string, cause error) *ChartError {
	return NewIOError(ErrCodeFileNotFound, "file not found", cause).WithLocation(path, 0)
}

// ErrUnsupportedFormat creates an error for a file extension no loader handles.
func ErrUnsupportedFormat(path, ext string) *ChartError {
	return NewValidationError(ErrCodeUnsupportedFormat, "unsupported format "+ext).
		WithLocation(path, 0)
}

// ErrUnknownMark creates an error for a series type that is not a mark.
func ErrUnknownMark(kind string) *ChartError {
	return NewValidationError(ErrCodeUnknownMark, "unknown series type "+kind)
}
