package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound    = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse       = "CONFIG_PARSE"
	ErrCodeToolsParse        = "TOOLS_PARSE"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeUndefinedVariable = "UNDEFINED_VARIABLE"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// UserError is an error with enough context for a user to fix it.
type UserError struct {
	Code       string // e.g. "CONFIG_NOT_FOUND"
	Message    string
	Context    string // file, step or field the error refers to
	Suggestion string
	Underlying error
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// WithContext returns a copy of the error with context set.
func (e *UserError) WithContext(ctx string) *UserError {
	c := *e
	c.Context = ctx
	return &c
}

// WithSuggestion returns a copy of the error with suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// ErrorList accumulates every problem found while validating a manifest so
// they can be reported together.
type ErrorList struct {
	errors []*UserError
}

// NewErrorList creates an empty ErrorList.
func NewErrorList() *ErrorList {
	return &ErrorList{
		errors: make([]*UserError, 0),
	}
}

// Add adds an error to the list.
func (l *ErrorList) Add(err *UserError) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddValidation adds a validation error to the list.
func (l *ErrorList) AddValidation(field, message, suggestion string) {
	l.Add(&UserError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if there are any errors.
func (l *ErrorList) HasErrors() bool {
	return len(l.errors) > 0
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

// Errors returns a copy of the list of errors.
func (l *ErrorList) Errors() []*UserError {
	result := make([]*UserError, len(l.errors))
	copy(result, l.errors)
	return result
}

// Error implements the error interface for ErrorList.
func (l *ErrorList) Error() string {
	switch len(l.errors) {
	case 0:
		return ""
	case 1:
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Format returns a detailed formatted output of all errors.
func (l *ErrorList) Format() string {
	if len(l.errors) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d error(s):\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "\n--- Error %d ---\n", i+1)
		b.WriteString(err.Format())
		b.WriteString("\n")
	}
	return b.String()
}

// AsError returns the ErrorList as an error, or nil if empty.
func (l *ErrorList) AsError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// NewConfigNotFoundError creates an error for a missing manifest or overlay.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("configuration file not found: %s", path),
		Context:    path,
		Suggestion: "Pass the manifest with 'provisioner run -c <file>', or check the file path.",
	}
}

// NewConfigParseError creates an error for a manifest that failed to decode.
func NewConfigParseError(path string, err error) *UserError {
	suggestion := "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters."
	if strings.HasSuffix(path, ".toml") {
		suggestion = "Check your TOML syntax. Steps are written as [[steps]] tables and actions as [[steps.actions]]."
	}
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "failed to parse configuration file",
		Context:    path,
		Suggestion: suggestion,
		Underlying: err,
	}
}

// NewToolsParseError creates an error for an unreadable tools overlay.
func NewToolsParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeToolsParse,
		Message:    "failed to parse tools file",
		Context:    path,
		Suggestion: "The tools file is INI: a [tools] section of name = path entries and an optional [path] section with append = dir1;dir2.",
		Underlying: err,
	}
}

// NewUnsupportedFormatError creates an error for an unknown manifest extension.
func NewUnsupportedFormatError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeUnsupportedFormat,
		Message:    fmt.Sprintf("unsupported configuration format: %s", path),
		Context:    path,
		Suggestion: "Use a .yaml, .yml or .toml manifest.",
	}
}

// NewUndefinedVariableError creates an error for a ${name} reference that
// resolves to nothing.
func NewUndefinedVariableError(field, name string) *UserError {
	return &UserError{
		Code:       ErrCodeUndefinedVariable,
		Message:    fmt.Sprintf("undefined variable ${%s}", name),
		Context:    field,
		Suggestion: fmt.Sprintf("Define %q under vars, as a matrix key, or in the environment.", name),
	}
}

// NewValidationFailedError creates a validation error.
func NewValidationFailedError(field, message string) *UserError {
	return &UserError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for '%s': %s", field, message),
		Context: field,
	}
}

// IsUserError checks if an error is a UserError with a specific code.
func IsUserError(err error, code string) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// NewYAMLParseError translates yaml.v3 decoding errors into messages that
// name the likely mistake.
func NewYAMLParseError(path string, err error) *UserError {
	errStr := err.Error()
	var message, suggestion string

	switch {
	case strings.Contains(errStr, "not found in type config.ActionSpec"):
		message = "unknown action key"
		suggestion = "Actions are one of: fetch (with as), extract (with into), run, remove, mkdir, copy, copy_tree, rename, dir (with actions)."

	case strings.Contains(errStr, "not found in type"):
		message = "unknown configuration key"
		suggestion = "Top-level keys are root, tools, path, env_file, vars, mirror and steps; steps take name, description, always, matrix and actions."

	case strings.Contains(errStr, "into config.PathPair"):
		message = "expected from/to paths"
		suggestion = `copy, copy_tree and rename take a from and a to path:

  - copy:
      from: zlib-${zlib_version}/zlib.h
      to: deps/include`

	case strings.Contains(errStr, "cannot unmarshal !!seq into map"):
		message = "expected an object but found a list"
		suggestion = "Check that you're using 'key: value' format instead of '- item' list format."

	case strings.Contains(errStr, "cannot unmarshal !!map into"):
		message = "expected a value but found an object"
		suggestion = "Check the indentation of the nested keys."

	case strings.Contains(errStr, "did not find expected key"):
		message = "missing required field or incorrect indentation"
		suggestion = "YAML is sensitive to indentation. Use 2 spaces (not tabs) for each level."

	case strings.Contains(errStr, "mapping values are not allowed"):
		message = "invalid YAML structure"
		suggestion = "Check for missing colons after keys, or quote values that contain ': '."

	default:
		message = "invalid YAML syntax"
		suggestion = "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters."
	}

	context := path
	if parts := strings.SplitN(errStr, "line ", 2); len(parts) == 2 {
		context = fmt.Sprintf("%s (line %s)", path, strings.SplitN(parts[1], ":", 2)[0])
	}

	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    message,
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}
