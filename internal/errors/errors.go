package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput          = errors.New("input is empty or contains only whitespace")
	ErrNoInput             = errors.New("no input provided: please specify a file with -i or pipe text to stdin")
	ErrUnexpectedCharacter = errors.New("unexpected character at the start of a value")
	ErrInvalidNumber       = errors.New("numeric token is not a valid integer or float")
	ErrTooDeeplyNested     = errors.New("input exceeds the maximum nesting depth")
	ErrInvalidPattern      = errors.New("rule pattern is not a valid regular expression")
	ErrUnknownFormat       = errors.New("unknown format name")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeParse     ErrorType = "parse"
	ErrorTypeNumber    ErrorType = "number"
	ErrorTypeSerialize ErrorType = "serialize"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	// Check if target is also an *AppError and if the types match
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParseError creates a new error related to tolerant parsing
func NewParseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewNumberError creates a new error for an unparseable numeric token
func NewNumberError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNumber,
		Message: message,
		Err:     err,
	}
}

// NewSerializeError creates a new error related to re-serializing a value tree
func NewSerializeError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSerialize,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParse:
			return fmt.Sprintf("Repair error: %s", appErr.Message)
		case ErrorTypeNumber:
			return fmt.Sprintf("Number error: %s", appErr.Message)
		case ErrorTypeSerialize:
			return fmt.Sprintf("Serialization error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide some text to repair."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe text to stdin."
	}
	if errors.Is(err, ErrUnexpectedCharacter) {
		return "Error: The input contains a character that cannot start a value, even with recovery."
	}
	if errors.Is(err, ErrInvalidNumber) {
		return "Error: The input contains a numeric token that cannot be read as a number."
	}
	if errors.Is(err, ErrTooDeeplyNested) {
		return "Error: The input is nested too deeply to repair safely."
	}
	if errors.Is(err, ErrInvalidPattern) {
		return "Error: A custom rule pattern is not a valid regular expression."
	}
	if errors.Is(err, ErrUnknownFormat) {
		return "Error: Unknown format name. Use json, yaml, xml, toml, csv, ini or markdown."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
