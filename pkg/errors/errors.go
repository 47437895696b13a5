package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network/HTTP failures reaching the source site
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeSummary represents AI summarization errors
	ErrorTypeSummary ErrorType = "summary"
	// ErrorTypeSend represents email provider errors
	ErrorTypeSend ErrorType = "send"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// DigestError represents a pipeline-stage error
type DigestError struct {
	Type    ErrorType
	Stage   string
	Message string
	Status  int
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *DigestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *DigestError) Unwrap() error {
	return e.Err
}

// Terminal returns true if the error aborts the run
func (e *DigestError) Terminal() bool {
	switch e.Type {
	case ErrorTypeSummary:
		return false
	default:
		return true
	}
}

// New creates a new DigestError
func New(errType ErrorType, stage, message string, err error) *DigestError {
	return &DigestError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(stage, message string, err error) *DigestError {
	return New(ErrorTypeFetch, stage, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(stage, message string, err error) *DigestError {
	return New(ErrorTypeParsing, stage, message, err)
}

// NewSummary creates a new summary error
func NewSummary(stage, message string, err error) *DigestError {
	return New(ErrorTypeSummary, stage, message, err)
}

// NewSend creates a new send error carrying the provider's HTTP status
func NewSend(stage, message string, status int, err error) *DigestError {
	e := New(ErrorTypeSend, stage, message, err)
	e.Status = status
	return e
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *DigestError {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// IsTerminal reports whether err is (or wraps) a terminal DigestError.
// Unknown error types are treated as terminal.
func IsTerminal(err error) bool {
	var de *DigestError
	if stderrors.As(err, &de) {
		return de.Terminal()
	}
	return err != nil
}
