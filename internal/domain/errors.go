package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Upstream model errors
	CodeLLMTimeout       ErrorCode = "LLM_TIMEOUT"
	CodeLLMUnavailable   ErrorCode = "LLM_SERVICE_UNAVAILABLE"
	CodeLLMProtocol      ErrorCode = "LLM_PROTOCOL_ERROR"
	CodeInvalidLLMOutput ErrorCode = "INVALID_LLM_OUTPUT"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

// TransportErrorKind classifies a failed exchange with the model endpoint.
type TransportErrorKind string

const (
	TransportTimeout     TransportErrorKind = "timeout"
	TransportUnreachable TransportErrorKind = "unreachable"
	TransportProtocol    TransportErrorKind = "protocol_error"
)

// TransportError is returned when the single request to the model endpoint
// did not produce a usable response envelope.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm transport %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm transport %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Code() ErrorCode {
	switch e.Kind {
	case TransportTimeout:
		return CodeLLMTimeout
	case TransportProtocol:
		return CodeLLMProtocol
	default:
		return CodeLLMUnavailable
	}
}

func NewTransportError(kind TransportErrorKind, statusCode int, err error) *TransportError {
	return &TransportError{Kind: kind, StatusCode: statusCode, Err: err}
}

// ValidationErrorKind classifies why a model payload was rejected.
type ValidationErrorKind string

const (
	MalformedJSON    ValidationErrorKind = "malformed_json"
	MissingField     ValidationErrorKind = "missing_field"
	InvalidOptionSet ValidationErrorKind = "invalid_option_set"
	TypeMismatch     ValidationErrorKind = "type_mismatch"
)

// ValidationError means the model answered, but with a payload that cannot
// be trusted. It is never replaced by a default value.
type ValidationError struct {
	Kind    ValidationErrorKind
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid llm output (")
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	b.WriteString(")")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Code() ErrorCode { return CodeInvalidLLMOutput }

func NewValidationError(kind ValidationErrorKind, field, message string, err error) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message, Err: err}
}

// InputError reports a caller-supplied value that violates a precondition.
// Requests failing with it never reach the model.
type InputError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewInputError(field, message string) *InputError {
	return &InputError{Field: field, Message: message}
}

// InputErrors collects every precondition failure of a single request.
type InputErrors []*InputError

func (e InputErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ie := range e {
		msgs[i] = ie.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e InputErrors) Code() ErrorCode { return CodeInvalidInput }

// AsDomainError converts any error returned by the core into the envelope
// exposed to callers. Unknown errors become CodeInternal.
func AsDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var inputErrs InputErrors
	if errors.As(err, &inputErrs) {
		fields := make([]interface{}, len(inputErrs))
		for i, ie := range inputErrs {
			fields[i] = map[string]interface{}{"field": ie.Field, "message": ie.Message}
		}
		return &DomainError{
			Code:    CodeInvalidInput,
			Message: "Request validation failed",
			Context: map[string]interface{}{"errors": fields},
			Err:     err,
		}
	}

	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return &DomainError{
			Code:    CodeInvalidInput,
			Message: inputErr.Error(),
			Context: map[string]interface{}{"field": inputErr.Field},
			Err:     err,
		}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		ctx := map[string]interface{}{"kind": string(validationErr.Kind)}
		if validationErr.Field != "" {
			ctx["field"] = validationErr.Field
		}
		return &DomainError{
			Code:    CodeInvalidLLMOutput,
			Message: "Invalid response format from AI",
			Context: ctx,
			Err:     err,
		}
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		ctx := map[string]interface{}{"kind": string(transportErr.Kind)}
		if transportErr.StatusCode != 0 {
			ctx["upstream_status"] = transportErr.StatusCode
		}
		return &DomainError{
			Code:    transportErr.Code(),
			Message: "Failed to process with LLM service",
			Context: ctx,
			Err:     err,
		}
	}

	return NewInternalError("Internal server error", err)
}
