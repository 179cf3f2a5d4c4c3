package model

import (
	"fmt"
	"strings"
)

// Violation codes for field-level validation failures.
const (
	ViolationRequired      = "required"
	ViolationInvalidFormat = "invalid_format"
	ViolationInvalidValue  = "invalid_value"
	ViolationOutOfRange    = "out_of_range"
)

// FieldViolation describes a single validation failure at a field path,
// e.g. "items[2].vat_rate".
type FieldViolation struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Field, v.Message, v.Code)
}

// ValidationErrors collects all field-level violations of an invoice.
// Recoverable: the caller decides whether to re-prompt or abort.
type ValidationErrors struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationErrors) Error() string {
	if len(e.Violations) == 0 {
		return "invoice validation failed"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invoice validation failed: %s", strings.Join(parts, "; "))
}

// GenerationErrorCode classifies structured-document generation failures.
type GenerationErrorCode string

const (
	// MissingRequiredField: the selected profile requires a field the
	// invoice does not supply.
	MissingRequiredField GenerationErrorCode = "MissingRequiredField"
	// UnsupportedProfile: the requested conformance level is unknown.
	UnsupportedProfile GenerationErrorCode = "UnsupportedProfile"
)

// GenerationError represents a structured-document generation failure.
// Recoverable by choosing a laxer profile or supplying more data.
type GenerationError struct {
	Code    GenerationErrorCode `json:"code"`
	Field   string              `json:"field,omitempty"`
	Profile string              `json:"profile"`
	Message string              `json:"message"`
}

func (e *GenerationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("generation failed [%s] %s: %s (profile=%s)", e.Code, e.Field, e.Message, e.Profile)
	}
	return fmt.Sprintf("generation failed [%s]: %s (profile=%s)", e.Code, e.Message, e.Profile)
}

// NewMissingFieldError creates a GenerationError for a profile-required field.
func NewMissingFieldError(profile, field string) *GenerationError {
	return &GenerationError{
		Code:    MissingRequiredField,
		Field:   field,
		Profile: profile,
		Message: "field required by profile is not set",
	}
}

// CompositionErrorCode classifies hybrid-document composition failures.
type CompositionErrorCode string

const (
	// EmbedFailed: rendering or attachment embedding failed (I/O, encoding).
	EmbedFailed CompositionErrorCode = "EmbedFailed"
	// ArchivalPrerequisiteMissing: an archival-conformance prerequisite
	// (e.g. ICC profile) is unavailable and strict mode is enabled.
	ArchivalPrerequisiteMissing CompositionErrorCode = "ArchivalPrerequisiteMissing"
)

// CompositionError represents a hybrid-document composition failure.
// Surfaced as a hard failure of the request, never retried.
type CompositionError struct {
	Code    CompositionErrorCode `json:"code"`
	Message string               `json:"message"`
	Cause   error                `json:"-"`
}

func (e *CompositionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("composition failed [%s]: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("composition failed [%s]: %s", e.Code, e.Message)
}

func (e *CompositionError) Unwrap() error {
	return e.Cause
}

// NewCompositionError creates a new composition error
func NewCompositionError(code CompositionErrorCode, message string, cause error) *CompositionError {
	return &CompositionError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
