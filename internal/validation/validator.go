// Package validation provides centralized validation of user input.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the validation layer of the system. Every draft that
// reaches the template lifecycle passes through ValidateDraft before anything
// is mutated or persisted, and surface parameters (output formats, page sizes,
// filter names) are checked here before a query runs.
//
// KEY RESPONSIBILITIES:
// - Check required draft fields (title, every subtopic name and description)
// - Check tags against the configured vocabulary
// - Report errors in a stable order so the first one names the first offending field
// - Convert results into AppError for the interface handlers
//
// INTEGRATION POINTS:
// - internal/service/service.go: Create/Update validate drafts with ValidateDraft
// - internal/cli: flag values checked with ValidateOption / ValidatePageSize / ValidateTags
// - internal/ui: inline form errors come from ValidationResult.FieldErrors
// - internal/errors/errors.go: ValidationResult.ToAppError() converts failures
//
// VALIDATION FLOW:
// 1. Surface builds a models.Draft from user input
// 2. Validator checks the draft field by field, in display order
// 3. Invalid drafts produce a ValidationResult with ordered errors
// 4. The lifecycle returns ToAppError() and leaves the collection untouched
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/models"
)

// Validation error codes
const (
	CodeRequired      = "REQUIRED_FIELD_MISSING"
	CodeUnknownTag    = "UNKNOWN_TAG"
	CodeInvalidOption = "INVALID_OPTION"
	CodeInvalidValue  = "INVALID_VALUE"
)

// DefaultVocabulary is the tag vocabulary used when configuration sets none
var DefaultVocabulary = []string{
	"health",
	"wellness",
	"fitness",
	"medical",
	"healthcare",
	"mental health",
	"nutrition",
	"exercise",
	"disease",
	"prevention",
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator checks drafts and surface parameters
type Validator struct {
	vocabulary []string
	known      map[string]bool
}

// NewValidator creates a validator for the given tag vocabulary.
// An empty vocabulary falls back to DefaultVocabulary.
func NewValidator(vocabulary []string) *Validator {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	v := &Validator{
		vocabulary: append([]string(nil), vocabulary...),
		known:      make(map[string]bool, len(vocabulary)),
	}
	for _, tag := range vocabulary {
		v.known[tag] = true
	}
	return v
}

// Vocabulary returns a copy of the configured tag vocabulary
func (v *Validator) Vocabulary() []string {
	return append([]string(nil), v.vocabulary...)
}

// IsKnownTag reports whether tag belongs to the vocabulary (exact match)
func (v *Validator) IsKnownTag(tag string) bool {
	return v.known[tag]
}

// ValidateDraft checks a draft. Errors are ordered title, subtopics, tags so
// the first error always names the first offending field.
func (v *Validator) ValidateDraft(d models.Draft) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(d.Title) == "" {
		result.add("title", CodeRequired, "Title is required.", d.Title)
	}

	if len(d.Subtopics) == 0 {
		result.add("subtopics", CodeRequired, "At least one subtopic is required.", nil)
	}
	for i, s := range d.Subtopics {
		nameMissing := strings.TrimSpace(s.Name) == ""
		descMissing := strings.TrimSpace(s.Description) == ""
		if !nameMissing && !descMissing {
			continue
		}
		field := fmt.Sprintf("subtopics[%d].name", i)
		if !nameMissing {
			field = fmt.Sprintf("subtopics[%d].description", i)
		}
		result.add(field, CodeRequired,
			fmt.Sprintf("Both name and description are required for subtopic %d.", i+1), s)
	}

	for i, tag := range d.Tags {
		if !v.known[tag] {
			result.add(fmt.Sprintf("tags[%d]", i), CodeUnknownTag,
				fmt.Sprintf("Tag %q is not in the vocabulary.", tag), tag)
		}
	}

	return result
}

// ValidateTags checks tag filter values against the vocabulary
func (v *Validator) ValidateTags(tags []string) *ValidationResult {
	result := &ValidationResult{Valid: true}
	for i, tag := range tags {
		if !v.known[tag] {
			result.add(fmt.Sprintf("tags[%d]", i), CodeUnknownTag,
				fmt.Sprintf("Tag %q is not in the vocabulary.", tag), tag)
		}
	}
	return result
}

// ValidateOption checks that value is one of options
func ValidateOption(field, value string, options []string) *ValidationResult {
	result := &ValidationResult{Valid: true}
	for _, option := range options {
		if value == option {
			return result
		}
	}
	result.add(field, CodeInvalidOption,
		fmt.Sprintf("Field '%s' must be one of: %s", field, strings.Join(options, ", ")), value)
	return result
}

// ValidatePageSize checks a page size against the allowed sizes.
// An empty allowed list accepts any positive size.
func ValidatePageSize(size int, allowed []int) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if size <= 0 {
		result.add("page_size", CodeInvalidValue, "Page size must be positive.", size)
		return result
	}
	if len(allowed) == 0 {
		return result
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		if a == size {
			return result
		}
		names[i] = strconv.Itoa(a)
	}
	result.add("page_size", CodeInvalidOption,
		fmt.Sprintf("Page size must be one of: %s", strings.Join(names, ", ")), size)
	return result
}

func (result *ValidationResult) add(field, code, message string, value interface{}) {
	result.Valid = false
	result.Errors = append(result.Errors, ValidationError{
		Field:   field,
		Code:    code,
		Message: message,
		Value:   value,
	})
}

// FieldErrors returns the messages keyed by field, first message per field
func (result *ValidationResult) FieldErrors() map[string]string {
	out := make(map[string]string, len(result.Errors))
	for _, e := range result.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// ToAppError converts validation result to AppError
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}

	if len(result.Errors) == 0 {
		return errors.ValidationError("", "Validation failed")
	}

	// Use the first error as the primary error
	first := result.Errors[0]
	var appErr *errors.AppError
	switch first.Code {
	case CodeUnknownTag:
		tag, _ := first.Value.(string)
		appErr = errors.UnknownTagError(first.Field, tag)
	case CodeInvalidOption, CodeInvalidValue:
		appErr = errors.NewAppError(errors.ErrCodeInvalidInput, first.Message).
			WithContext("field", first.Field)
	default:
		appErr = errors.ValidationError(first.Field, first.Message)
	}

	if len(result.Errors) > 1 {
		var details []string
		for _, e := range result.Errors {
			details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Message))
		}
		appErr.WithDetails(strings.Join(details, "; "))
	}
	appErr.WithContext("validation_errors", result.Errors)

	return appErr
}
