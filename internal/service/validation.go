package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a validation failure scoped to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-scoped validation failures. Nothing is
// persisted when one is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", field.Field, field.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// asValidationError converts validator struct-tag failures into field-scoped
// messages; other errors pass through unchanged.
func asValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	verr := &ValidationError{}
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			verr.add(field, "is required")
		case "max":
			verr.add(field, fmt.Sprintf("must be at most %s characters", fieldErr.Param()))
		case "min":
			verr.add(field, fmt.Sprintf("must be at least %s characters", fieldErr.Param()))
		case "excludesall":
			verr.add(field, "should not contain white spaces")
		default:
			verr.add(field, fmt.Sprintf("is invalid (%s)", fieldErr.Tag()))
		}
	}
	return verr
}
