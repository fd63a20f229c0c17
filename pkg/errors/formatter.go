package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse is one field-level problem reported to API clients.
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}

// fieldName prefers the json tag, then the form tag, so the name matches what the client sent.
func fieldName(structType reflect.Type, name string) string {
	if structType == nil {
		return name
	}

	field, found := structType.FieldByName(name)
	if !found {
		return name
	}

	for _, key := range []string{"json", "form"} {
		tag, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return name
}

// FormatValidationErrors lists binding failures by field. model is the struct that was bound.
func FormatValidationErrors(err error, model any) []ValidationErrorResponse {
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Expected %s, got %s", typeErr.Type, typeErr.Value),
		}}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Pointer {
			structType = structType.Elem()
		}
	}

	out := make([]ValidationErrorResponse, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, ValidationErrorResponse{
			Field:   fieldName(structType, fe.StructField()),
			Message: messageFor(fe),
		})
	}
	return out
}
