package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Package-level validator used by Validate and Load.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report raw-data key names rather than Go field names.
	validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
		tag := sf.Tag.Get("config")
		if tag == "-" {
			return ""
		}
		if name, _, _ := cutTag(tag); name != "" {
			return name
		}
		return snakeCase(sf.Name)
	})
}

// RegisterValidation installs a custom `validate` tag handler, shared
// by every subsequent Validate and Load call.
func RegisterValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}

// Validate runs `validate` struct-tag validation on a built
// configuration and reports every failing field at once.
func Validate(target any) error {
	if err := validate.Struct(target); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return &ConfigError{Problems: validationProblems(validationErrors)}
		}
		return err
	}
	return nil
}

func validationProblems(validationErrors validator.ValidationErrors) []Problem {
	problems := make([]Problem, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		problems = append(problems, Problem{
			Path:    fieldPath(fieldError),
			Message: formatFieldError(fieldError),
		})
	}
	return problems
}

// fieldPath strips the root struct's type name from the namespace so
// messages read database.host rather than AppConfig.database.host.
func fieldPath(fieldError validator.FieldError) string {
	namespace := fieldError.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// formatFieldError creates user-friendly error messages for field validation failures
func formatFieldError(fieldError validator.FieldError) string {
	fieldName := fieldError.Field()
	tag := fieldError.Tag()
	param := fieldError.Param()
	value := fieldError.Value()

	switch tag {
	case "required":
		return fmt.Sprintf("'%s' is required", fieldName)
	case "email":
		return fmt.Sprintf("'%s' must be a valid email address, got '%v'", fieldName, value)
	case "min":
		return fmt.Sprintf("'%s' must be at least %s characters/value, got '%v'", fieldName, param, value)
	case "max":
		return fmt.Sprintf("'%s' must be at most %s characters/value, got '%v'", fieldName, param, value)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s], got '%v'", fieldName, param, value)
	case "hostname":
		return fmt.Sprintf("'%s' must be a valid hostname format, got '%v'", fieldName, value)
	case "url":
		return fmt.Sprintf("'%s' must be a valid URL, got '%v'", fieldName, value)
	case "filepath":
		return fmt.Sprintf("'%s' must be a valid file path, got '%v'", fieldName, value)
	default:
		return fmt.Sprintf("'%s' failed validation '%s', got '%v'", fieldName, tag, value)
	}
}
