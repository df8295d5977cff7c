package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// enum is oneof without case sensitivity; services store the upper-case form.
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		for _, allowed := range strings.Fields(fl.Param()) {
			if strings.EqualFold(value, allowed) {
				return true
			}
		}
		return false
	})
	return v
}

// validateRequest returns the failed fields keyed by their json names, or
// nil when the request is valid.
func validateRequest(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"request": err.Error()}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldPath(fieldErr)] = fieldMessage(fieldErr)
	}
	return fields
}

func fieldPath(fieldErr validator.FieldError) string {
	namespace := fieldErr.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return fieldErr.Field()
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fieldErr.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "email":
		return "must be a valid email"
	case "oneof", "enum":
		return "must be one of " + fieldErr.Param()
	case "url":
		return "must be a valid url"
	default:
		return "is invalid"
	}
}
