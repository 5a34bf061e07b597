// Package validation wraps go-playground/validator with a shared instance,
// form-friendly field labels and VALIDATION_ERROR results.
//
// Field names in messages come from the `label` struct tag when present:
//
//	type SignupRequest struct {
//	    Email string `validate:"required,email" label:"Email"`
//	}
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"filmdash/internal/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	registerMu   sync.Mutex
)

// FieldError is one failed rule on one field
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// FieldErrors collects every failure of a single Struct call
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	messages := make([]string, len(fe))
	for i, e := range fe {
		messages[i] = e.Message
	}
	return strings.Join(messages, "; ")
}

// ByField indexes messages by field label, first failure wins
func (fe FieldErrors) ByField() map[string]string {
	out := make(map[string]string, len(fe))
	for _, e := range fe {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Get returns the shared validator
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return f.Name
		})
	})
	return validate
}

// Register adds a custom rule; packages call it from their init
func Register(tag string, fn validator.Func, message string) {
	registerMu.Lock()
	defer registerMu.Unlock()
	if err := Get().RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
	customMessages[tag] = message
}

// Struct validates s. Failures come back as a VALIDATION_ERROR AppError whose
// cause is FieldErrors.
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validation failed")
	}

	fields := make(FieldErrors, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &errors.AppError{Code: errors.CodeValidationError, Message: fields[0].Message, Cause: fields}
}

// Fields extracts FieldErrors from an error returned by Struct
func Fields(err error) FieldErrors {
	var fields FieldErrors
	if errors.As(err, &fields) {
		return fields
	}
	return nil
}

var customMessages = map[string]string{}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"url":      "%s must be a valid URL",
}

func translate(fe validator.FieldError) string {
	field := fe.Field()
	if template, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := customMessages[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}

	param := fe.Param()
	switch fe.Tag() {
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be %s %s characters", field, bound, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must have %s %s entries", field, bound, param)
		default:
			return fmt.Sprintf("%s must be %s %s", field, bound, param)
		}
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
