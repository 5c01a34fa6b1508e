// Package validator checks saga request payloads with go-playground/validator
// struct tags and reports problems keyed by the payload's JSON field names.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

// jsonName reports a field by its JSON key, e.g. "amount" for Amount, so
// error fields match what the coordinator sent in request_data.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]Problem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, Problem{Field: fe.Field(), Message: describe(fe)})
	}
	return &ValidationError{Problems: problems}
}

// Problem is one rejected field.
type Problem struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field of a payload.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("field '%s' %s", p.Field, p.Message)
	}
	return strings.Join(parts, "; ")
}

// Fields returns field name to message, as written in error bodies.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Problems))
	for _, p := range e.Problems {
		fields[p.Field] = p.Message
	}
	return fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "min":
		return minMax("at least", fe)
	case "max":
		return minMax("at most", fe)
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// minMax words length limits for strings and value limits for numbers.
func minMax(bound string, fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
	}
	return fmt.Sprintf("must be %s %s", bound, fe.Param())
}
