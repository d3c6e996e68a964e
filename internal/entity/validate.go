package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by Validate when a record breaks its schema rules.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks a record against the schema rules declared in its struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Field()
		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.ToLower(field[:1]) + field[1:],
			Message: message,
		})
	}
	return out
}
