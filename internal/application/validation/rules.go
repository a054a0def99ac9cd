// Package validation runs ordered, per-field rule lists over the wizard forms.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldID names a form field. Each form has a closed set of them.
type FieldID string

// Rule checks one field of T and returns a user-facing message, or "" when
// the field is valid. Checks must not panic on zero values.
type Rule[T any] struct {
	Field FieldID
	Check func(T) string
}

// Validate runs rules in declaration order and collects every failure.
// An empty result means the record is valid.
func Validate[T any](record T, rules []Rule[T]) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.Check == nil {
			continue
		}
		if msg := r.Check(record); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Fields lists the field ids a rule set covers, in order.
func Fields[T any](rules []Rule[T]) []FieldID {
	out := make([]FieldID, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Field)
	}
	return out
}

var validate = validator.New()

func satisfies(value any, tag string) bool {
	return validate.Var(value, tag) == nil
}

func required[T any](field FieldID, get func(T) string, msg string) Rule[T] {
	return Rule[T]{
		Field: field,
		Check: func(rec T) string {
			if !satisfies(strings.TrimSpace(get(rec)), "required") {
				return msg
			}
			return ""
		},
	}
}
