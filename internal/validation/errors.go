// Package validation parses untrusted request input into typed values.
// Every rule is evaluated and all violations are reported together.
package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// get returns the shared validator instance.
func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an ordered list of failed rules. It is returned as a whole;
// no partial value accompanies it.
type Error struct {
	Fields []FieldError
}

// Error joins all messages.
func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the failed-rule messages in order.
func (e *Error) Messages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return msgs
}

func (e *Error) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// errOrNil returns e if it holds any failure.
func (e *Error) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewError builds an Error from a single failure.
func NewError(field, message string) *Error {
	e := &Error{}
	e.add(field, message)
	return e
}
