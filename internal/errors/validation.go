package errors

import "strings"

// FieldError is a validation failure for one input field
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects every offending field of an input, in form order.
// It matches ErrValidation with Is.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Field returns the message for field, or "" if the field is valid
func (v ValidationErrors) Field(field string) string {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Add records a failure for field
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Required records message for field when value is blank
func (v *ValidationErrors) Required(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, message)
	}
}

// Err returns nil when nothing failed
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
