package validation

import (
	"fmt"
	"slices"
	"strings"
)

// FieldError is one failed configuration rule.
type FieldError struct {
	Path string // section.field
	Msg  string
	Err  error // underlying cause, if any
}

func (e *FieldError) Error() string {
	return e.Path + ": " + e.Msg
}

func (e *FieldError) Unwrap() error { return e.Err }

// Errors is every rule that failed during one validation pass.
type Errors []*FieldError

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// ConfigValidator checks the fields of one configuration section fluently,
// collecting every failure instead of stopping at the first.
type ConfigValidator struct {
	section string
	errs    Errors
}

// NewConfigValidator starts validating the named section.
func NewConfigValidator(section string) *ConfigValidator {
	return &ConfigValidator{section: section}
}

func (cv *ConfigValidator) fail(field string, err error, format string, args ...any) {
	cv.errs = append(cv.errs, &FieldError{
		Path: cv.section + "." + field,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	})
}

// Required fails when value is empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.fail(field, nil, "required field is empty")
	}
	return cv
}

// Range fails when value is outside [min, max].
func (cv *ConfigValidator) Range(field string, value, min, max int) *ConfigValidator {
	if value < min || value > max {
		cv.fail(field, nil, "value %d is outside range [%d, %d]", value, min, max)
	}
	return cv
}

// OneOf fails unless value is one of allowed, compared case-insensitively.
func (cv *ConfigValidator) OneOf(field, value string, allowed ...string) *ConfigValidator {
	if !slices.Contains(allowed, strings.ToLower(value)) {
		cv.fail(field, nil, "value %q must be one of %v", value, allowed)
	}
	return cv
}

// Name fails when value is not a valid record type or field name.
func (cv *ConfigValidator) Name(field, value string) *ConfigValidator {
	if err := ValidateName(value); err != nil {
		cv.fail(field, err, "%v", err)
	}
	return cv
}

// Custom fails with the error fn returns.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.fail(field, err, "%v", err)
	}
	return cv
}

// When applies validations only if condition holds.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// Errors returns the failures collected so far.
func (cv *ConfigValidator) Errors() Errors {
	return cv.errs
}

// Err returns the collected failures as one error, or nil.
func (cv *ConfigValidator) Err() error {
	if len(cv.errs) == 0 {
		return nil
	}
	return cv.errs
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
