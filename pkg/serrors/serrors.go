package serrors

import (
	"errors"
	"fmt"
)

// BaseError is a coded error shared across modules. The code is stable and
// machine-readable; the message is for operators, the locale key for the UI layer.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithTemplateData returns a copy carrying template data for localization.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	clone := *e
	clone.TemplateData = data
	return &clone
}

// IsCode reports whether err wraps a BaseError with the given code.
func IsCode(err error, code string) bool {
	var base *BaseError
	if errors.As(err, &base) {
		return base.Code == code
	}
	return false
}

// AsBase unwraps err into a BaseError, if it carries one.
func AsBase(err error, target **BaseError) bool {
	return errors.As(err, target)
}

// Is matches errors by code so wrapped copies still compare equal.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return other.Code == e.Code
}
