package serrors

import "fmt"

// Error is a coded error carried across service boundaries. Code is a stable
// machine-readable identifier; Details is optional free-form context.
type Error struct {
	Code    string
	Message string
	Details string
}

func NewError(code, message, details string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func (e *Error) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

func (e *Error) WithDetails(details string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// Is matches by code so wrapped instances with differing details still compare
// equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
