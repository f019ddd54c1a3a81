// Package common holds the small shared pieces of the application layer.
package common

import (
	"fmt"
)

// UserVisibleError is an error whose message is safe to return to the
// client, together with the HTTP status it should map to. Anything else
// surfaces as a plain internal server error.
type UserVisibleError struct {
	HttpCode int
	Message  string
}

func (e *UserVisibleError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.HttpCode, e.Message)
}

func NewUserVisibleError(httpCode int, message string) *UserVisibleError {
	return &UserVisibleError{
		HttpCode: httpCode,
		Message:  message,
	}
}
