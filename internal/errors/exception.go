package errors

import (
	"errors"
	"net/http"
)

type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// Is matches exceptions by message and status so wrapped copies and
// ad-hoc validation exceptions compare equal to catalogue entries.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return e.Message == t.Message && e.StatusCode == t.StatusCode
}

func NewBadRequest(message string) *Exception {
	return &Exception{Message: message, StatusCode: http.StatusBadRequest}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}
