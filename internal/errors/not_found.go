package errors

import "net/http"

var ErrTaskNotFound = &Exception{
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
}

var ErrUserNotFound = &Exception{
	Message:    "user not found",
	StatusCode: http.StatusNotFound,
}

var ErrCategoryNotFound = &Exception{
	Message:    "category not found",
	StatusCode: http.StatusNotFound,
}
