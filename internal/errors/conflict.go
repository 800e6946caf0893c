package errors

import "net/http"

var ErrUsernameTaken = &Exception{
	Message:    "user with this username already exists",
	StatusCode: http.StatusBadRequest,
}

var ErrTelegramIDTaken = &Exception{
	Message:    "user with this telegram_id already exists",
	StatusCode: http.StatusBadRequest,
}

var ErrCategoryExists = &Exception{
	Message:    "category with this name already exists for the user",
	StatusCode: http.StatusBadRequest,
}

// ErrAlreadyNotified is returned when the notification_sent flag was already
// set by someone else when a dispatcher tried to set it.
var ErrAlreadyNotified = &Exception{
	Message:    "task notification already sent",
	StatusCode: http.StatusConflict,
}
