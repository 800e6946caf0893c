package errors

import "net/http"

var ErrInvalidJSON = &Exception{
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}

var ErrIDRequired = &Exception{
	Message:    "id is required",
	StatusCode: http.StatusBadRequest,
}

var ErrTelegramIDRequired = &Exception{
	Message:    "telegram_id is required",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidTelegramID = &Exception{
	Message:    "telegram_id must be an integer",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidStatus = &Exception{
	Message:    "status must be one of pending, in_progress, completed",
	StatusCode: http.StatusBadRequest,
}
