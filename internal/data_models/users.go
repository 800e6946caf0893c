package dto

type CreateUserRequest struct {
	Username   string `json:"username" validate:"required,max=150"`
	Email      string `json:"email" validate:"omitempty,email,max=254"`
	TelegramID *int64 `json:"telegram_id"`
}

// UpdateUserRequest is a partial update; absent fields are left untouched.
type UpdateUserRequest struct {
	Username   *string `json:"username" validate:"omitnil,min=1,max=150"`
	Email      *string `json:"email" validate:"omitnil,max=254"`
	TelegramID *int64  `json:"telegram_id"`
}

type RegisterTelegramRequest struct {
	TelegramID *int64 `json:"telegram_id" validate:"required"`
	Username   string `json:"username" validate:"max=150"`
}
