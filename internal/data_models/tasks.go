package dto

import "time"

type CreateTaskRequest struct {
	UserID      string     `json:"user" validate:"required"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"due_date"`
	CategoryIDs []string   `json:"category_ids"`
}

type CreateTaskForTelegramRequest struct {
	TelegramID  *int64     `json:"telegram_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CategoryIDs []string   `json:"category_ids"`
}

// UpdateTaskRequest is a partial update. A present category_ids list replaces
// the task's categories; an empty list clears them. A null due_date removes
// the due date.
type UpdateTaskRequest struct {
	Title       *string      `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string      `json:"description"`
	Status      *string      `json:"status" validate:"omitnil,oneof=pending in_progress completed"`
	DueDate     NullableTime `json:"due_date"`
	CategoryIDs *[]string    `json:"category_ids"`
}
