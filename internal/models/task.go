package model

import (
	"time"

	"gorm.io/gorm"

	"todo-list.com/todo-list/internal/constants"
)

type Task struct {
	ID               string               `gorm:"primaryKey;size:36" json:"id"`
	Title            string               `gorm:"size:255;not null" json:"title"`
	Description      string               `gorm:"not null" json:"description"`
	Status           constants.TaskStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	DueDate          *time.Time           `gorm:"index" json:"due_date"`
	UserID           string               `gorm:"size:36;not null;index" json:"user"`
	User             *User                `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Categories       []Category           `gorm:"many2many:task_categories;constraint:OnDelete:CASCADE" json:"categories"`
	CreatedAt        time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	NotificationSent bool                 `gorm:"not null;index" json:"notification_sent"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.Status == "" {
		t.Status = constants.StatusPending
	}
	if t.DueDate != nil {
		utc := t.DueDate.UTC()
		t.DueDate = &utc
	}
	return nil
}

// CategoryNames returns the names of the task's categories in their stored order.
func (t *Task) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		names = append(names, c.Name)
	}
	return names
}
