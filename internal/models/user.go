package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Username   string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email      string    `gorm:"size:254" json:"email"`
	TelegramID *int64    `gorm:"uniqueIndex" json:"telegram_id"`
	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

func (u *User) HasTelegram() bool {
	return u != nil && u.TelegramID != nil
}
