package model

import (
	"time"

	"gorm.io/gorm"
)

const DefaultCategoryColor = "#3498db"

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_categories_user_name" json:"name"`
	Color     string    `gorm:"size:7;not null" json:"color"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_categories_user_name" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	return nil
}
