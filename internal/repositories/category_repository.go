package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

type CategoryFilter struct {
	UserID     string
	TelegramID *int64
}

type CategoryChanges struct {
	Name  *string
	Color *string
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrCategoryExists
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]model.Category, error) {
	query := r.db.WithContext(ctx).Model(&model.Category{})
	switch {
	case filter.UserID != "":
		query = query.Where("categories.user_id = ?", filter.UserID)
	case filter.TelegramID != nil:
		query = query.Joins("JOIN users ON users.id = categories.user_id").
			Where("users.telegram_id = ?", *filter.TelegramID)
	}

	var categories []model.Category
	if err := query.Order("categories.name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, changes CategoryChanges) (*model.Category, error) {
	updates := map[string]interface{}{}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.Color != nil {
		updates["color"] = *changes.Color
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrCategoryExists
			}
			return nil, fmt.Errorf("update category: %w", res.Error)
		}
	}
	return r.FindByID(ctx, id)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Category{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrCategoryNotFound
		}
		if err := tx.Exec("DELETE FROM task_categories WHERE category_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete category links: %w", err)
		}
		return nil
	})
}
