package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

type UserChanges struct {
	Username   *string
	Email      *string
	TelegramID *int64
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return r.translateConflict(ctx, err, user)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		return nil, translateNotFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("date_joined asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, changes UserChanges) (*model.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if changes.Username != nil {
		updates["username"] = *changes.Username
		user.Username = *changes.Username
	}
	if changes.Email != nil {
		updates["email"] = *changes.Email
	}
	if changes.TelegramID != nil {
		updates["telegram_id"] = *changes.TelegramID
		user.TelegramID = changes.TelegramID
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, r.translateConflict(ctx, err, user)
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}
		// sqlite runs without foreign key enforcement, so cascade by hand.
		taskIDs := tx.Model(&model.Task{}).Select("id").Where("user_id = ?", id)
		if err := tx.Exec("DELETE FROM task_categories WHERE task_id IN (?)", taskIDs).Error; err != nil {
			return fmt.Errorf("delete user task links: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete user tasks: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Category{}).Error; err != nil {
			return fmt.Errorf("delete user categories: %w", err)
		}
		return nil
	})
}

// translateConflict tells a username clash from a telegram_id clash.
func (r *UserRepository) translateConflict(ctx context.Context, err error, user *model.User) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("save user: %w", err)
	}
	if user.TelegramID != nil {
		var count int64
		r.db.WithContext(ctx).Model(&model.User{}).
			Where("telegram_id = ? AND id <> ?", *user.TelegramID, user.ID).
			Count(&count)
		if count > 0 {
			return apperrors.ErrTelegramIDTaken
		}
	}
	return apperrors.ErrUsernameTaken
}
