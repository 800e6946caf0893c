package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-list.com/todo-list/internal/constants"
	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskFilter narrows List. Zero fields are ignored; UserID wins over TelegramID.
type TaskFilter struct {
	UserID     string
	TelegramID *int64
	Status     constants.TaskStatus
}

// TaskChanges carries a partial update. Nil fields are left untouched;
// ClearDueDate removes the due date and wins over DueDate.
type TaskChanges struct {
	Title        *string
	Description  *string
	Status       *constants.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
	CategoryIDs  *[]string
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts task and links the given categories. Category ids that do not
// belong to the task's owner are ignored.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, categoryIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := ownedCategories(tx, task.UserID, categoryIDs)
		if err != nil {
			return err
		}
		task.Categories = categories

		if err := tx.Omit("Categories.*").Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("Categories").First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, apperrors.ErrTaskNotFound)
	}
	return &task, nil
}

// FindWithOwner reads a task together with its owner and categories. It always
// goes to the database.
func (r *TaskRepository) FindWithOwner(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Categories").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, apperrors.ErrTaskNotFound)
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).Preload("Categories")

	switch {
	case filter.UserID != "":
		query = query.Where("tasks.user_id = ?", filter.UserID)
	case filter.TelegramID != nil:
		query = query.Joins("JOIN users ON users.id = tasks.user_id").
			Where("users.telegram_id = ?", *filter.TelegramID)
	}
	if filter.Status != "" {
		query = query.Where("tasks.status = ?", filter.Status)
	}

	var tasks []model.Task
	if err := query.Order("tasks.created_at desc").Order("tasks.id desc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, changes TaskChanges) (*model.Task, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			return translateNotFound(err, apperrors.ErrTaskNotFound)
		}

		updates := map[string]interface{}{"updated_at": time.Now().UTC()}
		if changes.Title != nil {
			updates["title"] = *changes.Title
		}
		if changes.Description != nil {
			updates["description"] = *changes.Description
		}
		if changes.Status != nil {
			updates["status"] = *changes.Status
		}
		switch {
		case changes.ClearDueDate:
			updates["due_date"] = nil
		case changes.DueDate != nil:
			updates["due_date"] = changes.DueDate.UTC()
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		if changes.CategoryIDs == nil {
			return nil
		}
		categories, err := ownedCategories(tx, task.UserID, *changes.CategoryIDs)
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			return tx.Model(&task).Association("Categories").Clear()
		}
		return tx.Model(&task).Association("Categories").Replace(categories)
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status constants.TaskStatus) (*model.Task, error) {
	return r.Update(ctx, id, TaskChanges{Status: &status})
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task := model.Task{ID: id}
		if err := tx.Select("id").First(&task, "id = ?", id).Error; err != nil {
			return translateNotFound(err, apperrors.ErrTaskNotFound)
		}
		if err := tx.Select(clause.Associations).Delete(&task).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// DueCursor is the position of the last task of a page returned by
// QueryDueUnnotified.
type DueCursor struct {
	DueDate time.Time
	ID      string
}

// QueryDueUnnotified returns up to limit tasks whose due date has passed,
// whose reminder has not been sent, which are not completed and whose owner
// has a telegram id. Tasks are ordered by due date then id; pass the cursor
// of the previous page's last task to read the next page.
func (r *TaskRepository) QueryDueUnnotified(ctx context.Context, now time.Time, after *DueCursor, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Categories").
		Joins("JOIN users ON users.id = tasks.user_id").
		Where("users.telegram_id IS NOT NULL").
		Where("tasks.due_date IS NOT NULL AND tasks.due_date <= ?", now.UTC()).
		Where("tasks.notification_sent = ?", false).
		Where("tasks.status IN ?", constants.ActiveStatuses)
	if after != nil {
		due := after.DueDate.UTC()
		query = query.Where("(tasks.due_date > ? OR (tasks.due_date = ? AND tasks.id > ?))", due, due, after.ID)
	}

	var tasks []model.Task
	err := query.
		Order("tasks.due_date asc").
		Order("tasks.id asc").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("query due tasks: %w", err)
	}
	return tasks, nil
}

// MarkNotified flips notification_sent from false to true. The flag is only
// written when it is still false, so of two concurrent callers exactly one
// succeeds and the other gets ErrAlreadyNotified.
func (r *TaskRepository) MarkNotified(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND notification_sent = ?", id, false).
		UpdateColumn("notification_sent", true)

	if res.Error != nil {
		return fmt.Errorf("mark task notified: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("mark task notified: %w", err)
		}
		if count == 0 {
			return apperrors.ErrTaskNotFound
		}
		return apperrors.ErrAlreadyNotified
	}

	return nil
}

func ownedCategories(tx *gorm.DB, userID string, ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []model.Category
	if err := tx.Where("id IN ? AND user_id = ?", ids, userID).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return categories, nil
}

func translateNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
