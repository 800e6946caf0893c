package services

import (
	"context"
	"time"

	"todo-list.com/todo-list/internal/constants"
	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
	repository "todo-list.com/todo-list/internal/repositories"
)

// NewTask is the input of CreateTask. An empty Status means pending.
type NewTask struct {
	UserID      string
	Title       string
	Description string
	Status      constants.TaskStatus
	DueDate     *time.Time
	CategoryIDs []string
}

type TaskService struct {
	repo  *repository.TaskRepository
	users *repository.UserRepository
}

func NewTaskService(repo *repository.TaskRepository, users *repository.UserRepository) *TaskService {
	return &TaskService{
		repo:  repo,
		users: users,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, in NewTask) (*model.Task, error) {
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	return s.createTaskRecord(ctx, in)
}

// CreateTaskForTelegram creates a task owned by the user bound to telegramID.
func (s *TaskService) CreateTaskForTelegram(ctx context.Context, telegramID int64, in NewTask) (*model.Task, error) {
	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	in.UserID = user.ID
	return s.createTaskRecord(ctx, in)
}

func (s *TaskService) createTaskRecord(ctx context.Context, in NewTask) (*model.Task, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	task := &model.Task{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
	}
	if err := s.repo.Create(ctx, task, in.CategoryIDs); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, task.ID)
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// ListTasksForTelegram lists the tasks of the user bound to telegramID, newest
// first. An unknown id yields an empty list.
func (s *TaskService) ListTasksForTelegram(ctx context.Context, telegramID int64) ([]model.Task, error) {
	return s.repo.List(ctx, repository.TaskFilter{TelegramID: &telegramID})
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, changes repository.TaskChanges) (*model.Task, error) {
	if changes.Status != nil && !changes.Status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	return s.repo.Update(ctx, id, changes)
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
