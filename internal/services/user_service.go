package services

import (
	"context"
	"errors"
	"strconv"

	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
	repository "todo-list.com/todo-list/internal/repositories"
)

type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, user *model.User) error {
	return s.repo.Create(ctx, user)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.repo.FindByTelegramID(ctx, telegramID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, changes repository.UserChanges) (*model.User, error) {
	return s.repo.Update(ctx, id, changes)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// RegisterTelegram returns the user bound to telegramID, creating it when it
// does not exist yet. created reports whether a new user was stored.
func (s *UserService) RegisterTelegram(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, false, err
	}

	if username == "" {
		username = "telegram_" + strconv.FormatInt(telegramID, 10)
	}
	user = &model.User{Username: username, TelegramID: &telegramID}
	if err := s.repo.Create(ctx, user); err != nil {
		// a concurrent registration for the same id won the race
		if errors.Is(err, apperrors.ErrTelegramIDTaken) {
			existing, findErr := s.repo.FindByTelegramID(ctx, telegramID)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return user, true, nil
}
