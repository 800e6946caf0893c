package services

import (
	"context"

	model "todo-list.com/todo-list/internal/models"
	repository "todo-list.com/todo-list/internal/repositories"
)

type CategoryService struct {
	repo  *repository.CategoryRepository
	users *repository.UserRepository
}

func NewCategoryService(repo *repository.CategoryRepository, users *repository.UserRepository) *CategoryService {
	return &CategoryService{repo: repo, users: users}
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID, name, color string) (*model.Category, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	category := &model.Category{UserID: userID, Name: name, Color: color}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context, filter repository.CategoryFilter) ([]model.Category, error) {
	return s.repo.List(ctx, filter)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, changes repository.CategoryChanges) (*model.Category, error) {
	return s.repo.Update(ctx, id, changes)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
