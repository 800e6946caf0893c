package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "todo-list.com/todo-list/internal/data_models"
	"todo-list.com/todo-list/internal/http/validators"
	repository "todo-list.com/todo-list/internal/repositories"
)

func (h *Handler) ListCategories(c echo.Context) error {
	filter := repository.CategoryFilter{UserID: c.QueryParam("user_id")}
	telegramID, ok, err := telegramIDParam(c)
	if err != nil {
		return err
	}
	if ok {
		filter.TelegramID = &telegramID
	}

	categories, err := h.categoryService.ListCategories(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req dto.CreateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), req.UserID, req.Name, req.Color)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	category, err := h.categoryService.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), id, repository.CategoryChanges{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	if err := h.categoryService.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
