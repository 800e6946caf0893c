package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "todo-list.com/todo-list/internal/data_models"
	apperrors "todo-list.com/todo-list/internal/errors"
	"todo-list.com/todo-list/internal/http/validators"
	model "todo-list.com/todo-list/internal/models"
	repository "todo-list.com/todo-list/internal/repositories"
)

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	user := &model.User{Username: req.Username, Email: req.Email, TelegramID: req.TelegramID}
	if err := h.userService.CreateUser(c.Request().Context(), user); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), id, repository.UserChanges{
		Username:   req.Username,
		Email:      req.Email,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RegisterTelegram returns 201 for a new user and 200 for an existing one.
func (h *Handler) RegisterTelegram(c echo.Context) error {
	var req dto.RegisterTelegramRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.TelegramID == nil {
		return apperrors.ErrTelegramIDRequired
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	user, created, err := h.userService.RegisterTelegram(c.Request().Context(), *req.TelegramID, req.Username)
	if err != nil {
		return err
	}
	if created {
		return c.JSON(http.StatusCreated, user)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) GetUserByTelegram(c echo.Context) error {
	telegramID, ok, err := telegramIDParam(c)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrTelegramIDRequired
	}

	user, err := h.userService.GetUserByTelegramID(c.Request().Context(), telegramID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
