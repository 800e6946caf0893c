package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"todo-list.com/todo-list/internal/constants"
	dto "todo-list.com/todo-list/internal/data_models"
	apperrors "todo-list.com/todo-list/internal/errors"
	"todo-list.com/todo-list/internal/http/validators"
	repository "todo-list.com/todo-list/internal/repositories"
	"todo-list.com/todo-list/internal/services"
)

func (h *Handler) ListTasks(c echo.Context) error {
	filter := repository.TaskFilter{
		UserID: c.QueryParam("user_id"),
		Status: constants.TaskStatus(c.QueryParam("status")),
	}
	telegramID, ok, err := telegramIDParam(c)
	if err != nil {
		return err
	}
	if ok {
		filter.TelegramID = &telegramID
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), services.NewTask{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      constants.TaskStatus(req.Status),
		DueDate:     req.DueDate,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	changes := repository.TaskChanges{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate.Value,
		ClearDueDate: req.DueDate.Clear(),
		CategoryIDs:  req.CategoryIDs,
	}
	if req.Status != nil {
		status := constants.TaskStatus(*req.Status)
		changes.Status = &status
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTasksByTelegram lists a telegram user's tasks, newest first.
func (h *Handler) ListTasksByTelegram(c echo.Context) error {
	telegramID, ok, err := telegramIDParam(c)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrTelegramIDRequired
	}

	tasks, err := h.taskService.ListTasksForTelegram(c.Request().Context(), telegramID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTaskForTelegram(c echo.Context) error {
	var req dto.CreateTaskForTelegramRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.TelegramID == nil {
		return apperrors.ErrTelegramIDRequired
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTaskForTelegram(c.Request().Context(), *req.TelegramID, services.NewTask{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}
