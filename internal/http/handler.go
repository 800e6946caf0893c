package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "todo-list.com/todo-list/internal/errors"
	"todo-list.com/todo-list/internal/services"
)

type Handler struct {
	userService     *services.UserService
	categoryService *services.CategoryService
	taskService     *services.TaskService
}

func NewHandler(
	userService *services.UserService,
	categoryService *services.CategoryService,
	taskService *services.TaskService,
) *Handler {
	return &Handler{
		userService:     userService,
		categoryService: categoryService,
		taskService:     taskService,
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// bind decodes the JSON body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	return nil
}

func requireID(c echo.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", apperrors.ErrIDRequired
	}
	return id, nil
}

// telegramIDParam reads the telegram_id query parameter. ok is false when the
// parameter is absent.
func telegramIDParam(c echo.Context) (id int64, ok bool, err error) {
	raw := c.QueryParam("telegram_id")
	if raw == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, apperrors.ErrInvalidTelegramID
	}
	return id, true, nil
}

// ErrorHandler renders every error as {"error": message}. Catalogue errors
// keep their status; anything else is logged and reported as a 500.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperrors.StatusCode(err)
		message := apperrors.Message(err)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, echo.Map{"error": message})
		}
		if writeErr != nil {
			logger.Warn("write error response failed", zap.Error(writeErr))
		}
	}
}
