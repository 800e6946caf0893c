package http

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	middleware "todo-list.com/todo-list/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int, logger *zap.Logger) {
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	api := e.Group("/api")
	api.GET("/health", h.Health)

	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)
	api.POST("/users/register_telegram", h.RegisterTelegram)
	api.GET("/users/by_telegram", h.GetUserByTelegram)
	api.GET("/users/:id", h.GetUser)
	api.PATCH("/users/:id", h.UpdateUser)
	api.PUT("/users/:id", h.UpdateUser)
	api.DELETE("/users/:id", h.DeleteUser)

	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.CreateCategory)
	api.GET("/categories/:id", h.GetCategory)
	api.PATCH("/categories/:id", h.UpdateCategory)
	api.PUT("/categories/:id", h.UpdateCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)

	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/by_telegram", h.ListTasksByTelegram)
	api.POST("/tasks/create_for_telegram", h.CreateTaskForTelegram)
	api.GET("/tasks/:id", h.GetTask)
	api.PATCH("/tasks/:id", h.UpdateTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
}
