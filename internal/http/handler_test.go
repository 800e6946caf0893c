package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "todo-list.com/todo-list/internal/configs"
	model "todo-list.com/todo-list/internal/models"
	repository "todo-list.com/todo-list/internal/repositories"
	"todo-list.com/todo-list/internal/services"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.NewDatabaseClient("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	tasks := repository.NewTaskRepository(db)
	h := NewHandler(
		services.NewUserService(users),
		services.NewCategoryService(categories, users),
		services.NewTaskService(tasks, users),
	)

	e := echo.New()
	Register(e, h, 1000, zap.NewNop())
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/health/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestRegisterTelegram(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/users/register_telegram", `{"telegram_id": 42, "username": "alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.User](t, rec)
	assert.Equal(t, "alice", created.Username)

	rec = do(t, e, http.MethodPost, "/api/users/register_telegram", `{"telegram_id": 42, "username": "ignored"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[model.User](t, rec).ID)

	rec = do(t, e, http.MethodPost, "/api/users/register_telegram", `{"telegram_id": 43}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "telegram_43", decode[model.User](t, rec).Username)

	rec = do(t, e, http.MethodPost, "/api/users/register_telegram", `{"username": "bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "telegram_id is required", errorOf(t, rec))

	rec = do(t, e, http.MethodPost, "/api/users/register_telegram", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON payload", errorOf(t, rec))
}

func TestUserByTelegram(t *testing.T) {
	e := newTestServer(t)
	do(t, e, http.MethodPost, "/api/users/register_telegram", `{"telegram_id": 7}`)

	rec := do(t, e, http.MethodGet, "/api/users/by_telegram?telegram_id=7", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/users/by_telegram?telegram_id=8", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", errorOf(t, rec))

	rec = do(t, e, http.MethodGet, "/api/users/by_telegram", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/users/by_telegram?telegram_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "telegram_id must be an integer", errorOf(t, rec))
}

func TestUserCRUD(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/users", `{"username": "carol", "email": "carol@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[model.User](t, rec)

	rec = do(t, e, http.MethodPost, "/api/users", `{"username": "carol"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user with this username already exists", errorOf(t, rec))

	rec = do(t, e, http.MethodPatch, "/api/users/"+user.ID, `{"email": "c@example.org"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c@example.org", decode[model.User](t, rec).Email)

	rec = do(t, e, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.User](t, rec), 1)

	rec = do(t, e, http.MethodDelete, "/api/users/"+user.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/users/"+user.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategories(t *testing.T) {
	e := newTestServer(t)
	user := decode[model.User](t, do(t, e, http.MethodPost, "/api/users/register_telegram", `{"telegram_id": 9}`))

	rec := do(t, e, http.MethodPost, "/api/categories", fmt.Sprintf(`{"user": %q, "name": "work"}`, user.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decode[model.Category](t, rec)
	assert.Equal(t, model.DefaultCategoryColor, category.Color)

	rec = do(t, e, http.MethodPost, "/api/categories", fmt.Sprintf(`{"user": %q, "name": "work"}`, user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	do(t, e, http.MethodPost, "/api/categories", fmt.Sprintf(`{"user": %q, "name": "home", "color": "#ff0000"}`, user.ID))

	rec = do(t, e, http.MethodGet, "/api/categories?telegram_id=9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]model.Category](t, rec)
	require.Len(t, listed, 2)
	assert.Equal(t, "home", listed[0].Name)

	rec = do(t, e, http.MethodPatch, "/api/categories/"+category.ID, `{"color": "#000000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#000000", decode[model.Category](t, rec).Color)

	rec = do(t, e, http.MethodDelete, "/api/categories/"+category.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, e, http.MethodDelete, "/api/categories/"+category.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasksForTelegram(t *testing.T) {
	e := newTestServer(t)
	do(t, e, http.MethodPost, "/api/users/register_telegram", `{"telegram_id": 5}`)

	rec := do(t, e, http.MethodPost, "/api/tasks/create_for_telegram", `{"telegram_id": 6, "title": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/tasks/create_for_telegram", `{"telegram_id": 5, "title": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", errorOf(t, rec))

	rec = do(t, e, http.MethodPost, "/api/tasks/create_for_telegram",
		`{"telegram_id": 5, "title": "first", "due_date": "2024-12-25T15:30:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[model.Task](t, rec)
	assert.Equal(t, "pending", string(first.Status))
	assert.False(t, first.NotificationSent)

	rec = do(t, e, http.MethodPost, "/api/tasks/create_for_telegram", `{"telegram_id": 5, "title": "second"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[model.Task](t, rec)

	rec = do(t, e, http.MethodGet, "/api/tasks/by_telegram?telegram_id=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]model.Task](t, rec)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	rec = do(t, e, http.MethodGet, "/api/tasks/by_telegram?telegram_id=999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Task](t, rec))
}

func TestTaskUpdateDueDate(t *testing.T) {
	e := newTestServer(t)
	user := decode[model.User](t, do(t, e, http.MethodPost, "/api/users", `{"username": "erin"}`))

	rec := do(t, e, http.MethodPost, "/api/tasks",
		fmt.Sprintf(`{"user": %q, "title": "dentist", "due_date": "2024-12-25T15:30:00Z"}`, user.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[model.Task](t, rec)
	require.NotNil(t, task.DueDate)

	rec = do(t, e, http.MethodPatch, "/api/tasks/"+task.ID, `{"title": "dentist at 4"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	kept := decode[model.Task](t, rec)
	require.NotNil(t, kept.DueDate)
	assert.True(t, task.DueDate.Equal(*kept.DueDate))

	rec = do(t, e, http.MethodPatch, "/api/tasks/"+task.ID, `{"due_date": "2025-01-10T09:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[model.Task](t, rec)
	require.NotNil(t, moved.DueDate)
	assert.Equal(t, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), moved.DueDate.UTC())

	rec = do(t, e, http.MethodPatch, "/api/tasks/"+task.ID, `{"due_date": null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[model.Task](t, rec).DueDate)

	rec = do(t, e, http.MethodPatch, "/api/tasks/"+task.ID, `{"due_date": "tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskUpdateAndDelete(t *testing.T) {
	e := newTestServer(t)
	user := decode[model.User](t, do(t, e, http.MethodPost, "/api/users", `{"username": "dave"}`))
	category := decode[model.Category](t, do(t, e, http.MethodPost, "/api/categories",
		fmt.Sprintf(`{"user": %q, "name": "home"}`, user.ID)))

	rec := do(t, e, http.MethodPost, "/api/tasks", fmt.Sprintf(`{"user": %q, "title": "paint", "category_ids": [%q]}`, user.ID, category.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[model.Task](t, rec)
	assert.Equal(t, []string{"home"}, task.CategoryNames())

	rec = do(t, e, http.MethodPatch, "/api/tasks/"+task.ID, `{"status": "completed", "category_ids": []}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Task](t, rec)
	assert.Equal(t, "completed", string(updated.Status))
	assert.Empty(t, updated.Categories)

	rec = do(t, e, http.MethodPatch, "/api/tasks/"+task.ID, `{"status": "archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/tasks?status=completed&user_id="+user.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Task](t, rec), 1)

	rec = do(t, e, http.MethodDelete, "/api/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "task not found", errorOf(t, rec))
}
