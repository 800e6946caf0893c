// Package apiclient is the bot's Task Store: a thin client of the REST API.
// Every method reports failure as an absent result and logs the cause.
package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"todo-list.com/todo-list/internal/constants"
	model "todo-list.com/todo-list/internal/models"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "todo-list-bot",
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: time.Minute,
		},
		logger: logger,
	}
}

type registerRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
}

type createTaskRequest struct {
	TelegramID  int64      `json:"telegram_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CategoryIDs []string   `json:"category_ids,omitempty"`
}

type statusRequest struct {
	Status constants.TaskStatus `json:"status"`
}

type createCategoryRequest struct {
	UserID string `json:"user"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
}

func handleQuery(handle int64) string {
	return "?" + url.Values{"telegram_id": {strconv.FormatInt(handle, 10)}}.Encode()
}

func (c *Client) RegisterOrGetUser(ctx context.Context, handle int64, displayName string) *model.User {
	var user model.User
	if !c.call(ctx, fasthttp.MethodPost, "/users/register_telegram", registerRequest{TelegramID: handle, Username: displayName}, &user) {
		return nil
	}
	return &user
}

func (c *Client) GetUserByHandle(ctx context.Context, handle int64) *model.User {
	var user model.User
	if !c.call(ctx, fasthttp.MethodGet, "/users/by_telegram"+handleQuery(handle), nil, &user) {
		return nil
	}
	return &user
}

func (c *Client) ListTasksByHandle(ctx context.Context, handle int64) []model.Task {
	var tasks []model.Task
	if !c.call(ctx, fasthttp.MethodGet, "/tasks/by_telegram"+handleQuery(handle), nil, &tasks) {
		return nil
	}
	return tasks
}

func (c *Client) CreateTaskForHandle(ctx context.Context, handle int64, title, description string, dueDate *time.Time, categoryIDs []string) *model.Task {
	body := createTaskRequest{
		TelegramID:  handle,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		CategoryIDs: categoryIDs,
	}
	var task model.Task
	if !c.call(ctx, fasthttp.MethodPost, "/tasks/create_for_telegram", body, &task) {
		return nil
	}
	return &task
}

func (c *Client) UpdateTaskStatus(ctx context.Context, taskID string, status constants.TaskStatus) *model.Task {
	var task model.Task
	if !c.call(ctx, fasthttp.MethodPatch, "/tasks/"+url.PathEscape(taskID), statusRequest{Status: status}, &task) {
		return nil
	}
	return &task
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) bool {
	status, _, ok := c.do(ctx, fasthttp.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil)
	return ok && status == fasthttp.StatusNoContent
}

func (c *Client) ListCategoriesByHandle(ctx context.Context, handle int64) []model.Category {
	var categories []model.Category
	if !c.call(ctx, fasthttp.MethodGet, "/categories"+handleQuery(handle), nil, &categories) {
		return nil
	}
	return categories
}

func (c *Client) CreateCategory(ctx context.Context, userID, name, color string) *model.Category {
	var category model.Category
	body := createCategoryRequest{UserID: userID, Name: name, Color: color}
	if !c.call(ctx, fasthttp.MethodPost, "/categories", body, &category) {
		return nil
	}
	return &category
}

// call performs the request and decodes a 200 or 201 body into out.
func (c *Client) call(ctx context.Context, method, path string, in, out any) bool {
	status, body, ok := c.do(ctx, method, path, in)
	if !ok {
		return false
	}
	switch status {
	case fasthttp.StatusOK, fasthttp.StatusCreated:
	case fasthttp.StatusNotFound:
		return false
	default:
		c.logger.Warn("api request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.ByteString("body", body),
		)
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("api response decode failed", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// do sends one request and returns the status and a copy of the body. ok is
// false on transport errors, which are logged here.
func (c *Client) do(ctx context.Context, method, path string, in any) (int, []byte, bool) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			c.logger.Error("api request encode failed", zap.String("path", path), zap.Error(err))
			return 0, nil, false
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return 0, nil, false
	}

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, true
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}
