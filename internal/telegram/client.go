// Package telegram is the messaging front end: a Bot API client, the
// long-poll loop that drives the wizards and the messenger used for task
// reminders.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a rejected Bot API call.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error (status %d): %s", e.StatusCode, e.Description)
}

type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 70 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, name)
}

func (c *Client) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]Update, error) {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	u, err := url.Parse(c.method("getUpdates"))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	q.Set("allowed_updates", `["message","callback_query"]`)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	var res apiResponse[[]Update]
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return res.Result, nil
}

// SendMessage sends plain text to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.SendWindow(ctx, chatID, text, nil)
	return err
}

// SendWindow sends text with an optional inline keyboard and returns the new
// message id.
func (c *Client) SendWindow(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) (int, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	var res apiResponse[Message]
	if err := c.post(ctx, "sendMessage", payload, &res); err != nil {
		return 0, err
	}
	return res.Result.MessageID, nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	var res apiResponse[json.RawMessage]
	return c.post(ctx, "editMessageText", payload, &res)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	var res apiResponse[bool]
	return c.post(ctx, "deleteMessage", payload, &res)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	payload := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		payload["text"] = text
	}
	var res apiResponse[bool]
	return c.post(ctx, "answerCallbackQuery", payload, &res)
}

type apiResponse[T any] struct {
	Ok          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

func (r *apiResponse[T]) failure() (bool, string) {
	return !r.Ok, r.Description
}

type response interface {
	failure() (bool, string)
}

func (c *Client) post(ctx context.Context, method string, payload any, out response) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method(method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out response) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// The request URL carries the bot token, keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("telegram %s: %w", path.Base(req.URL.Path), urlErr.Err)
		}
		return err
	}
	defer resp.Body.Close()

	decodeErr := json.NewDecoder(resp.Body).Decode(out)
	failed, description := out.failure()
	if resp.StatusCode >= http.StatusBadRequest || (decodeErr == nil && failed) {
		if description == "" {
			description = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Description: description}
	}
	return decodeErr
}
