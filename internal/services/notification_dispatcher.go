package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
	"todo-list.com/todo-list/internal/telegram"
	"todo-list.com/todo-list/internal/timefmt"
)

type DispatchOutcome int

const (
	OutcomeSent DispatchOutcome = iota + 1
	OutcomeNotFound
	OutcomeNoHandle
	OutcomeAlreadySent
	OutcomeNotConfigured
	// OutcomeFailed means the messaging platform rejected the message.
	OutcomeFailed
	// OutcomeError means the message could not be handed to the platform.
	OutcomeError
	// OutcomeInFlight means another dispatcher holds the claim for the task.
	OutcomeInFlight
	// OutcomeSentUnmarked means the message went out but the flag could not
	// be stored; the task may be reminded again.
	OutcomeSentUnmarked
)

func (o DispatchOutcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeNotFound:
		return "task not found"
	case OutcomeNoHandle:
		return "owner has no telegram id"
	case OutcomeAlreadySent:
		return "already sent"
	case OutcomeNotConfigured:
		return "messaging not configured"
	case OutcomeFailed:
		return "rejected by messaging platform"
	case OutcomeError:
		return "delivery error"
	case OutcomeInFlight:
		return "dispatch in flight elsewhere"
	case OutcomeSentUnmarked:
		return "sent but not marked"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Messenger delivers a text message to a user handle.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// NotificationTaskStore is the store side of the dispatcher.
type NotificationTaskStore interface {
	FindWithOwner(ctx context.Context, id string) (*model.Task, error)
	MarkNotified(ctx context.Context, id string) error
}

// DispatchClaimer hands out short-lived per-task claims shared between
// processes.
type DispatchClaimer interface {
	Claim(ctx context.Context, taskID string) (bool, error)
	Release(ctx context.Context, taskID string) error
}

type NotificationDispatcher struct {
	tasks       NotificationTaskStore
	messenger   Messenger
	claimer     DispatchClaimer
	sendTimeout time.Duration
	loc         *time.Location
	logger      *zap.Logger
}

// NewNotificationDispatcher builds a dispatcher. A nil messenger means no bot
// token is configured; a nil claimer disables cross-process claims.
func NewNotificationDispatcher(
	tasks NotificationTaskStore,
	messenger Messenger,
	claimer DispatchClaimer,
	sendTimeout time.Duration,
	loc *time.Location,
	logger *zap.Logger,
) *NotificationDispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		tasks:       tasks,
		messenger:   messenger,
		claimer:     claimer,
		sendTimeout: sendTimeout,
		loc:         loc,
		logger:      logger,
	}
}

func (d *NotificationDispatcher) Dispatch(ctx context.Context, taskID string) DispatchOutcome {
	if d.claimer != nil {
		claimed, err := d.claimer.Claim(ctx, taskID)
		switch {
		case err != nil:
			d.logger.Warn("dispatch claim unavailable", zap.String("task_id", taskID), zap.Error(err))
		case !claimed:
			return OutcomeInFlight
		default:
			defer d.release(taskID)
		}
	}

	task, err := d.tasks.FindWithOwner(ctx, taskID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTaskNotFound) {
			return OutcomeNotFound
		}
		d.logger.Error("load task for dispatch failed", zap.String("task_id", taskID), zap.Error(err))
		return OutcomeError
	}

	if !task.User.HasTelegram() {
		return OutcomeNoHandle
	}
	if task.NotificationSent {
		return OutcomeAlreadySent
	}
	if d.messenger == nil {
		return OutcomeNotConfigured
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	err = d.messenger.SendMessage(sendCtx, *task.User.TelegramID, d.ComposeReminder(task))
	cancel()
	if err != nil {
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			d.logger.Warn("reminder rejected", zap.String("task_id", taskID), zap.Error(err))
			return OutcomeFailed
		}
		d.logger.Error("reminder delivery failed", zap.String("task_id", taskID), zap.Error(err))
		return OutcomeError
	}

	if err := d.tasks.MarkNotified(ctx, taskID); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyNotified) {
			return OutcomeAlreadySent
		}
		d.logger.Error("mark task notified failed", zap.String("task_id", taskID), zap.Error(err))
		return OutcomeSentUnmarked
	}
	return OutcomeSent
}

func (d *NotificationDispatcher) release(taskID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.claimer.Release(ctx, taskID); err != nil {
		d.logger.Warn("dispatch claim release failed", zap.String("task_id", taskID), zap.Error(err))
	}
}

// ComposeReminder renders the reminder text of task.
func (d *NotificationDispatcher) ComposeReminder(task *model.Task) string {
	var b strings.Builder
	b.WriteString("⏰ Task reminder!\n\n")
	b.WriteString("📌 " + task.Title)
	if task.Description != "" {
		b.WriteString("\n📝 " + task.Description)
	}
	if task.DueDate != nil {
		b.WriteString("\n📅 Due: " + timefmt.Format(task.DueDate, d.loc))
	}
	if names := task.CategoryNames(); len(names) > 0 {
		b.WriteString("\n🏷 Categories: " + strings.Join(names, ", "))
	}
	return b.String()
}
