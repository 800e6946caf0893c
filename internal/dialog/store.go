// Package dialog persists wizard conversations between inbound events.
package dialog

import (
	"context"
	"errors"

	"todo-list.com/todo-list/internal/wizard"
)

// Store keeps at most one conversation per user handle.
type Store interface {
	// Load returns nil and no error when the handle has no conversation.
	Load(ctx context.Context, handle int64) (*wizard.Conversation, error)
	Save(ctx context.Context, conv wizard.Conversation) error
	Delete(ctx context.Context, handle int64) error
}

var ErrInvalidHandle = errors.New("conversation handle is required")
