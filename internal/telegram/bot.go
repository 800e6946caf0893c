package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"todo-list.com/todo-list/internal/dialog"
	"todo-list.com/todo-list/internal/wizard"
)

// API is the part of the Bot API the bot loop talks to.
type API interface {
	GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]Update, error)
	SendWindow(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *InlineKeyboardMarkup) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

type Bot struct {
	api         API
	machine     *wizard.Machine
	dialogs     dialog.Store
	locks       *dialog.KeyedMutex
	logger      *zap.Logger
	pollTimeout time.Duration
	workers     int
	retryDelay  time.Duration
}

func NewBot(api API, machine *wizard.Machine, dialogs dialog.Store, logger *zap.Logger, pollTimeout time.Duration, workers int) *Bot {
	if workers <= 0 {
		workers = 1
	}
	return &Bot{
		api:         api,
		machine:     machine,
		dialogs:     dialogs,
		locks:       dialog.NewKeyedMutex(),
		logger:      logger,
		pollTimeout: pollTimeout,
		workers:     workers,
		retryDelay:  2 * time.Second,
	}
}

// Run long-polls for updates until ctx is done. Updates of one user are
// handled in order; different users are handled concurrently.
func (b *Bot) Run(ctx context.Context) error {
	offset := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			b.logger.Warn("telegram getUpdates failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.retryDelay):
			}
			continue
		}

		if next := b.HandleBatch(ctx, updates); next > offset {
			offset = next
		}
	}
}

// HandleBatch processes one batch of updates and returns the offset that
// acknowledges it.
func (b *Bot) HandleBatch(ctx context.Context, updates []Update) int {
	offset := 0
	var order []int64
	byUser := make(map[int64][]Update)
	for _, upd := range updates {
		if upd.UpdateID+1 > offset {
			offset = upd.UpdateID + 1
		}
		handle := upd.handle()
		if handle == 0 {
			continue
		}
		if _, ok := byUser[handle]; !ok {
			order = append(order, handle)
		}
		byUser[handle] = append(byUser[handle], upd)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, handle := range order {
		handle := handle
		batch := byUser[handle]
		g.Go(func() error {
			for _, upd := range batch {
				b.handleUpdate(gctx, handle, upd)
			}
			return nil
		})
	}
	_ = g.Wait()

	return offset
}

func (b *Bot) handleUpdate(ctx context.Context, handle int64, upd Update) {
	ev, ok := toEvent(upd)
	if !ok {
		return
	}

	unlock := b.locks.Lock(handle)
	defer unlock()

	conv := wizard.NewConversation(handle)
	stored, err := b.dialogs.Load(ctx, handle)
	if err != nil {
		b.logger.Error("load conversation failed", zap.Int64("handle", handle), zap.Error(err))
	} else if stored != nil {
		conv = *stored
	}

	next, effects := b.machine.Step(ctx, conv, ev)

	if next.Done() {
		if stored != nil {
			err = b.dialogs.Delete(ctx, handle)
		}
	} else {
		err = b.dialogs.Save(ctx, next)
	}
	if err != nil {
		b.logger.Error("persist conversation failed", zap.Int64("handle", handle), zap.Error(err))
	}

	b.apply(ctx, upd, effects)
}

// toEvent maps an update to a wizard event. Updates without text or data are
// ignored.
func toEvent(upd Update) (wizard.Event, bool) {
	if cq := upd.CallbackQuery; cq != nil {
		return wizard.Button(cq.Data), true
	}
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return wizard.Event{}, false
	}

	command, _ := parseCommand(msg.Text)
	switch {
	case command == "":
		return wizard.Text(msg.Text), true
	case command == wizard.CommandStart:
		return wizard.StartCommand(msg.From.Username), true
	default:
		return wizard.Command(command), true
	}
}

func parseCommand(text string) (string, string) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	cmd := strings.TrimPrefix(parts[0], "/")
	if idx := strings.Index(cmd, "@"); idx >= 0 {
		cmd = cmd[:idx]
	}
	cmd = strings.ToLower(cmd)
	if len(parts) == 1 {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(parts[1])
}

func (b *Bot) apply(ctx context.Context, upd Update, effects []wizard.Effect) {
	var chatID int64
	var source *Message
	cq := upd.CallbackQuery
	if cq != nil {
		source = cq.Message
		chatID = cq.From.ID
		if source != nil {
			chatID = source.Chat.ID
		}
	} else {
		chatID = upd.Message.Chat.ID
	}

	answered := false
	for _, effect := range effects {
		var err error
		switch effect.Kind {
		case wizard.EffectWindow:
			markup := toMarkup(effect.Keyboard)
			if source != nil {
				if err = b.api.EditMessageText(ctx, chatID, source.MessageID, effect.Text, markup); err == nil {
					continue
				}
				b.logger.Debug("edit window failed, sending a new one", zap.Error(err))
			}
			var id int
			id, err = b.api.SendWindow(ctx, chatID, effect.Text, markup)
			if err == nil && cq != nil {
				source = &Message{MessageID: id, Chat: Chat{ID: chatID}}
			}
		case wizard.EffectMessage:
			_, err = b.api.SendWindow(ctx, chatID, effect.Text, nil)
		case wizard.EffectNotice:
			if cq != nil && !answered {
				answered = true
				err = b.api.AnswerCallbackQuery(ctx, cq.ID, effect.Text)
			} else {
				_, err = b.api.SendWindow(ctx, chatID, effect.Text, nil)
			}
		case wizard.EffectClose:
			if source != nil {
				err = b.api.DeleteMessage(ctx, chatID, source.MessageID)
				source = nil
			}
		}
		if err != nil {
			b.logger.Warn("apply effect failed", zap.Int("kind", int(effect.Kind)), zap.Error(err))
		}
	}

	if cq != nil && !answered {
		if err := b.api.AnswerCallbackQuery(ctx, cq.ID, ""); err != nil {
			b.logger.Warn("answer callback failed", zap.Error(err))
		}
	}
}

func toMarkup(keyboard [][]wizard.KeyboardButton) *InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, InlineKeyboardButton{Text: button.Text, CallbackData: button.ID})
		}
		rows = append(rows, buttons)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
