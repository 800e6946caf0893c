// Package wizard implements the conversational forms used by the bot: the
// task list/detail viewer and the add-task wizard. Step is a pure function of
// the conversation and the event apart from the Task Store calls it makes, so
// the whole dialog can be driven without a messaging front end.
package wizard

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"todo-list.com/todo-list/internal/constants"
	model "todo-list.com/todo-list/internal/models"
	"todo-list.com/todo-list/internal/timefmt"
)

// TaskStore is the subset of the Task Store the wizards use. Implementations
// report every failure as an absent result (nil or empty), never as an error.
type TaskStore interface {
	RegisterOrGetUser(ctx context.Context, handle int64, displayName string) *model.User
	ListTasksByHandle(ctx context.Context, handle int64) []model.Task
	CreateTaskForHandle(ctx context.Context, handle int64, title, description string, dueDate *time.Time, categoryIDs []string) *model.Task
	UpdateTaskStatus(ctx context.Context, taskID string, status constants.TaskStatus) *model.Task
}

type Machine struct {
	store  TaskStore
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewMachine builds a machine that parses and renders dates in loc.
func NewMachine(store TaskStore, loc *time.Location, logger *zap.Logger) *Machine {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		store:  store,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Step applies ev to conv and returns the next conversation together with the
// effects the front end has to perform. A returned conversation for which
// Done is true must be removed from the store.
func (m *Machine) Step(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	next, effects := m.step(ctx, conv, ev)
	if !next.Done() {
		next.UpdatedAt = m.now().UTC()
	}

	if next.State != conv.State {
		m.logger.Debug("wizard transition",
			zap.Int64("handle", conv.Handle),
			zap.Stringer("from", conv.State),
			zap.Stringer("to", next.State),
		)
	}
	return next, effects
}

func (m *Machine) step(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	if ev.Kind == EventCommand {
		return m.command(ctx, conv, ev)
	}

	if conv.Done() || !conv.State.Valid() {
		if ev.Kind == EventButton {
			return conv.end(), []Effect{notice(textDialogClosed), closeWindow()}
		}
		return conv.end(), []Effect{message(textIdle)}
	}

	if ev.Kind == EventButton && ev.Value == ButtonCancel {
		return conv.end(), []Effect{notice(textCancelled), closeWindow()}
	}

	switch conv.State {
	case StateList:
		return m.onList(ctx, conv, ev)
	case StateDetail:
		return m.onDetail(ctx, conv, ev)
	case StateTitle:
		return m.onTitle(ctx, conv, ev)
	case StateDescription:
		return m.onDescription(ctx, conv, ev)
	case StateDueDate:
		return m.onDueDate(ctx, conv, ev)
	default:
		return m.onConfirm(ctx, conv, ev)
	}
}

func (m *Machine) command(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	switch ev.Value {
	case CommandStart:
		name := strings.TrimSpace(ev.Arg)
		if name == "" {
			name = DefaultDisplayName(conv.Handle)
		}
		if user := m.store.RegisterOrGetUser(ctx, conv.Handle, name); user == nil {
			return conv.end(), []Effect{message(textRegistrationFailed)}
		}
		return conv.end(), []Effect{message(textWelcome)}
	case CommandHelp:
		return conv, []Effect{message(textHelp)}
	case CommandTasks:
		next := conv.start(StateList)
		return next, []Effect{m.render(ctx, next)}
	case CommandAdd:
		next := conv.start(StateTitle)
		return next, []Effect{m.render(ctx, next)}
	default:
		return conv, []Effect{message(textUnknownCommand)}
	}
}

func (m *Machine) onList(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	if ev.Kind == EventButton {
		switch ev.Value {
		case ButtonSelectTask:
			if ev.Arg != "" {
				next := conv.moveTo(StateDetail)
				next.Scratch.SelectedTaskID = ev.Arg
				return next, []Effect{m.render(ctx, next)}
			}
		case ButtonRefresh:
			return conv, []Effect{notice(textRefreshed), m.render(ctx, conv)}
		}
	}
	return conv, []Effect{m.render(ctx, conv)}
}

func (m *Machine) onDetail(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	if ev.Kind == EventButton {
		switch ev.Value {
		case ButtonBack:
			next := conv.moveTo(StateList)
			return next, []Effect{m.render(ctx, next)}
		case ButtonComplete:
			ack := notice(textCompleteFailed)
			if conv.Scratch.SelectedTaskID != "" {
				if task := m.store.UpdateTaskStatus(ctx, conv.Scratch.SelectedTaskID, constants.StatusCompleted); task != nil {
					ack = notice(textCompleted)
				}
			}
			next := conv.moveTo(StateList)
			return next, []Effect{ack, m.render(ctx, next)}
		}
	}
	return conv, []Effect{m.render(ctx, conv)}
}

func (m *Machine) onTitle(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	if ev.Kind != EventText {
		return conv, []Effect{m.render(ctx, conv)}
	}
	if strings.TrimSpace(ev.Value) == "" {
		return conv, []Effect{message(textEmptyTitle)}
	}

	next := conv.moveTo(StateDescription)
	next.Scratch.Title = ev.Value
	return next, []Effect{m.render(ctx, next)}
}

func (m *Machine) onDescription(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	next := conv
	switch {
	case ev.Kind == EventText:
		next = conv.moveTo(StateDueDate)
		next.Scratch.Description = ev.Value
	case ev.Kind == EventButton && ev.Value == ButtonSkipDescription:
		next = conv.moveTo(StateDueDate)
		next.Scratch.Description = ""
	case ev.Kind == EventButton && ev.Value == ButtonBack:
		next = conv.moveTo(StateTitle)
	}
	return next, []Effect{m.render(ctx, next)}
}

func (m *Machine) onDueDate(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	next := conv
	switch {
	case ev.Kind == EventText:
		due, err := timefmt.ParseDueDate(ev.Value, m.loc)
		if err != nil {
			return conv, []Effect{message(textInvalidDate)}
		}
		next = conv.moveTo(StateConfirm)
		next.Scratch.DueDate = &due
	case ev.Kind == EventButton && ev.Value == ButtonSkipDueDate:
		next = conv.moveTo(StateConfirm)
		next.Scratch.DueDate = nil
	case ev.Kind == EventButton && ev.Value == ButtonBack:
		next = conv.moveTo(StateDescription)
	}
	return next, []Effect{m.render(ctx, next)}
}

func (m *Machine) onConfirm(ctx context.Context, conv Conversation, ev Event) (Conversation, []Effect) {
	if ev.Kind == EventButton {
		switch ev.Value {
		case ButtonBack:
			next := conv.moveTo(StateDueDate)
			return next, []Effect{m.render(ctx, next)}
		case ButtonConfirm:
			s := conv.Scratch
			task := m.store.CreateTaskForHandle(ctx, conv.Handle, s.Title, s.Description, s.DueDate, nil)
			result := message(textCreateFailed)
			if task != nil {
				result = message(textCreated)
			}
			return conv.end(), []Effect{closeWindow(), result}
		}
	}
	return conv, []Effect{m.render(ctx, conv)}
}

// render produces the window of conv's current state, running the state's
// entry effect (the Task Store reads for list and detail).
func (m *Machine) render(ctx context.Context, conv Conversation) Effect {
	switch conv.State {
	case StateList:
		return listWindow(m.ListData(ctx, conv.Handle), m.loc)
	case StateDetail:
		return detailWindow(m.findTask(ctx, conv.Handle, conv.Scratch.SelectedTaskID), m.loc)
	case StateTitle:
		return titleWindow()
	case StateDescription:
		return descriptionWindow()
	case StateDueDate:
		return dueDateWindow()
	case StateConfirm:
		return confirmWindow(m.ConfirmData(conv.Scratch))
	}
	return closeWindow()
}

// ListData is what the list window shows.
type ListData struct {
	Tasks    []model.Task
	Count    int
	HasTasks bool
}

func (m *Machine) ListData(ctx context.Context, handle int64) ListData {
	tasks := m.store.ListTasksByHandle(ctx, handle)
	return ListData{
		Tasks:    tasks,
		Count:    len(tasks),
		HasTasks: len(tasks) > 0,
	}
}

// ConfirmData is the staged task formatted for review.
type ConfirmData struct {
	Title       string
	Description string
	DueDate     string
}

func (m *Machine) ConfirmData(s Scratch) ConfirmData {
	return ConfirmData{
		Title:       s.Title,
		Description: timefmt.OrPlaceholder(s.Description),
		DueDate:     timefmt.Format(s.DueDate, m.loc),
	}
}

func (m *Machine) findTask(ctx context.Context, handle int64, taskID string) *model.Task {
	if taskID == "" {
		return nil
	}
	for _, task := range m.store.ListTasksByHandle(ctx, handle) {
		if task.ID == taskID {
			return &task
		}
	}
	return nil
}
