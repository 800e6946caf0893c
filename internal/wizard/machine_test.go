package wizard

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list.com/todo-list/internal/constants"
	model "todo-list.com/todo-list/internal/models"
)

type createCall struct {
	handle      int64
	title       string
	description string
	dueDate     *time.Time
	categoryIDs []string
}

// fakeStore is an in-memory TaskStore. fail makes every write return nil.
type fakeStore struct {
	mu       sync.Mutex
	tasks    []model.Task
	users    map[int64]string
	creates  []createCall
	updates  []string
	lists    int
	fail     bool
	failList bool
}

func newFakeStore(tasks ...model.Task) *fakeStore {
	return &fakeStore{tasks: tasks, users: map[int64]string{}}
}

func (f *fakeStore) RegisterOrGetUser(_ context.Context, handle int64, name string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil
	}
	if _, ok := f.users[handle]; !ok {
		f.users[handle] = name
	}
	h := handle
	return &model.User{ID: "u1", Username: f.users[handle], TelegramID: &h}
}

func (f *fakeStore) ListTasksByHandle(context.Context, int64) []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failList {
		return nil
	}
	return append([]model.Task(nil), f.tasks...)
}

func (f *fakeStore) CreateTaskForHandle(_ context.Context, handle int64, title, description string, dueDate *time.Time, categoryIDs []string) *model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{handle, title, description, dueDate, categoryIDs})
	if f.fail {
		return nil
	}
	task := model.Task{ID: model.NewID(), Title: title, Description: description, DueDate: dueDate, Status: constants.StatusPending}
	f.tasks = append(f.tasks, task)
	return &task
}

func (f *fakeStore) UpdateTaskStatus(_ context.Context, taskID string, status constants.TaskStatus) *model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, taskID)
	if f.fail {
		return nil
	}
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks[i].Status = status
			task := f.tasks[i]
			return &task
		}
	}
	return nil
}

const handle int64 = 4242

func newTestMachine(store TaskStore) *Machine {
	return NewMachine(store, time.UTC, nil)
}

func run(t *testing.T, m *Machine, conv Conversation, events ...Event) (Conversation, []Effect) {
	t.Helper()
	var effects []Effect
	for _, ev := range events {
		conv, effects = m.Step(context.Background(), conv, ev)
	}
	return conv, effects
}

func findEffect(effects []Effect, kind EffectKind) (Effect, bool) {
	for _, e := range effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return Effect{}, false
}

func buttonIDs(e Effect) []string {
	var ids []string
	for _, row := range e.Keyboard {
		for _, b := range row {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func TestAddFlow_SkipEverythingAndConfirm(t *testing.T) {
	store := newFakeStore()
	m := newTestMachine(store)

	conv, _ := run(t, m, NewConversation(handle),
		Command(CommandAdd),
		Text("Buy milk"),
		Button(ButtonSkipDescription),
		Button(ButtonSkipDueDate),
	)

	require.Equal(t, StateConfirm, conv.State)
	assert.Equal(t, Scratch{Title: "Buy milk", Description: "", DueDate: nil}, conv.Scratch)

	data := m.ConfirmData(conv.Scratch)
	assert.Equal(t, ConfirmData{Title: "Buy milk", Description: "—", DueDate: "—"}, data)

	conv, effects := run(t, m, conv, Button(ButtonConfirm))

	assert.True(t, conv.Done())
	require.Len(t, store.creates, 1)
	assert.Equal(t, createCall{handle: handle, title: "Buy milk", description: "", dueDate: nil}, store.creates[0])

	msg, ok := findEffect(effects, EffectMessage)
	require.True(t, ok)
	assert.Equal(t, textCreated, msg.Text)
}

func TestAddFlow_FullInput(t *testing.T) {
	store := newFakeStore()
	m := newTestMachine(store)

	conv, effects := run(t, m, NewConversation(handle),
		Command(CommandAdd),
		Text("Report"),
		Text("Quarterly numbers"),
		Text("25.12.2024 15:30"),
	)

	require.Equal(t, StateConfirm, conv.State)
	require.NotNil(t, conv.Scratch.DueDate)
	assert.True(t, time.Date(2024, 12, 25, 15, 30, 0, 0, time.UTC).Equal(*conv.Scratch.DueDate))

	window, ok := findEffect(effects, EffectWindow)
	require.True(t, ok)
	assert.Contains(t, window.Text, "Report")
	assert.Contains(t, window.Text, "Quarterly numbers")
	assert.Contains(t, window.Text, "25.12.2024 15:30")

	conv, _ = run(t, m, conv, Button(ButtonConfirm))
	assert.True(t, conv.Done())
	require.Len(t, store.creates, 1)
	assert.Equal(t, "Quarterly numbers", store.creates[0].description)
	require.NotNil(t, store.creates[0].dueDate)
}

func TestAddFlow_InvalidDateStaysAndRetries(t *testing.T) {
	m := newTestMachine(newFakeStore())

	conv, _ := run(t, m, NewConversation(handle), Command(CommandAdd), Text("T"), Button(ButtonSkipDescription))
	require.Equal(t, StateDueDate, conv.State)

	for i := 0; i < 3; i++ {
		var effects []Effect
		conv, effects = run(t, m, conv, Text("not a date"))
		assert.Equal(t, StateDueDate, conv.State)
		require.Len(t, effects, 1)
		assert.Equal(t, EffectMessage, effects[0].Kind)
		assert.Contains(t, effects[0].Text, "❌")
	}

	conv, _ = run(t, m, conv, Text("25.12.2024"))
	assert.Equal(t, StateConfirm, conv.State)
	require.NotNil(t, conv.Scratch.DueDate)
	assert.True(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC).Equal(*conv.Scratch.DueDate))
}

func TestAddFlow_EmptyTitleRejected(t *testing.T) {
	m := newTestMachine(newFakeStore())

	conv, effects := run(t, m, NewConversation(handle), Command(CommandAdd), Text("   "))

	assert.Equal(t, StateTitle, conv.State)
	assert.Empty(t, conv.Scratch.Title)
	require.Len(t, effects, 1)
	assert.Contains(t, effects[0].Text, "❌")

	conv, _ = run(t, m, conv, Text("  padded  "))
	assert.Equal(t, StateDescription, conv.State)
	assert.Equal(t, "  padded  ", conv.Scratch.Title)
}

func TestAddFlow_BackEdges(t *testing.T) {
	m := newTestMachine(newFakeStore())
	conv, _ := run(t, m, NewConversation(handle), Command(CommandAdd), Text("T"), Text("D"), Button(ButtonSkipDueDate))
	require.Equal(t, StateConfirm, conv.State)

	conv, _ = run(t, m, conv, Button(ButtonBack))
	assert.Equal(t, StateDueDate, conv.State)
	conv, _ = run(t, m, conv, Button(ButtonBack))
	assert.Equal(t, StateDescription, conv.State)
	conv, _ = run(t, m, conv, Button(ButtonBack))
	assert.Equal(t, StateTitle, conv.State)

	// back from the initial state is not an edge
	conv, _ = run(t, m, conv, Button(ButtonBack))
	assert.Equal(t, StateTitle, conv.State)
	assert.Equal(t, "T", conv.Scratch.Title)
	assert.Equal(t, "D", conv.Scratch.Description)
}

func TestAddFlow_ConfirmFailureStillEnds(t *testing.T) {
	store := newFakeStore()
	store.fail = true
	m := newTestMachine(store)

	conv, effects := run(t, m, NewConversation(handle),
		Command(CommandAdd), Text("T"), Button(ButtonSkipDescription), Button(ButtonSkipDueDate), Button(ButtonConfirm),
	)

	assert.True(t, conv.Done())
	assert.Len(t, store.creates, 1)
	msg, ok := findEffect(effects, EffectMessage)
	require.True(t, ok)
	assert.Equal(t, textCreateFailed, msg.Text)
}

func TestCancelFromEveryState(t *testing.T) {
	task := model.Task{ID: "t1", Title: "x", Status: constants.StatusPending}

	paths := map[string][]Event{
		"list":        {Command(CommandTasks)},
		"detail":      {Command(CommandTasks), SelectTask("t1")},
		"title":       {Command(CommandAdd)},
		"description": {Command(CommandAdd), Text("T")},
		"due_date":    {Command(CommandAdd), Text("T"), Text("D")},
		"confirm":     {Command(CommandAdd), Text("T"), Text("D"), Button(ButtonSkipDueDate)},
	}

	for name, events := range paths {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore(task)
			m := newTestMachine(store)
			conv, _ := run(t, m, NewConversation(handle), events...)
			require.False(t, conv.Done())

			conv, effects := run(t, m, conv, Button(ButtonCancel))
			assert.True(t, conv.Done())
			assert.Equal(t, Scratch{}, conv.Scratch)
			_, closed := findEffect(effects, EffectClose)
			assert.True(t, closed)
			assert.Empty(t, store.creates)
			assert.Empty(t, store.updates)
		})
	}
}

func TestViewFlow_ListDetailBack(t *testing.T) {
	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC)
	store := newFakeStore(
		model.Task{ID: "t1", Title: "First", Status: constants.StatusPending, CreatedAt: created, DueDate: &due,
			Categories: []model.Category{{Name: "home"}, {Name: "urgent"}}},
		model.Task{ID: "t2", Title: "Second", Status: constants.StatusInProgress, CreatedAt: created},
	)
	m := newTestMachine(store)

	conv, effects := run(t, m, NewConversation(handle), Command(CommandTasks))
	require.Equal(t, StateList, conv.State)
	window, ok := findEffect(effects, EffectWindow)
	require.True(t, ok)
	assert.Contains(t, window.Text, "Total tasks: 2")
	assert.Contains(t, buttonIDs(window), "task_select:t1")

	data := m.ListData(context.Background(), handle)
	assert.Equal(t, 2, data.Count)
	assert.True(t, data.HasTasks)

	conv, effects = run(t, m, conv, Button("task_select:t1"))
	require.Equal(t, StateDetail, conv.State)
	assert.Equal(t, "t1", conv.Scratch.SelectedTaskID)
	window, _ = findEffect(effects, EffectWindow)
	assert.Contains(t, window.Text, "First")
	assert.Contains(t, window.Text, "home, urgent")
	assert.Contains(t, window.Text, "05.01.2024 18:00")
	assert.Contains(t, window.Text, "Description: —")

	conv, _ = run(t, m, conv, Button(ButtonBack))
	assert.Equal(t, StateList, conv.State)
}

func TestViewFlow_EmptyList(t *testing.T) {
	m := newTestMachine(newFakeStore())

	conv, effects := run(t, m, NewConversation(handle), Command(CommandTasks))

	assert.Equal(t, StateList, conv.State)
	window, ok := findEffect(effects, EffectWindow)
	require.True(t, ok)
	assert.Contains(t, window.Text, "no tasks yet")
	assert.False(t, m.ListData(context.Background(), handle).HasTasks)
}

func TestViewFlow_DetailMissingTask(t *testing.T) {
	store := newFakeStore(model.Task{ID: "t1", Title: "First"})
	m := newTestMachine(store)

	conv, effects := run(t, m, NewConversation(handle), Command(CommandTasks), SelectTask("gone"))

	assert.Equal(t, StateDetail, conv.State)
	window, ok := findEffect(effects, EffectWindow)
	require.True(t, ok)
	assert.Equal(t, textNoTask, window.Text)
}

func TestViewFlow_Complete(t *testing.T) {
	store := newFakeStore(model.Task{ID: "t1", Title: "First", Status: constants.StatusPending})
	m := newTestMachine(store)

	conv, effects := run(t, m, NewConversation(handle), Command(CommandTasks), SelectTask("t1"), Button(ButtonComplete))

	assert.Equal(t, StateList, conv.State)
	assert.Equal(t, []string{"t1"}, store.updates)
	assert.Equal(t, constants.StatusCompleted, store.tasks[0].Status)
	ack, ok := findEffect(effects, EffectNotice)
	require.True(t, ok)
	assert.Equal(t, textCompleted, ack.Text)
}

func TestViewFlow_CompleteFailureReturnsToList(t *testing.T) {
	store := newFakeStore(model.Task{ID: "t1", Title: "First"})
	m := newTestMachine(store)
	conv, _ := run(t, m, NewConversation(handle), Command(CommandTasks), SelectTask("t1"))

	store.fail = true
	conv, effects := run(t, m, conv, Button(ButtonComplete))

	assert.Equal(t, StateList, conv.State)
	assert.Len(t, store.updates, 1)
	ack, ok := findEffect(effects, EffectNotice)
	require.True(t, ok)
	assert.Equal(t, textCompleteFailed, ack.Text)
}

func TestViewFlow_RefreshReloads(t *testing.T) {
	store := newFakeStore()
	m := newTestMachine(store)
	conv, _ := run(t, m, NewConversation(handle), Command(CommandTasks))
	before := store.lists

	conv, effects := run(t, m, conv, Button(ButtonRefresh))

	assert.Equal(t, StateList, conv.State)
	assert.Equal(t, before+1, store.lists)
	ack, ok := findEffect(effects, EffectNotice)
	require.True(t, ok)
	assert.Equal(t, textRefreshed, ack.Text)
}

func TestResetStack_AddDiscardsViewScratch(t *testing.T) {
	store := newFakeStore(model.Task{ID: "t1", Title: "First"})
	m := newTestMachine(store)

	for _, events := range [][]Event{
		{Command(CommandTasks)},
		{Command(CommandTasks), SelectTask("t1")},
	} {
		conv, _ := run(t, m, NewConversation(handle), events...)
		conv, _ = run(t, m, conv, Command(CommandAdd))

		assert.Equal(t, StateTitle, conv.State)
		assert.Equal(t, Scratch{}, conv.Scratch)
	}
}

func TestResetStack_TasksDiscardsAddScratch(t *testing.T) {
	m := newTestMachine(newFakeStore())

	conv, _ := run(t, m, NewConversation(handle), Command(CommandAdd), Text("draft"), Text("desc"))
	conv, _ = run(t, m, conv, Command(CommandTasks))

	assert.Equal(t, StateList, conv.State)
	assert.Equal(t, Scratch{}, conv.Scratch)
}

func TestStartRegistersAndResets(t *testing.T) {
	store := newFakeStore()
	m := newTestMachine(store)
	conv, _ := run(t, m, NewConversation(handle), Command(CommandAdd), Text("draft"))

	conv, effects := run(t, m, conv, StartCommand(""))

	assert.True(t, conv.Done())
	assert.Equal(t, DefaultDisplayName(handle), store.users[handle])
	require.Len(t, effects, 1)
	assert.Equal(t, textWelcome, effects[0].Text)

	store.fail = true
	_, effects = run(t, m, NewConversation(handle+1), StartCommand("alice"))
	assert.Equal(t, textRegistrationFailed, effects[0].Text)
}

func TestHelpAndUnknownCommandKeepState(t *testing.T) {
	m := newTestMachine(newFakeStore())
	conv, _ := run(t, m, NewConversation(handle), Command(CommandAdd), Text("draft"))

	next, effects := run(t, m, conv, Command(CommandHelp))
	assert.Equal(t, conv.State, next.State)
	assert.Equal(t, conv.Scratch, next.Scratch)
	assert.Equal(t, textHelp, effects[0].Text)

	next, effects = run(t, m, conv, Command("nope"))
	assert.Equal(t, conv.State, next.State)
	assert.Equal(t, textUnknownCommand, effects[0].Text)
}

func TestIdleConversation(t *testing.T) {
	m := newTestMachine(newFakeStore())

	conv, effects := run(t, m, NewConversation(handle), Text("hello"))
	assert.True(t, conv.Done())
	assert.Equal(t, textIdle, effects[0].Text)

	conv, effects = run(t, m, NewConversation(handle), Button(ButtonConfirm))
	assert.True(t, conv.Done())
	ack, ok := findEffect(effects, EffectNotice)
	require.True(t, ok)
	assert.Equal(t, textDialogClosed, ack.Text)
}

func TestStepStampsUpdatedAt(t *testing.T) {
	m := newTestMachine(newFakeStore())
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	conv, _ := run(t, m, NewConversation(handle), Command(CommandAdd))
	assert.Equal(t, fixed, conv.UpdatedAt)
}

func TestButtonParsing(t *testing.T) {
	ev := Button("task_select:01JABC")
	assert.Equal(t, Event{Kind: EventButton, Value: ButtonSelectTask, Arg: "01JABC"}, ev)
	assert.Equal(t, Event{Kind: EventButton, Value: ButtonBack}, Button("back"))
	assert.True(t, strings.HasPrefix(ItemButtonID(ButtonSelectTask, "x"), ButtonSelectTask))
}
