package wizard

import "strings"

type EventKind int

const (
	EventCommand EventKind = iota + 1
	EventText
	EventButton
)

// Button ids understood by the machine. Item buttons carry the item id after
// ItemSeparator, e.g. "task_select:0190...".
const (
	ButtonCancel          = "cancel"
	ButtonBack            = "back"
	ButtonRefresh         = "refresh"
	ButtonComplete        = "complete"
	ButtonSkipDescription = "skip_desc"
	ButtonSkipDueDate     = "skip_date"
	ButtonConfirm         = "confirm"
	ButtonSelectTask      = "task_select"

	ItemSeparator = ":"
)

const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandTasks = "tasks"
	CommandAdd   = "add"
)

// Event is one inbound user action.
type Event struct {
	Kind EventKind
	// Value is the command name, the typed text or the button id.
	Value string
	// Arg is the command argument or the selected item id.
	Arg string
}

func Command(name string) Event {
	return Event{Kind: EventCommand, Value: strings.ToLower(name)}
}

// StartCommand carries the display name used to register the user.
func StartCommand(displayName string) Event {
	return Event{Kind: EventCommand, Value: CommandStart, Arg: displayName}
}

func Text(value string) Event {
	return Event{Kind: EventText, Value: value}
}

// Button parses raw callback data into a button event.
func Button(data string) Event {
	id, item, _ := strings.Cut(data, ItemSeparator)
	return Event{Kind: EventButton, Value: id, Arg: item}
}

// SelectTask is the event produced by tapping a task in the list.
func SelectTask(taskID string) Event {
	return Event{Kind: EventButton, Value: ButtonSelectTask, Arg: taskID}
}

// ItemButtonID builds the callback data for an item button.
func ItemButtonID(id, item string) string {
	return id + ItemSeparator + item
}
