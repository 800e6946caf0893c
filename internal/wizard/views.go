package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	model "todo-list.com/todo-list/internal/models"
	"todo-list.com/todo-list/internal/timefmt"
)

const (
	textWelcome = "👋 Hi! I am a bot for managing your to-do list.\n\n" +
		"📋 Available commands:\n" +
		"/tasks - show your tasks\n" +
		"/add - add a new task\n" +
		"/help - command reference"
	textRegistrationFailed = "❌ Registration failed. Please try again later."
	textHelp               = "📖 Commands:\n\n" +
		"/start - start working with the bot\n" +
		"/tasks - show your tasks\n" +
		"/add - add a new task\n" +
		"/help - show this help\n\n" +
		"💡 When adding a task you can set a title, a description and a due date."
	textUnknownCommand = "Unknown command. /help lists what I can do."
	textIdle           = "Use /tasks to see your tasks or /add to create one."
	textDialogClosed   = "This dialog is closed"
	textCancelled      = "Cancelled"
	textRefreshed      = "🔄 List refreshed"
	textCompleted      = "✅ Task completed!"
	textCompleteFailed = "❌ Failed to update the task"
	textEmptyTitle     = "❌ The title must not be empty. Enter the task title:"
	textInvalidDate    = "❌ Invalid date format. Use DD.MM.YYYY or DD.MM.YYYY HH:MM"
	textCreated        = "✅ Task created!"
	textCreateFailed   = "❌ Failed to create the task"
	textNoTask         = "Task not found."
)

var (
	cancelButton = KeyboardButton{ID: ButtonCancel, Text: "❌ Cancel"}
	closeButton  = KeyboardButton{ID: ButtonCancel, Text: "❌ Close"}
	backButton   = KeyboardButton{ID: ButtonBack, Text: "◀️ Back"}
)

// DefaultDisplayName is used when the user has no platform username.
func DefaultDisplayName(handle int64) string {
	return "user_" + strconv.FormatInt(handle, 10)
}

func listWindow(data ListData, loc *time.Location) Effect {
	var b strings.Builder
	b.WriteString("📋 Your tasks:\n\n")
	if data.HasTasks {
		fmt.Fprintf(&b, "Total tasks: %d", data.Count)
	} else {
		b.WriteString("You have no tasks yet.\nUse /add to create one.")
	}

	keyboard := make([][]KeyboardButton, 0, len(data.Tasks)+1)
	for _, task := range data.Tasks {
		created := task.CreatedAt
		keyboard = append(keyboard, []KeyboardButton{{
			ID:   ItemButtonID(ButtonSelectTask, task.ID),
			Text: fmt.Sprintf("📌 %s | 🕐 %s", task.Title, timefmt.Format(&created, loc)),
		}})
	}
	keyboard = append(keyboard, []KeyboardButton{
		{ID: ButtonRefresh, Text: "🔄 Refresh"},
		closeButton,
	})

	return Effect{Kind: EffectWindow, Text: b.String(), Keyboard: keyboard}
}

func detailWindow(task *model.Task, loc *time.Location) Effect {
	keyboard := [][]KeyboardButton{
		{{ID: ButtonComplete, Text: "✅ Complete"}, backButton},
	}
	if task == nil {
		return Effect{Kind: EffectWindow, Text: textNoTask, Keyboard: [][]KeyboardButton{{backButton}}}
	}

	categories := timefmt.Placeholder
	if names := task.CategoryNames(); len(names) > 0 {
		categories = strings.Join(names, ", ")
	}
	created := task.CreatedAt

	text := fmt.Sprintf(
		"📌 %s\n\n📝 Description: %s\n📊 Status: %s\n🏷 Categories: %s\n📅 Created: %s\n⏰ Due: %s",
		task.Title,
		timefmt.OrPlaceholder(task.Description),
		task.Status.Label(),
		categories,
		timefmt.Format(&created, loc),
		timefmt.Format(task.DueDate, loc),
	)
	return Effect{Kind: EffectWindow, Text: text, Keyboard: keyboard}
}

func titleWindow() Effect {
	return Effect{
		Kind:     EffectWindow,
		Text:     "📝 New task\n\nEnter the task title:",
		Keyboard: [][]KeyboardButton{{cancelButton}},
	}
}

func descriptionWindow() Effect {
	return Effect{
		Kind: EffectWindow,
		Text: "📝 Task description\n\nEnter a description (or press Skip):",
		Keyboard: [][]KeyboardButton{
			{{ID: ButtonSkipDescription, Text: "⏭ Skip"}, backButton},
			{cancelButton},
		},
	}
}

func dueDateWindow() Effect {
	return Effect{
		Kind: EffectWindow,
		Text: "📅 Due date\n\nEnter a date (DD.MM.YYYY or DD.MM.YYYY HH:MM):",
		Keyboard: [][]KeyboardButton{
			{{ID: ButtonSkipDueDate, Text: "⏭ Skip"}, backButton},
			{cancelButton},
		},
	}
}

func confirmWindow(data ConfirmData) Effect {
	text := fmt.Sprintf(
		"✅ Confirmation\n\n📌 Title: %s\n📝 Description: %s\n📅 Due: %s\n\nCreate the task?",
		data.Title, data.Description, data.DueDate,
	)
	return Effect{
		Kind: EffectWindow,
		Text: text,
		Keyboard: [][]KeyboardButton{
			{{ID: ButtonConfirm, Text: "✅ Create"}, backButton},
			{cancelButton},
		},
	}
}
