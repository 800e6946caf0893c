package constants

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ActiveStatuses are the statuses a task can still be reminded about.
var ActiveStatuses = []TaskStatus{StatusPending, StatusInProgress}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "⏳ Pending"
	case StatusInProgress:
		return "🔄 In progress"
	case StatusCompleted:
		return "✅ Completed"
	}
	return string(s)
}
