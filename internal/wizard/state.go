package wizard

// Flow names one of the two independent wizards.
type Flow string

const (
	FlowTasks   Flow = "tasks"
	FlowAddTask Flow = "add_task"
)

// Step is a position inside a flow.
type Step string

const (
	StepList        Step = "list"
	StepDetail      Step = "detail"
	StepTitle       Step = "title"
	StepDescription Step = "description"
	StepDueDate     Step = "due_date"
	StepConfirm     Step = "confirm"
)

// State is the current position of a conversation. The zero State means no
// wizard is running.
type State struct {
	Flow Flow `json:"flow"`
	Step Step `json:"step"`
}

var (
	StateNone        = State{}
	StateList        = State{Flow: FlowTasks, Step: StepList}
	StateDetail      = State{Flow: FlowTasks, Step: StepDetail}
	StateTitle       = State{Flow: FlowAddTask, Step: StepTitle}
	StateDescription = State{Flow: FlowAddTask, Step: StepDescription}
	StateDueDate     = State{Flow: FlowAddTask, Step: StepDueDate}
	StateConfirm     = State{Flow: FlowAddTask, Step: StepConfirm}
)

func (s State) IsZero() bool {
	return s == StateNone
}

// Valid reports whether s is one of the states the machine knows.
func (s State) Valid() bool {
	switch s {
	case StateNone, StateList, StateDetail, StateTitle, StateDescription, StateDueDate, StateConfirm:
		return true
	}
	return false
}

func (s State) String() string {
	if s.IsZero() {
		return "none"
	}
	return string(s.Flow) + "." + string(s.Step)
}
