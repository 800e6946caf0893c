package wizard

import "time"

// Scratch holds the values collected while a wizard runs.
type Scratch struct {
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	SelectedTaskID string     `json:"selected_task_id,omitempty"`
}

// Conversation is the server-held dialog of one user. There is at most one per
// handle; starting a wizard replaces it and finishing one ends it.
type Conversation struct {
	Handle    int64     `json:"handle"`
	State     State     `json:"state"`
	Scratch   Scratch   `json:"scratch"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation returns an idle conversation for handle.
func NewConversation(handle int64) Conversation {
	return Conversation{Handle: handle}
}

// Done reports whether the conversation has no running wizard and should be
// removed from the store.
func (c Conversation) Done() bool {
	return c.State.IsZero()
}

func (c Conversation) start(state State) Conversation {
	return Conversation{Handle: c.Handle, State: state}
}

func (c Conversation) end() Conversation {
	return Conversation{Handle: c.Handle}
}

func (c Conversation) moveTo(state State) Conversation {
	c.State = state
	return c
}
