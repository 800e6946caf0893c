package wizard

type EffectKind int

const (
	// EffectWindow renders the window of the conversation's current state.
	// A front end may edit the previous window in place.
	EffectWindow EffectKind = iota + 1
	// EffectMessage is a standalone message.
	EffectMessage
	// EffectNotice is a short acknowledgement of a button press.
	EffectNotice
	// EffectClose removes the current window.
	EffectClose
)

type KeyboardButton struct {
	ID   string
	Text string
}

type Effect struct {
	Kind     EffectKind
	Text     string
	Keyboard [][]KeyboardButton
}

func message(text string) Effect {
	return Effect{Kind: EffectMessage, Text: text}
}

func notice(text string) Effect {
	return Effect{Kind: EffectNotice, Text: text}
}

func closeWindow() Effect {
	return Effect{Kind: EffectClose}
}
