package telegram

// Event is one inbound update, already stripped of transport details.
type Event interface {
	Actor() int64
	kind() string
}

// StartEvent is the /start or /menu command.
type StartEvent struct {
	ActorID     int64
	DisplayName string
}

// TextEvent is a free-text message.
type TextEvent struct {
	ActorID     int64
	DisplayName string
	Text        string
}

// ActionEvent is an inline button press. MessageID is the message the button
// belongs to; CallbackID must be acknowledged exactly once.
type ActionEvent struct {
	ActorID    int64
	Token      string
	MessageID  int
	CallbackID string
}

func (e StartEvent) Actor() int64  { return e.ActorID }
func (e TextEvent) Actor() int64   { return e.ActorID }
func (e ActionEvent) Actor() int64 { return e.ActorID }

func (StartEvent) kind() string  { return "start" }
func (TextEvent) kind() string   { return "text" }
func (ActionEvent) kind() string { return "action" }
