package chat

// State is the controller's position in the conversation.
type State int

const (
	StateAwaitingSession State = iota
	StateIdle
	StateSending
	StateInterrupted
	StateResuming
)

func (s State) String() string {
	switch s {
	case StateAwaitingSession:
		return "awaiting-session"
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateInterrupted:
		return "interrupted"
	case StateResuming:
		return "resuming"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Loading reports whether a backend request is in flight.
func (s State) Loading() bool {
	return s == StateSending || s == StateResuming
}

// Input placeholders.
const (
	PlaceholderInitializing = "Initializing session..."
	PlaceholderAwaitingForm = "Please complete the form above before sending a message"
	PlaceholderReady        = "Type your message..."
)

func placeholderFor(s State) string {
	switch s {
	case StateAwaitingSession:
		return PlaceholderInitializing
	case StateInterrupted:
		return PlaceholderAwaitingForm
	default:
		return PlaceholderReady
	}
}
