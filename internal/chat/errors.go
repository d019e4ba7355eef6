package chat

import (
	"errors"

	"github.com/ashureev/agentchat/internal/agentapi"
	"github.com/ashureev/agentchat/internal/widget"
)

// Guard errors. No request is sent and no state changes when one of these is
// returned.
var (
	ErrSessionNotReady = errors.New("session is not ready")
	ErrBusy            = errors.New("a request is already in flight")
	ErrAwaitingField   = errors.New("complete the form before sending a message")
	ErrNoInterrupt     = errors.New("no field is awaiting an answer")
	ErrFieldMismatch   = errors.New("answer does not match the requested field")
)

// ErrDuplicateSession is returned by Registry.Register for an id that is
// already registered.
var ErrDuplicateSession = errors.New("conversation id already registered")

// User-facing failure notices.
const (
	NoticeSendFailed   = "Failed to send message. Please try again."
	NoticeSubmitFailed = "Failed to submit field. Please try again."
)

// IsGuardError reports whether err was raised by a state guard rather than a
// backend call.
func IsGuardError(err error) bool {
	return errors.Is(err, ErrSessionNotReady) ||
		errors.Is(err, ErrBusy) ||
		errors.Is(err, ErrAwaitingField) ||
		errors.Is(err, ErrNoInterrupt) ||
		errors.Is(err, ErrFieldMismatch)
}

// Describe returns the text shown to the user for a submission error.
// Guard and validation errors keep their own text; backend failures show the
// controller's notice when one is set.
func Describe(err error, notice string) string {
	if IsGuardError(err) || widget.IsValidation(err) {
		return err.Error()
	}
	if notice != "" {
		return notice
	}
	var statusErr *agentapi.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return "agent request failed"
}
