package wizard

import "errors"

var (
	// ErrStepIncomplete is returned when a guard rejects a forward event.
	// The wizard state is left untouched.
	ErrStepIncomplete = errors.New("step incomplete")
	// ErrInvalidTransition is returned for events the current step does not accept.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrDraftNotFound is returned by start-edit when the id is not committed.
	ErrDraftNotFound = errors.New("draft not found")
)
