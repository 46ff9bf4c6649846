package chat

import "errors"

// Error kinds surfaced by the orchestrator. The model call is the only step
// whose failure aborts a turn; media and persistence degrade instead.
var (
	// ErrConfiguration means a provider collaborator is not configured
	// (e.g. missing API key); no partial work is attempted.
	ErrConfiguration = errors.New("provider not configured")

	// ErrValidation means the input was rejected before any external call.
	ErrValidation = errors.New("invalid input")

	// ErrProvider wraps a failed model call; the turn is aborted and prior
	// conversation state is left untouched.
	ErrProvider = errors.New("provider call failed")
)
