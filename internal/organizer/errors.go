package organizer

import "errors"

// Precondition errors. These are returned from tool handlers when the model
// violates the tool contract; the agent loop treats them as fatal for the run.
var (
	ErrNotATarget             = errors.New("not a target note")
	ErrNotACandidateDirectory = errors.New("not a candidate directory")
	ErrAlreadyProcessed       = errors.New("target already processed")
	ErrAlreadyFinalized       = errors.New("rename batch already finalized")
)

// ErrPendingOperation guards against surfacing an unfinished operation. Hitting
// it is a bug in the engine, not a model mistake.
var ErrPendingOperation = errors.New("operation is still pending")
