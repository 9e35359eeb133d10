package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session key cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrContent is the sentinel matched by every ContentError.
var ErrContent = errors.New("invalid content graph")

// ErrInvalidTransition is the sentinel matched by every InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// ContentError reports a defect in the content graph detected while building it.
// It is fatal at startup and never surfaced per request.
type ContentError struct {
	SceneID  string
	ActionID string
	Target   string
	Reason   string
}

func (e *ContentError) Error() string {
	switch {
	case e.Target != "":
		return fmt.Sprintf("scene '%s' choice '%s' targets undefined scene '%s'", e.SceneID, e.ActionID, e.Target)
	case e.ActionID != "":
		return fmt.Sprintf("scene '%s' choice '%s': %s", e.SceneID, e.ActionID, e.Reason)
	case e.SceneID != "":
		return fmt.Sprintf("scene '%s': %s", e.SceneID, e.Reason)
	default:
		return e.Reason
	}
}

func (e *ContentError) Is(target error) bool {
	return target == ErrContent
}

// InvalidTransitionError is returned when the engine is asked to take a choice
// the current scene does not offer. It signals a caller bug, not bad user input.
type InvalidTransitionError struct {
	SceneID  string
	ActionID string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("scene '%s' has no choice '%s'", e.SceneID, e.ActionID)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
