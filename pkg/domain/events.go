package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventSessionReset EventType = "session_reset"
	EventTransition   EventType = "transition"
	EventNoMatch      EventType = "no_match"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// SessionEvent represents a session being created or replaced.
type SessionEvent struct {
	EventBase
	SceneID string `json:"scene_id"`
}

// TransitionEvent represents a committed transition.
type TransitionEvent struct {
	EventBase
	From    string   `json:"from"`
	Action  string   `json:"action"`
	To      string   `json:"to"`
	Tier    Tier     `json:"tier,omitempty"`
	Effects []Effect `json:"effects,omitempty"`
}

// NoMatchEvent represents input the resolver could not map to a choice.
type NoMatchEvent struct {
	EventBase
	SceneID string `json:"scene_id"`
	Input   string `json:"input"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the calling goroutine and must not block.
type LifecycleHooks struct {
	OnSessionStart func(context.Context, *SessionEvent)
	OnSessionReset func(context.Context, *SessionEvent)
	OnTransition   func(context.Context, *TransitionEvent)
	OnNoMatch      func(context.Context, *NoMatchEvent)
}
