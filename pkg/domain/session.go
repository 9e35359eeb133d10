package domain

import (
	"time"
)

// SessionStatus is derived from where the session currently stands in the graph.
type SessionStatus string

const (
	StatusActive SessionStatus = "active" // Current scene offers choices
	StatusEnded  SessionStatus = "ended"  // Current scene is a sink
	StatusAdrift SessionStatus = "adrift" // Current scene id does not resolve
)

// Redacted replaces a value a store chose not to keep, such as a masked player name.
// It is never used as a name.
const Redacted = "***"

// HistoryEntry records one committed transition.
type HistoryEntry struct {
	From      string    `json:"from"`
	Action    string    `json:"action"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the progress record of one interaction.
// The engine never mutates a Session it was given; it returns a modified clone.
type Session struct {
	// ID is an opaque token regenerated on every start and reset.
	ID string `json:"id"`

	// SubjectName is the optional display name of the player.
	SubjectName string `json:"subject_name,omitempty"`

	CurrentSceneID string        `json:"current_scene_id"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at"`

	// History, Journal and Inventory are append-only for the life of the session.
	History   []HistoryEntry `json:"history"`
	Journal   []string       `json:"journal"`
	Inventory []string       `json:"inventory"`

	// Entities maps a role to the name it was given. It only grows.
	Entities map[string]string `json:"entities"`
}

// NewSession creates a clean session positioned at the given scene.
func NewSession(id, subjectName, sceneID string, startedAt time.Time) *Session {
	return &Session{
		ID:             id,
		SubjectName:    subjectName,
		CurrentSceneID: sceneID,
		Status:         StatusActive,
		StartedAt:      startedAt,
		History:        []HistoryEntry{},
		Journal:        []string{},
		Inventory:      []string{},
		Entities:       make(map[string]string),
	}
}

// Clone returns a deep copy, safe to mutate without affecting the receiver.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append(make([]HistoryEntry, 0, len(s.History)+1), s.History...)
	next.Journal = append(make([]string, 0, len(s.Journal)+1), s.Journal...)
	next.Inventory = append(make([]string, 0, len(s.Inventory)+1), s.Inventory...)
	next.Entities = make(map[string]string, len(s.Entities))
	for k, v := range s.Entities {
		next.Entities[k] = v
	}
	return &next
}

// RecentHistory returns up to n of the latest history entries, oldest first.
func (s *Session) RecentHistory(n int) []HistoryEntry {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
