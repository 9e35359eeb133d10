package domain

// SessionDiff represents the changes between two session records.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentSceneID *string        `json:"current_scene_id,omitempty"`
	Status         *SessionStatus `json:"status,omitempty"`

	// Appended collections. Session collections are append-only, so only the tail is sent.
	History   []HistoryEntry `json:"history,omitempty"`
	Journal   []string       `json:"journal,omitempty"`
	Inventory []string       `json:"inventory,omitempty"`

	// Entities contains roles that were named since the old record.
	Entities map[string]string `json:"entities,omitempty"`

	// Replaced is set when the new record belongs to a different session (start or reset).
	// Clients should drop their local copy and rebuild it from this diff.
	Replaced bool `json:"replaced,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil or has a different ID, it returns a diff representing the entire newSession.
// It returns nil when nothing changed.
func Diff(oldSession, newSession *Session) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: newSession.ID}

	if oldSession == nil || oldSession.ID != newSession.ID {
		diff.Replaced = oldSession != nil
		oldSession = &Session{}
	}

	if oldSession.CurrentSceneID != newSession.CurrentSceneID {
		diff.CurrentSceneID = &newSession.CurrentSceneID
	}
	if oldSession.Status != newSession.Status {
		diff.Status = &newSession.Status
	}

	diff.History = appended(oldSession.History, newSession.History)
	diff.Journal = appended(oldSession.Journal, newSession.Journal)
	diff.Inventory = appended(oldSession.Inventory, newSession.Inventory)
	diff.Entities = diffEntities(oldSession.Entities, newSession.Entities)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// appended assumes standard append-only behavior.
func appended[T any](old, new []T) []T {
	if len(new) <= len(old) {
		return nil
	}
	return new[len(old):]
}

func diffEntities(old, new map[string]string) map[string]string {
	delta := make(map[string]string)
	for role, name := range new {
		if prev, ok := old[role]; !ok || prev != name {
			delta[role] = name
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.CurrentSceneID == nil &&
		d.Status == nil &&
		!d.Replaced &&
		len(d.History) == 0 &&
		len(d.Journal) == 0 &&
		len(d.Inventory) == 0 &&
		len(d.Entities) == 0
}
