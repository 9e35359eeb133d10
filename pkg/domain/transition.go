package domain

// Transition defines a labeled move from one scene to another.
type Transition struct {
	// ActionID is the short token a player can say to pick this choice (e.g. "follow_tracks").
	// It is unique within its source scene.
	ActionID string `json:"action_id" yaml:"id"`

	// Description is the human-readable label of the choice.
	// The resolver also mines it for keywords.
	Description string `json:"description" yaml:"description"`

	// Target is the scene the session moves to.
	Target string `json:"target" yaml:"to"`

	Effects []Effect `json:"effects,omitempty" yaml:"-"`
}
