package domain

// Scene represents a node in the content graph.
type Scene struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`

	// Transitions are the choices offered by this scene.
	// Declaration order is significant: it drives rendering and resolver tie-breaks.
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// Transition returns the choice with the given action id.
func (s Scene) Transition(actionID string) (Transition, bool) {
	for _, t := range s.Transitions {
		if t.ActionID == actionID {
			return t, true
		}
	}
	return Transition{}, false
}

// IsTerminal reports whether the scene offers no choices.
func (s Scene) IsTerminal() bool {
	return len(s.Transitions) == 0
}
