package graph

import "strings"

const (
	// DefaultPrompt closes every rendered scene.
	DefaultPrompt = "What do you do?"
	// DefaultFallback is rendered when the current scene id does not resolve.
	DefaultFallback = "You drift in a featureless void."
	// DefaultRecovery precedes the initial scene when a session is moved back there
	// because its current scene no longer exists.
	DefaultRecovery = "The story lost its place for a moment."
	// DefaultClarification is returned when the resolver finds no choice.
	DefaultClarification = "I could not quite follow that choice. Try one of the options I mentioned."
	// DefaultSummaryWindow is the number of recent choices listed by a summary.
	DefaultSummaryWindow = 6
	// DefaultSubjectName replaces {name} when the player gave none.
	DefaultSubjectName = "traveler"
)

// Narration holds the fixed strings a world speaks with.
type Narration struct {
	Prompt        string `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
	Greeting      string `json:"greeting,omitempty" yaml:"greeting" mapstructure:"greeting"`
	ResetGreeting string `json:"reset_greeting,omitempty" yaml:"reset_greeting" mapstructure:"reset_greeting"`
	Clarification string `json:"clarification" yaml:"clarification" mapstructure:"clarification"`
	Fallback      string `json:"fallback" yaml:"fallback" mapstructure:"fallback"`
	Recovery      string `json:"recovery" yaml:"recovery" mapstructure:"recovery"`
	SummaryWindow int    `json:"summary_window" yaml:"summary_window" mapstructure:"summary_window"`
}

// withDefaults fills empty fields.
func (n Narration) withDefaults() Narration {
	if n.Prompt == "" {
		n.Prompt = DefaultPrompt
	}
	if n.Fallback == "" {
		n.Fallback = DefaultFallback
	}
	if n.Recovery == "" {
		n.Recovery = DefaultRecovery
	}
	if n.Clarification == "" {
		n.Clarification = DefaultClarification
	}
	if n.SummaryWindow <= 0 {
		n.SummaryWindow = DefaultSummaryWindow
	}
	return n
}

// Greet returns the greeting for the given player name, or "" when the world has none.
func (n Narration) Greet(subjectName string) string {
	return substituteName(n.Greeting, subjectName)
}

// GreetAgain returns the reset greeting for the given player name.
func (n Narration) GreetAgain(subjectName string) string {
	return substituteName(n.ResetGreeting, subjectName)
}

func substituteName(text, subjectName string) string {
	if text == "" {
		return ""
	}
	if strings.TrimSpace(subjectName) == "" {
		subjectName = DefaultSubjectName
	}
	return strings.ReplaceAll(text, "{name}", subjectName)
}
