package loam

import (
	"github.com/aretw0/quest/pkg/graph"
)

// SceneMetadata represents the frontmatter of a scene document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type SceneMetadata struct {
	ID      string           `json:"id" mapstructure:"id"`
	Title   string           `json:"title" mapstructure:"title"`
	Choices []ChoiceMetadata `json:"choices" mapstructure:"choices"`

	// Initial marks the scene new sessions start at.
	Initial bool `json:"initial" mapstructure:"initial"`

	// Narration sets the fixed strings of the world. At most one document may carry it.
	Narration *graph.Narration `json:"narration,omitempty" mapstructure:"narration"`
}

// ChoiceMetadata is a choice declared in frontmatter.
type ChoiceMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Description string `json:"description" mapstructure:"description"`
	To          string `json:"to" mapstructure:"to"`
	// Effects is a list of single-key maps, e.g. [{add_journal: "..."}].
	Effects []map[string]any `json:"effects" mapstructure:"effects"`
}
