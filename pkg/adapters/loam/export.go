package loam

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

type exportScene struct {
	ID        string           `yaml:"id"`
	Title     string           `yaml:"title,omitempty"`
	Initial   bool             `yaml:"initial,omitempty"`
	Narration *graph.Narration `yaml:"narration,omitempty"`
	Choices   []exportChoice   `yaml:"choices,omitempty"`
}

type exportChoice struct {
	ID          string           `yaml:"id"`
	Description string           `yaml:"description"`
	To          string           `yaml:"to"`
	Effects     []map[string]any `yaml:"effects,omitempty"`
}

// Export writes g as one Markdown document per scene into dir, in the layout Load reads.
// The initial scene carries the narration. Existing documents with the same names are replaced.
func Export(dir string, g *graph.Graph) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	narration := g.Narration()
	for _, scene := range g.Scenes() {
		doc := exportScene{ID: scene.ID, Title: scene.Title}
		if scene.ID == g.Initial() {
			doc.Initial = true
			doc.Narration = &narration
		}
		for _, t := range scene.Transitions {
			doc.Choices = append(doc.Choices, exportChoice{
				ID:          t.ActionID,
				Description: t.Description,
				To:          t.Target,
				Effects:     encodeEffects(t.Effects),
			})
		}

		var buf bytes.Buffer
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode scene '%s': %w", scene.ID, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode scene '%s': %w", scene.ID, err)
		}
		buf.WriteString("---\n")
		buf.WriteString(scene.Description)
		buf.WriteString("\n")

		path := filepath.Join(dir, scene.ID+".md")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func encodeEffects(effects []domain.Effect) []map[string]any {
	var out []map[string]any
	for _, e := range effects {
		switch e.Kind {
		case domain.EffectNameEntity:
			out = append(out, map[string]any{string(e.Kind): map[string]string{"role": e.Role, "name": e.Value}})
		default:
			out = append(out, map[string]any{string(e.Kind): e.Value})
		}
	}
	return out
}
