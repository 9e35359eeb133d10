// Package yaml loads a whole world (narration plus scenes) from a single YAML document.
package yaml

import (
	"bytes"
	"context"
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

// Document is the on-disk layout of a world file.
type Document struct {
	Initial   string          `yaml:"initial"`
	Narration graph.Narration `yaml:"narration"`
	Scenes    []SceneDoc      `yaml:"scenes"`
}

// SceneDoc is a scene as written in a world file.
type SceneDoc struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Choices     []ChoiceDoc `yaml:"choices"`
}

// ChoiceDoc is a choice as written in a world file.
type ChoiceDoc struct {
	ID          string           `yaml:"id"`
	Description string           `yaml:"description"`
	To          string           `yaml:"to"`
	Effects     []map[string]any `yaml:"effects"`
}

// Loader implements ports.GraphLoader over a YAML world file.
type Loader struct {
	path string
	data []byte
}

// New creates a loader that reads the file at path on every Load.
func New(path string) *Loader {
	return &Loader{path: path}
}

// NewFromBytes creates a loader over an in-memory document.
func NewFromBytes(data []byte) *Loader {
	return &Loader{data: data}
}

// Load reads, decodes and validates the world.
func (l *Loader) Load(ctx context.Context) (*graph.Graph, error) {
	data := l.data
	if data == nil {
		var err error
		data, err = os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read world file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes a world document and builds its graph.
// Unknown fields are rejected so typos surface at startup.
func Parse(data []byte) (*graph.Graph, error) {
	var doc Document
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode world: %w", err)
	}
	return doc.Build()
}

// Build converts the document into a validated graph.
func (d Document) Build() (*graph.Graph, error) {
	initial := d.Initial
	if initial == "" && len(d.Scenes) > 0 {
		initial = d.Scenes[0].ID
	}

	b := graph.New(initial).Narration(d.Narration)
	for _, sd := range d.Scenes {
		scene := domain.Scene{
			ID:          sd.ID,
			Title:       sd.Title,
			Description: sd.Description,
		}
		for _, cd := range sd.Choices {
			effects, err := graph.DecodeEffects(cd.Effects)
			if err != nil {
				return nil, &domain.ContentError{SceneID: sd.ID, ActionID: cd.ID, Reason: err.Error()}
			}
			scene.Transitions = append(scene.Transitions, domain.Transition{
				ActionID:    cd.ID,
				Description: cd.Description,
				Target:      cd.To,
				Effects:     effects,
			})
		}
		b.Add(scene)
	}
	return b.Build()
}
