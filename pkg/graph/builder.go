package graph

import (
	"github.com/aretw0/quest/pkg/domain"
)

// Builder manages the graph construction.
// It preserves the order in which scenes and choices are declared.
type Builder struct {
	initial   string
	narration Narration
	order     []string
	scenes    map[string]*SceneBuilder
	dupes     []string
}

// New creates a new graph builder whose sessions start at the given scene.
func New(initial string) *Builder {
	return &Builder{
		initial: initial,
		scenes:  make(map[string]*SceneBuilder),
	}
}

// Initial overrides the scene new sessions start at.
func (b *Builder) Initial(sceneID string) *Builder {
	b.initial = sceneID
	return b
}

// Narration sets the fixed strings of the world. Empty fields take the package defaults.
func (b *Builder) Narration(n Narration) *Builder {
	b.narration = n
	return b
}

// Scene creates a new scene in the graph.
// If the scene already exists, it returns the existing builder.
func (b *Builder) Scene(id string) *SceneBuilder {
	if sb, ok := b.scenes[id]; ok {
		return sb
	}
	sb := &SceneBuilder{scene: domain.Scene{ID: id}}
	b.scenes[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Add appends a fully formed scene, keeping its choices in order.
// Adding the same id twice is reported by Build.
func (b *Builder) Add(scene domain.Scene) *Builder {
	if _, ok := b.scenes[scene.ID]; ok {
		b.dupes = append(b.dupes, scene.ID)
		return b
	}
	b.scenes[scene.ID] = &SceneBuilder{scene: scene}
	b.order = append(b.order, scene.ID)
	return b
}

// Build validates the declared content and freezes it into a Graph.
// Every defect is reported as a *domain.ContentError.
func (b *Builder) Build() (*Graph, error) {
	return build(b)
}

// SceneBuilder provides a fluent API for configuring a scene.
type SceneBuilder struct {
	scene domain.Scene
}

// Title sets a short label used by graph renderers.
func (s *SceneBuilder) Title(title string) *SceneBuilder {
	s.scene.Title = title
	return s
}

// Describe sets the narration shown when the scene is rendered.
func (s *SceneBuilder) Describe(text string) *SceneBuilder {
	s.scene.Description = text
	return s
}

// Choice appends a choice leading to target.
func (s *SceneBuilder) Choice(actionID, description, target string, effects ...domain.Effect) *SceneBuilder {
	s.scene.Transitions = append(s.scene.Transitions, domain.Transition{
		ActionID:    actionID,
		Description: description,
		Target:      target,
		Effects:     effects,
	})
	return s
}

// Terminal removes every choice, turning the scene into an ending.
func (s *SceneBuilder) Terminal() *SceneBuilder {
	s.scene.Transitions = nil
	return s
}
