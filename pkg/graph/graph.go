package graph

import (
	"github.com/aretw0/quest/pkg/domain"
)

// Graph is the immutable content of a world.
// Scenes are stored in a flat arena and addressed by id.
type Graph struct {
	initial   string
	narration Narration
	scenes    []domain.Scene
	index     map[string]int
}

func build(b *Builder) (*Graph, error) {
	if len(b.dupes) > 0 {
		return nil, &domain.ContentError{SceneID: b.dupes[0], Reason: "duplicate scene id"}
	}
	if b.initial == "" {
		return nil, &domain.ContentError{Reason: "initial scene is not set"}
	}
	if _, ok := b.scenes[b.initial]; !ok {
		return nil, &domain.ContentError{SceneID: b.initial, Reason: "initial scene is not defined"}
	}

	g := &Graph{
		initial:   b.initial,
		narration: b.narration.withDefaults(),
		scenes:    make([]domain.Scene, 0, len(b.order)),
		index:     make(map[string]int, len(b.order)),
	}

	for _, id := range b.order {
		if id == "" {
			return nil, &domain.ContentError{Reason: "scene with empty id"}
		}
		g.index[id] = len(g.scenes)
		g.scenes = append(g.scenes, freeze(b.scenes[id].scene))
	}

	for _, scene := range g.scenes {
		seen := make(map[string]bool, len(scene.Transitions))
		for _, t := range scene.Transitions {
			if t.ActionID == "" {
				return nil, &domain.ContentError{SceneID: scene.ID, Reason: "choice with empty action id"}
			}
			if seen[t.ActionID] {
				return nil, &domain.ContentError{SceneID: scene.ID, ActionID: t.ActionID, Reason: "duplicate action id"}
			}
			seen[t.ActionID] = true
			if _, ok := g.index[t.Target]; !ok {
				return nil, &domain.ContentError{SceneID: scene.ID, ActionID: t.ActionID, Target: t.Target}
			}
		}
	}

	return g, nil
}

// freeze deep-copies the scene's choices so no caller shares slices with the arena.
func freeze(s domain.Scene) domain.Scene {
	transitions := make([]domain.Transition, len(s.Transitions))
	for i, t := range s.Transitions {
		t.Effects = append([]domain.Effect(nil), t.Effects...)
		transitions[i] = t
	}
	s.Transitions = transitions
	return s
}

// Lookup returns a copy of the scene with the given id.
func (g *Graph) Lookup(id string) (domain.Scene, bool) {
	i, ok := g.index[id]
	if !ok {
		return domain.Scene{}, false
	}
	return freeze(g.scenes[i]), true
}

// Initial returns the id of the scene new sessions start at.
func (g *Graph) Initial() string {
	return g.initial
}

// Narration returns the fixed strings of the world.
func (g *Graph) Narration() Narration {
	return g.narration
}

// Len returns the number of scenes.
func (g *Graph) Len() int {
	return len(g.scenes)
}

// Scenes returns a copy of every scene in declaration order.
func (g *Graph) Scenes() []domain.Scene {
	out := make([]domain.Scene, len(g.scenes))
	for i, s := range g.scenes {
		out[i] = freeze(s)
	}
	return out
}

// Unreachable returns the ids of scenes no path from the initial scene leads to,
// in declaration order.
func (g *Graph) Unreachable() []string {
	visited := make(map[string]bool, len(g.scenes))
	queue := []string{g.initial}
	visited[g.initial] = true

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		scene, _ := g.Lookup(id)
		for _, t := range scene.Transitions {
			if !visited[t.Target] {
				visited[t.Target] = true
				queue = append(queue, t.Target)
			}
		}
	}

	var out []string
	for _, s := range g.scenes {
		if !visited[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}
