package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

// Loader adapts a Loam repository of scene documents to the GraphLoader interface.
// Each document is one scene: frontmatter holds the id, title and choices, the body holds the description.
type Loader struct {
	Repo    *loam.TypedRepository[SceneMetadata]
	initial string
}

// Option configures a Loader.
type Option func(*Loader)

// WithInitial sets the starting scene when no document is marked `initial: true`.
func WithInitial(sceneID string) Option {
	return func(l *Loader) {
		l.initial = sceneID
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[SceneMetadata], opts ...Option) *Loader {
	l := &Loader{Repo: repo}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only Loam repository at path and wraps it in a Loader.
func Open(path string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict keeps numeric frontmatter consistent across formats; the engine never writes content.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[SceneMetadata](repo), opts...), nil
}

// Load lists every document and builds the graph. Scenes are declared in id order.
func (l *Loader) Load(ctx context.Context) (*graph.Graph, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	type entry struct {
		id   string
		path string
		meta SceneMetadata
		body string
	}

	seen := make(map[string]string)
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		entries = append(entries, entry{id: id, path: doc.ID, meta: doc.Data, body: doc.Content})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	initial := l.initial
	var narration graph.Narration
	narrationFrom := ""

	b := graph.New("")
	for _, e := range entries {
		if e.meta.Initial {
			initial = e.id
		}
		if e.meta.Narration != nil {
			if narrationFrom != "" {
				return nil, &domain.ContentError{SceneID: e.id, Reason: "narration already declared in " + narrationFrom}
			}
			narration = *e.meta.Narration
			narrationFrom = e.path
		}

		scene := domain.Scene{
			ID:          e.id,
			Title:       e.meta.Title,
			Description: strings.TrimSpace(e.body),
		}
		for _, c := range e.meta.Choices {
			effects, err := graph.DecodeEffects(c.Effects)
			if err != nil {
				return nil, &domain.ContentError{SceneID: e.id, ActionID: c.ID, Reason: err.Error()}
			}
			scene.Transitions = append(scene.Transitions, domain.Transition{
				ActionID:    c.ID,
				Description: c.Description,
				Target:      trimExtension(c.To),
				Effects:     effects,
			})
		}
		b.Add(scene)
	}

	if initial == "" && len(entries) > 0 {
		initial = entries[0].id
	}

	return b.Initial(initial).Narration(narration).Build()
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: one pending reload is enough.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}
