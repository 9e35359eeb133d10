package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/quest"
	"github.com/aretw0/quest/internal/presentation/graph"
	"github.com/aretw0/quest/pkg/domain"
)

// Report describes a loaded world.
type Report struct {
	Name        string
	Initial     string
	Scenes      int
	Endings     []string
	Unreachable []string
}

// Validate summarizes the world the engine loaded. Loading already rejected dangling targets;
// unreachable scenes are reported but are not an error.
func Validate(engine *quest.Engine) Report {
	g := engine.Graph()
	r := Report{
		Name:        engine.Name,
		Initial:     g.Initial(),
		Scenes:      g.Len(),
		Unreachable: g.Unreachable(),
	}
	for _, s := range g.Scenes() {
		if s.IsTerminal() {
			r.Endings = append(r.Endings, s.ID)
		}
	}
	return r
}

// Write prints the report.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "World %q is valid: %d scenes, starting at '%s'.\n", r.Name, r.Scenes, r.Initial)
	if len(r.Endings) > 0 {
		fmt.Fprintf(w, "Endings: %s\n", strings.Join(r.Endings, ", "))
	}
	if len(r.Unreachable) > 0 {
		fmt.Fprintf(w, "Warning: unreachable scenes: %s\n", strings.Join(r.Unreachable, ", "))
	}
}

// WriteGraph prints the Mermaid flowchart of the world, highlighting the session under key when given.
func WriteGraph(ctx context.Context, w io.Writer, app *App, key string) error {
	var overlay *graph.GraphOverlay
	if key != "" {
		sess, err := app.Service.Inspect(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to load session '%s': %w", key, err)
		}
		overlay = graph.OverlayFor(sess)
	}
	g := app.Engine.Graph()
	_, err := io.WriteString(w, graph.GenerateMermaid(g.Scenes(), g.Initial(), overlay))
	return err
}

// ListSessions prints every stored key, one per line.
func ListSessions(ctx context.Context, w io.Writer, app *App) error {
	keys, err := app.Service.List(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No sessions stored.")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
	return nil
}

// InspectSession prints the stored record under key as indented JSON.
func InspectSession(ctx context.Context, w io.Writer, app *App, key string) error {
	sess, err := app.Service.Inspect(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", key, err)
	}
	return writeJSON(w, sess)
}

// RemoveSession deletes the records under keys.
func RemoveSession(ctx context.Context, w io.Writer, app *App, keys ...string) error {
	for _, key := range keys {
		if err := app.Service.End(ctx, key); err != nil {
			return fmt.Errorf("failed to remove session '%s': %w", key, err)
		}
		fmt.Fprintf(w, "Removed session '%s'.\n", key)
	}
	return nil
}

func writeJSON(w io.Writer, s *domain.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
