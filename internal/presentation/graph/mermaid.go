package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/quest/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedScenes []string
	CurrentScene  string
}

// OverlayFor builds an overlay from a session's history and position.
func OverlayFor(s *domain.Session) *GraphOverlay {
	if s == nil {
		return nil
	}
	o := &GraphOverlay{CurrentScene: s.CurrentSceneID}
	for _, h := range s.History {
		o.VisitedScenes = append(o.VisitedScenes, h.From, h.To)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the scenes.
// Shapes:
// - Initial scene: ((Circle))
// - Scene without choices: ([Stadium])
// - Default: [Rectangle]
// Edges are labeled with the action id; choices that carry effects are dotted.
func GenerateMermaid(scenes []domain.Scene, initial string, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, scene := range scenes {
		safeID := sanitizeMermaidID(scene.ID)

		opener, closer := "[", "]"
		switch {
		case scene.ID == initial:
			opener, closer = "((", "))"
		case scene.IsTerminal():
			opener, closer = "([", "])"
		}

		label := scene.ID
		if scene.Title != "" {
			label = scene.Title + " <br/> " + scene.ID
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)

		for _, t := range scene.Transitions {
			arrow := fmt.Sprintf("-- \"%s\" -->", escapeLabel(t.ActionID))
			if len(t.Effects) > 0 {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(t.ActionID))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(t.Target))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedScenes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentScene != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentScene))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
