package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

// RenderScene turns a scene into narration. A nil scene renders the fallback line.
// The result always ends with the prompt.
func RenderScene(scene *domain.Scene, n graph.Narration) string {
	var sb strings.Builder
	if scene == nil {
		sb.WriteString(n.Fallback)
	} else {
		sb.WriteString(scene.Description)
		if len(scene.Transitions) > 0 {
			sb.WriteString("\n\nChoices:\n")
			for i, t := range scene.Transitions {
				if i > 0 {
					sb.WriteString("\n")
				}
				fmt.Fprintf(&sb, "- %s (say: %s)", t.Description, t.ActionID)
			}
		}
	}
	sb.WriteString("\n\n")
	sb.WriteString(n.Prompt)
	return sb.String()
}

// renderCurrent renders the scene the session stands on.
func (e *Engine) renderCurrent(s *domain.Session) string {
	scene, ok := e.graph.Lookup(s.CurrentSceneID)
	if !ok {
		return RenderScene(nil, e.graph.Narration())
	}
	return RenderScene(&scene, e.graph.Narration())
}

// withPreamble prefixes rendered text with a greeting-like paragraph, if any.
func withPreamble(preamble, body string) string {
	if preamble == "" {
		return body
	}
	return preamble + "\n\n" + body
}

// summarize builds the journal listing of a session.
func (e *Engine) summarize(s *domain.Session) string {
	n := e.graph.Narration()
	lines := []string{
		fmt.Sprintf("Session: %s | Started at: %s", s.ID, s.StartedAt.UTC().Format(timeFormat)),
	}
	if s.SubjectName != "" && s.SubjectName != domain.Redacted {
		lines = append(lines, "Player: "+s.SubjectName)
	}

	if len(s.Journal) > 0 {
		lines = append(lines, "\nJournal entries:")
		for _, j := range s.Journal {
			lines = append(lines, "- "+j)
		}
	} else {
		lines = append(lines, "\nJournal is empty so far.")
	}

	if len(s.Inventory) > 0 {
		lines = append(lines, "\nInventory:")
		for _, item := range s.Inventory {
			lines = append(lines, "- "+item)
		}
	} else {
		lines = append(lines, "\nYou carry no special items yet.")
	}

	if len(s.Entities) > 0 {
		lines = append(lines, "\nKnown names:")
		for _, role := range sortedKeys(s.Entities) {
			lines = append(lines, fmt.Sprintf("- %s: %s", role, s.Entities[role]))
		}
	}

	lines = append(lines, "\nRecent choices:")
	for _, h := range s.RecentHistory(n.SummaryWindow) {
		lines = append(lines, fmt.Sprintf("- %s | from %s -> %s via %s",
			h.Timestamp.UTC().Format(timeFormat), h.From, h.To, h.Action))
	}

	lines = append(lines, "\n"+n.Prompt)
	return strings.Join(lines, "\n")
}
