package runner

import (
	"context"

	"github.com/aretw0/quest/pkg/domain"
)

// Turn is what the runner shows after each step.
type Turn struct {
	Text      string               `json:"text"`
	SessionID string               `json:"session_id"`
	SceneID   string               `json:"scene_id"`
	Status    domain.SessionStatus `json:"status"`
	Outcome   *domain.Outcome      `json:"outcome,omitempty"`
}

func newTurn(s *domain.Session, text string, outcome *domain.Outcome) Turn {
	return Turn{
		Text:      text,
		SessionID: s.ID,
		SceneID:   s.CurrentSceneID,
		Status:    s.Status,
		Outcome:   outcome,
	}
}

// IOHandler defines the strategy for interacting with the player.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the result of a step.
	Output(ctx context.Context, turn Turn) error

	// Input reads one line from the player.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (rejected input, notices) distinct from story text.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms story text before it is written (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)
