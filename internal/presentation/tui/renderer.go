package tui

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column at which rendered scene text wraps.
const DefaultWordWrap = 80

// NewRenderer returns a function that renders scene text as markdown using glamour.
// The style follows the terminal background.
func NewRenderer(wordWrap int) (func(string) (string, error), error) {
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
