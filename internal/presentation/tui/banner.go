package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the quest banner, colored for the terminal's profile.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{`   ___                  _   `, "#fbbf24"},
		{`  / _ \ _   _  ___  ___| |_ `, "#f59e0b"},
		{` | | | | | | |/ _ \/ __| __|`, "#f97316"},
		{` | |_| | |_| |  __/\__ \ |_ `, "#ef4444"},
		{`  \__\_\\__,_|\___||___/\__|`, "#dc2626"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
