package visualization

import (
	"fmt"
	"strings"

	"github.com/anggasct/junction"
)

// TextRenderer draws a snapshot as a small plan view of the crossing for
// terminals. Each approach shows its signal and how many cars wait on it.
type TextRenderer struct {
	// MaxCars caps the number of car glyphs drawn per lane
	MaxCars int
	// Color enables ANSI colors for the signals
	Color bool
}

// NewTextRenderer creates a renderer with plain output
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{MaxCars: 8}
}

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func (r *TextRenderer) signal(c junction.Color) string {
	glyph := "R"
	code := ansiRed
	if c == junction.Green {
		glyph = "G"
		code = ansiGreen
	}
	if !r.Color {
		return glyph
	}
	return code + glyph + ansiReset
}

func (r *TextRenderer) cars(n int) string {
	limit := r.MaxCars
	if limit <= 0 {
		limit = 8
	}
	if n <= limit {
		return strings.Repeat("#", n)
	}
	return strings.Repeat("#", limit) + "+"
}

// Render returns the multi-line drawing of snapshot
func (r *TextRenderer) Render(s junction.Snapshot) string {
	var b strings.Builder

	title := "all red"
	if s.Started {
		title = fmt.Sprintf("cycle %d  %s green", s.Cycle, s.Axis)
	}
	if s.Name != "" {
		title = s.Name + "  " + title
	}
	b.WriteString(title + "\n\n")

	q := s.Queues
	sig := s.Signals
	pad := strings.Repeat(" ", 14)

	b.WriteString(fmt.Sprintf("%s%2d cars\n", pad, q.Len(junction.Top)))
	b.WriteString(fmt.Sprintf("%s%s\n", pad, r.cars(q.Len(junction.Top))))
	b.WriteString(fmt.Sprintf("%s  [%s]\n", pad, r.signal(sig.Color(junction.Top))))
	b.WriteString(fmt.Sprintf("%2d cars %6s [%s]  +  [%s] %-6s %2d cars\n",
		q.Len(junction.Left), r.cars(min(q.Len(junction.Left), 6)), r.signal(sig.Color(junction.Left)),
		r.signal(sig.Color(junction.Right)), r.cars(min(q.Len(junction.Right), 6)), q.Len(junction.Right)))
	b.WriteString(fmt.Sprintf("%s  [%s]\n", pad, r.signal(sig.Color(junction.Bottom))))
	b.WriteString(fmt.Sprintf("%s%s\n", pad, r.cars(q.Len(junction.Bottom))))
	b.WriteString(fmt.Sprintf("%s%2d cars\n", pad, q.Len(junction.Bottom)))

	return b.String()
}

// Summary returns a one-line description of snapshot
func (r *TextRenderer) Summary(s junction.Snapshot) string {
	parts := make([]string, 0, junction.NumLanes)
	for _, lane := range junction.Lanes {
		parts = append(parts, fmt.Sprintf("%s=%d%s", lane, s.Queues.Len(lane), r.signal(s.Signals.Color(lane))))
	}
	return strings.Join(parts, " ")
}
