package output

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// frameWidth is the number of rule characters after the frame corner.
const frameWidth = 72

// Status is the outcome shown next to a row.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFailed
)

// StatusOf maps a pass/fail check to a status.
func StatusOf(ok bool) Status {
	if ok {
		return StatusOK
	}
	return StatusFailed
}

var statusGlyphs = map[Status]struct{ glyph, color string }{
	StatusOK:     {"✓", ColorGreen},
	StatusWarn:   {"⊘", ColorYellow},
	StatusFailed: {"✗", ColorRed},
}

// Icon renders the status glyph.
func (s Status) Icon(color bool) string {
	g := statusGlyphs[s]
	return Colorize(g.glyph, g.color, color)
}

// Section is a titled block of rows drawn with a left frame:
//
//	── Build · shop ─────────────── 1.2s ──
//	│ main.js   12 kB
//	└──────────────────────────────────────
type Section struct {
	w     io.Writer
	color bool
}

// NewSection writes the section title. A non-zero elapsed is shown at the
// right end of the title rule.
func NewSection(w io.Writer, title string, elapsed time.Duration, color bool) *Section {
	s := &Section{w: w, color: color}
	fmt.Fprintf(s.w, "\n    %s\n", s.title(title, elapsed))
	return s
}

func (s *Section) title(name string, elapsed time.Duration) string {
	head := "── " + name + " "
	tail := "──"
	if elapsed > 0 {
		tail = " " + formatElapsed(elapsed) + " ──"
	}
	// Names may hold multi-byte runes such as the "·" separator.
	fill := max(frameWidth+1-utf8.RuneCountInString(head)-utf8.RuneCountInString(tail), 1)
	line := head + strings.Repeat("─", fill) + tail
	if s.color {
		return "\033[2;36m" + line + ColorReset
	}
	return line
}

// Row writes one framed line.
func (s *Section) Row(format string, args ...any) {
	fmt.Fprintf(s.w, "    │ "+format+"\n", args...)
}

// Separator divides groups of rows.
func (s *Section) Separator() { s.rule("├") }

// Close ends the section.
func (s *Section) Close() { s.rule("└") }

func (s *Section) rule(corner string) {
	fmt.Fprintf(s.w, "    %s%s\n", corner, strings.Repeat("─", frameWidth))
}

// Dimmed greys text out when color is on.
func Dimmed(text string, color bool) string {
	return Colorize(text, ColorGray, color)
}

// KV is one entry of a context block. Entries with an empty Value are not
// printed.
type KV struct {
	Key   string
	Value string
}

// ContextBlock prints run metadata as aligned pairs, two to a line.
func ContextBlock(w io.Writer, kv []KV) {
	var set []KV
	for _, p := range kv {
		if p.Value != "" {
			set = append(set, p)
		}
	}
	if len(set) == 0 {
		return
	}
	fmt.Fprintln(w)
	for len(set) > 0 {
		if len(set) == 1 {
			fmt.Fprintf(w, "    %-12s%s\n", set[0].Key, set[0].Value)
			break
		}
		fmt.Fprintf(w, "    %-12s%-14s%-11s%s\n", set[0].Key, set[0].Value, set[1].Key, set[1].Value)
		set = set[2:]
	}
}

// formatElapsed renders a duration compactly: <1ms, 250ms, 1.5s, 2m3.0s.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d / time.Minute)
	return fmt.Sprintf("%dm%.1fs", m, (d - time.Duration(m)*time.Minute).Seconds())
}

// SummaryRow writes one line of the closing summary.
func SummaryRow(w io.Writer, name string, st Status, detail string, color bool) {
	fmt.Fprintf(w, "    │ %-20s%s  %s\n", name, st.Icon(color), detail)
}

// SummaryTotal writes the summary's last line with the overall time.
func SummaryTotal(w io.Writer, elapsed time.Duration, st Status, color bool) {
	fmt.Fprintf(w, "    │ %-20s%44s   %s\n", "total", formatElapsed(elapsed), st.Icon(color))
}
