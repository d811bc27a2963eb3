package diff

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const noNewlineMarker = `\ No newline at end of file`

// RenderOptions controls unified diff output.
type RenderOptions struct {
	// Color wraps lines in ANSI escape sequences regardless of the writer.
	Color bool
}

type styles struct {
	header  lipgloss.Style
	hunk    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	plain   lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return styles{
		header:  base.Bold(true),
		hunk:    base.Foreground(lipgloss.Color("6")),
		added:   base.Foreground(lipgloss.Color("2")),
		removed: base.Foreground(lipgloss.Color("1")),
		plain:   base,
	}
}

// Render writes r to w in unified format. Nothing is written when the inputs
// are identical.
func Render(w io.Writer, r *Result, opts RenderOptions) error {
	if !r.HasChanges() {
		return nil
	}

	s := newStyles(w, opts.Color)
	var sb strings.Builder

	line := func(style lipgloss.Style, text string) {
		if opts.Color && text != "" {
			text = style.Render(text)
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	line(s.header, "--- "+r.OldLabel)
	line(s.header, "+++ "+r.NewLabel)

	for _, h := range r.Hunks {
		line(s.hunk, fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OldStart, h.OldCount), hunkRange(h.NewStart, h.NewCount)))
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				line(s.added, "+"+l.Content)
			case LineRemoved:
				line(s.removed, "-"+l.Content)
			default:
				line(s.plain, " "+l.Content)
			}
			if l.NoEOL {
				line(s.plain, noNewlineMarker)
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Format returns the rendered diff as a string.
func Format(r *Result, opts RenderOptions) string {
	var sb strings.Builder
	_ = Render(&sb, r, opts)
	return sb.String()
}

// hunkRange omits the count when it is one.
func hunkRange(start, count int) string {
	if count == 1 {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(count)
}
