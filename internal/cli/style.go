package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles are bound to the command's writer, so buffers and pipes get
// plain text and terminals get colour.
type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	warn  lipgloss.Style
	dim   lipgloss.Style
	box   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")),
		label: r.NewStyle().Bold(true),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#5FAF5F")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("#D75F5F")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#D7AF00")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
		box: r.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(1),
	}
}

// mark renders the pass/fail glyph.
func (s styles) mark(pass bool) string {
	if pass {
		return s.ok.Render("✓")
	}
	return s.bad.Render("✗")
}
