// Package styles holds the chat UI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Palette names the colours the chat UI draws with.
type Palette struct {
	Accent    lipgloss.Color // header and questions
	Reference lipgloss.Color // citation lists
	Text      lipgloss.Color
	Dim       lipgloss.Color // metadata and hints
	Grounded  lipgloss.Color // answers produced from retrieved chunks
	Degraded  lipgloss.Color // keyword fallback answers
	Failure   lipgloss.Color
	Frame     lipgloss.Color
	Bar       lipgloss.Color
}

// DefaultPalette is a dark palette.
func DefaultPalette() Palette {
	return Palette{
		Accent:    "#7C3AED",
		Reference: "#06B6D4",
		Text:      "#CDD6F4",
		Dim:       "#6C7086",
		Grounded:  "#A6E3A1",
		Degraded:  "#F9E2AF",
		Failure:   "#F38BA8",
		Frame:     "#45475A",
		Bar:       "#181825",
	}
}

// Styles are the rendered styles for one palette.
type Styles struct {
	palette Palette

	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Question   lipgloss.Style
	Citation   lipgloss.Style
	Fallback   lipgloss.Style // note attached to a keyword fallback answer
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles builds styles for p.
func NewStyles(p Palette) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		palette:    p,
		Title:      fg(p.Accent).Bold(true),
		Normal:     fg(p.Text),
		Muted:      fg(p.Dim),
		Question:   fg(p.Accent).Bold(true),
		Citation:   fg(p.Reference),
		Fallback:   fg(p.Degraded).Italic(true),
		Error:      fg(p.Failure),
		InputField: lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.Frame).Padding(0, 1),
		StatusBar:  fg(p.Dim).Background(p.Bar).Padding(0, 1),
		Help:       fg(p.Dim),
	}
}

// DefaultStyles uses DefaultPalette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Palette returns the colours the styles were built from.
func (s *Styles) Palette() Palette {
	return s.palette
}

// Method colours an answer's method label: grounded for RAG answers,
// degraded for keyword fallback.
func (s *Styles) Method(m domain.AnswerMethod) lipgloss.Style {
	if m == domain.AnswerMethodKeywordFallback {
		return lipgloss.NewStyle().Foreground(s.palette.Degraded)
	}
	return lipgloss.NewStyle().Foreground(s.palette.Grounded)
}
