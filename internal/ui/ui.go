// package ui holds the [lipgloss] styles used by CLI output
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/amx/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders a section heading.
func Title(text string) string {
	return styles.title.Render(text)
}

// Success renders a success message.
func Success(text string) string {
	return styles.ok.Render(text)
}

// Failure renders an error message.
func Failure(text string) string {
	return styles.err.Render(text)
}

// Warn renders a warning message.
func Warn(text string) string {
	return styles.warn.Render(text)
}

// Help renders de-emphasized helper text.
func Help(text string) string {
	return styles.help.Render(text)
}

// RenderOutcome renders a migration outcome as a styled terminal summary.
func RenderOutcome(outcome *models.Outcome) string {
	var b strings.Builder

	if outcome.Failed() {
		b.WriteString(Failure("✗ Migration failed"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s\n", outcome.FatalError))
		return b.String()
	}

	b.WriteString(Success(fmt.Sprintf("✓ Migrated %d/%d tracks", outcome.MigratedCount, outcome.TotalTracks)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s\n", outcome.PlaylistURL))

	if len(outcome.TrackErrors) > 0 {
		b.WriteString(Warn(fmt.Sprintf("\n%d track(s) could not be migrated:\n", len(outcome.TrackErrors))))
		for _, trackErr := range outcome.TrackErrors {
			b.WriteString(fmt.Sprintf("  - %s\n", trackErr))
		}
	}

	return b.String()
}
