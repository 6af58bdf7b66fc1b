// Package ux renders the command line summary of a run.
package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorBullish = lipgloss.Color("#26A69A")
	ColorBearish = lipgloss.Color("#EF5350")
	ColorNeutral = lipgloss.Color("#8A8A8A")
	ColorAccent  = lipgloss.Color("#FFA500")
)

var Styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
	Bullish lipgloss.Style
	Bearish lipgloss.Style
	Neutral lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Muted:   lipgloss.NewStyle().Foreground(ColorNeutral),
	Bold:    lipgloss.NewStyle().Bold(true),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(ColorBearish),
	Box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorNeutral).Padding(0, 1),
	Bullish: lipgloss.NewStyle().Bold(true).Foreground(ColorBullish),
	Bearish: lipgloss.NewStyle().Bold(true).Foreground(ColorBearish),
	Neutral: lipgloss.NewStyle().Bold(true).Foreground(ColorNeutral),
}

// SignalStyle maps a signal name (bullish, bearish, anything else) to a style.
func SignalStyle(signal string) lipgloss.Style {
	switch signal {
	case "bullish":
		return Styles.Bullish
	case "bearish":
		return Styles.Bearish
	default:
		return Styles.Neutral
	}
}

// Row is one "label: value" line of a summary box.
type Row struct {
	Label string
	Value string
}

// Summary writes a titled box of rows followed by an optional headline.
func Summary(w io.Writer, title string, rows []Row, headline string) {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Label))
	}
	body := Styles.Title.Render(title)
	for _, r := range rows {
		label := Styles.Muted.Render(fmt.Sprintf("%-*s", width, r.Label))
		body += "\n" + label + "  " + r.Value
	}
	if headline != "" {
		body += "\n\n" + headline
	}
	fmt.Fprintln(w, Styles.Box.Render(body))
}

// Failure writes a styled error line.
func Failure(w io.Writer, err error) {
	fmt.Fprintln(w, Styles.Error.Render("✗ "+err.Error()))
}
