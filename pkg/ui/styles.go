package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	green = lipgloss.Color("#39FF14")
	red   = lipgloss.Color("#FF3B30")
	blue  = lipgloss.Color("#3B82F6")
	cyan  = lipgloss.Color("#00FFFF")
	grey  = lipgloss.Color("#969696")
)

// styles holds the lipgloss styles bound to one renderer
type styles struct {
	success   lipgloss.Style
	failure   lipgloss.Style
	rateLimit lipgloss.Style
	muted     lipgloss.Style
	count     lipgloss.Style
	label     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		success:   r.NewStyle().Foreground(green).Bold(true),
		failure:   r.NewStyle().Foreground(red).Bold(true),
		rateLimit: r.NewStyle().Foreground(red),
		muted:     r.NewStyle().Foreground(grey),
		count:     r.NewStyle().Foreground(blue).Bold(true),
		label:     r.NewStyle().Foreground(cyan),
	}
}
