package ui

import (
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
)

type palette struct {
	text, muted, accent, border lipgloss.Color
	success, danger, warning    lipgloss.Color
	low, medium, high           lipgloss.Color
}

var (
	lightPalette = palette{
		text: "#1f2937", muted: "#6b7280", accent: "#4f46e5", border: "#d1d5db",
		success: "#15803d", danger: "#b91c1c", warning: "#b45309",
		low: "#15803d", medium: "#b45309", high: "#b91c1c",
	}
	darkPalette = palette{
		text: "#e5e7eb", muted: "#9ca3af", accent: "#818cf8", border: "#4b5563",
		success: "#4ade80", danger: "#f87171", warning: "#fbbf24",
		low: "#4ade80", medium: "#fbbf24", high: "#f87171",
	}
)

type styles struct {
	title     lipgloss.Style
	muted     lipgloss.Style
	card      lipgloss.Style
	cardValue lipgloss.Style
	selected  lipgloss.Style
	row       lipgloss.Style
	completed lipgloss.Style
	badge     lipgloss.Style
	overdue   lipgloss.Style
	dueSoon   lipgloss.Style
	tag       lipgloss.Style
	bar       lipgloss.Style
	barEmpty  lipgloss.Style
	form      lipgloss.Style
	label     lipgloss.Style
	focused   lipgloss.Style
	errorText lipgloss.Style
	toastOK   lipgloss.Style
	toastErr  lipgloss.Style
	help      lipgloss.Style
	priority  map[service.Priority]lipgloss.Style
}

func newStyles(theme string) styles {
	p := lightPalette
	if theme == config.ThemeDark {
		p = darkPalette
	}
	base := lipgloss.NewStyle().Foreground(p.text)
	return styles{
		title:     base.Bold(true).Foreground(p.accent),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1).Width(16),
		cardValue: base.Bold(true),
		selected:  base.Bold(true).Foreground(p.accent),
		row:       base,
		completed: lipgloss.NewStyle().Foreground(p.muted).Strikethrough(true),
		badge:     lipgloss.NewStyle().Bold(true),
		overdue:   lipgloss.NewStyle().Bold(true).Foreground(p.danger),
		dueSoon:   lipgloss.NewStyle().Bold(true).Foreground(p.warning),
		tag:       lipgloss.NewStyle().Foreground(p.accent),
		bar:       lipgloss.NewStyle().Foreground(p.success),
		barEmpty:  lipgloss.NewStyle().Foreground(p.border),
		form:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(0, 1),
		label:     lipgloss.NewStyle().Foreground(p.muted).Width(12),
		focused:   lipgloss.NewStyle().Foreground(p.accent).Bold(true).Width(12),
		errorText: lipgloss.NewStyle().Foreground(p.danger),
		toastOK:   lipgloss.NewStyle().Foreground(p.success).Border(lipgloss.NormalBorder()).BorderForeground(p.success).Padding(0, 1),
		toastErr:  lipgloss.NewStyle().Foreground(p.danger).Border(lipgloss.NormalBorder()).BorderForeground(p.danger).Padding(0, 1),
		help:      lipgloss.NewStyle().Foreground(p.muted),
		priority: map[service.Priority]lipgloss.Style{
			service.PriorityLow:    lipgloss.NewStyle().Foreground(p.low),
			service.PriorityMedium: lipgloss.NewStyle().Foreground(p.medium),
			service.PriorityHigh:   lipgloss.NewStyle().Foreground(p.high).Bold(true),
		},
	}
}
