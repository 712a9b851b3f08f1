package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("39")  // Cyan
	ColorSecondary = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("245") // Gray
	ColorHighlight = lipgloss.Color("226") // Yellow
)

var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Dim    = lipgloss.NewStyle().Foreground(ColorMuted)
	Header = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)

	// Search result styles
	RecipeTitle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
	RecipeCategory = lipgloss.NewStyle().
			Foreground(ColorSecondary)
	RecipeTag = lipgloss.NewStyle().
			Foreground(ColorHighlight)
	RecipeDistance = lipgloss.NewStyle().
			Foreground(ColorSuccess)
	RecipeDetail = lipgloss.NewStyle().
			Foreground(ColorMuted).
			PaddingLeft(4)

	SectionTitle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			MarginTop(1)
	Divider = lipgloss.NewStyle().
		Foreground(ColorMuted)
)

// HorizontalRule returns a styled horizontal divider.
func HorizontalRule(width int) string {
	if width < 0 {
		width = 0
	}
	return Divider.Render(strings.Repeat("─", width))
}

// FormatDistance formats an L2 distance; smaller is closer.
func FormatDistance(d float64) string {
	return RecipeDistance.Render(fmt.Sprintf("(distance %.4f)", d))
}

// FormatTags renders tags as a space separated list of #tag labels.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "#" + strings.ReplaceAll(strings.TrimSpace(t), " ", "-")
	}
	return RecipeTag.Render(strings.Join(parts, " "))
}

// FormatResult renders a numbered search result heading.
func FormatResult(rank int, title, category string, distance float64) string {
	line := fmt.Sprintf("%d. %s", rank, RecipeTitle.Render(title))
	if category != "" {
		line += " " + RecipeCategory.Render("["+category+"]")
	}
	return line + " " + FormatDistance(distance)
}
