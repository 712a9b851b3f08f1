package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestHorizontalRule(t *testing.T) {
	assert.Equal(t, "───", HorizontalRule(3))
	assert.Equal(t, "", HorizontalRule(-1))
}

func TestFormatTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"none", nil, ""},
		{"single", []string{"Vegan"}, "#Vegan"},
		{"spaces", []string{"Quick Dinner", " Spicy "}, "#Quick-Dinner #Spicy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTags(tt.tags))
		})
	}
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "1. Pad Thai [Thai] (distance 0.1234)", FormatResult(1, "Pad Thai", "Thai", 0.12341))
	assert.Equal(t, "2. Ramen (distance 1.0000)", FormatResult(2, "Ramen", "", 1))
}
