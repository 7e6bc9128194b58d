package report

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// Render formats markdown for the terminal
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	return r.Render(markdown)
}

// Show reads a saved markdown report and renders it for the terminal
func Show(path string, width int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading report: %w", err)
	}
	return Render(string(data), width)
}
