package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/totem/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// If the terminal renderer cannot be built the markdown is returned as is.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ResultMarkdown formats a resolved category for terminal output.
func ResultMarkdown(brand domain.Brand, c domain.Category) string {
	var sb strings.Builder
	if brand.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", brand.Title)
	}
	fmt.Fprintf(&sb, "## Ваше тотемное животное: %s\n\n", c.DisplayName())
	if c.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", c.Description)
	}
	if len(c.Traits) > 0 {
		fmt.Fprintf(&sb, "**Характерные черты:** %s\n\n", strings.Join(c.Traits, ", "))
	}
	if c.SponsorInfo != "" {
		fmt.Fprintf(&sb, "**Стоимость опеки:** %s\n\n", c.SponsorInfo)
	}
	if brand.Website != "" {
		fmt.Fprintf(&sb, "Взять под опеку: %s\n", brand.Website)
	}
	return sb.String()
}
