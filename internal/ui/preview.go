package ui

import (
	"fmt"
	"strings"
)

// RenderPreview draws a boxed preview of an issue that would be filed
func RenderPreview(title string, owners []string, body string, width int) string {
	if width < 40 {
		width = 40
	}
	var b strings.Builder
	b.WriteString(BoldStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(fmt.Sprintf("owners: %s", strings.Join(owners, ", "))))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	return BoxStyle.Width(width - 2).Render(b.String())
}

// PrintPreview prints a boxed issue preview sized to the terminal
func PrintPreview(title string, owners []string, body string) {
	Println(RenderPreview(title, owners, body, TerminalWidth()))
}
