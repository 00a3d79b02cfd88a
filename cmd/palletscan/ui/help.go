package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Pallet scanning station

Select a package line and press **s** (or **Enter**) to scan a pallet.
The barcode is submitted to the ERP and the line shows the package it was
put in.

| Key | Action |
|-----|--------|
| ↑ / k | previous line |
| ↓ / j | next line |
| s / Enter | scan pallet on the selected line |
| Esc | cancel the barcode prompt |
| ? | toggle this help |
| q / Ctrl+C | quit |

Successful results clear after a few seconds. Failures stay until the next
scan on that line.
`

// renderHelp renders the help text for width, falling back to the raw
// markdown if no renderer can be built.
func renderHelp(width int, dark bool) string {
	if width < 20 {
		width = 80
	}
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
