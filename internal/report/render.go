package report

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minWrap keeps very narrow terminals readable.
const minWrap = 24

// Renderer turns reports into ANSI-styled terminal text.
type Renderer struct {
	// Style is a glamour standard style name: "dark", "light", "notty", ...
	Style string
	Width int
}

// Render converts the report's Markdown for terminal display. If glamour
// cannot render it, the raw Markdown is returned along with the error.
func (rr Renderer) Render(r Report) (string, error) {
	md := r.Markdown()

	width := rr.Width
	if width < minWrap {
		width = minWrap
	}
	style := rr.Style
	if style == "" {
		style = "dark"
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md, err
	}
	out, err := tr.Render(md)
	if err != nil {
		return md, err
	}
	return strings.TrimRight(out, "\n"), nil
}
