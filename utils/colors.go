package utils

import (
	"github.com/aybabtme/rgbterm"
	"github.com/lucasb-eyer/go-colorful"
)

// RGB wraps a color with terminal rendering helpers.
type RGB struct {
	colorful.Color
}

// GetRGBFromString parses a hex color string like "#FF0000". Invalid
// strings come back black rather than failing the render.
func GetRGBFromString(s string) RGB {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}
	}
	return RGB{c}
}

// TermString renders the color itself as a colored hex swatch.
func (c RGB) TermString() string {
	r, g, b := c.RGB255()
	return rgbterm.FgString(c.Hex(), r, g, b)
}

// FgString colors text for terminal output.
func FgString(c RGB, text string) string {
	r, g, b := c.RGB255()
	return rgbterm.FgString(text, r, g, b)
}
