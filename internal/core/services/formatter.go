package services

import (
	"fmt"
	"html"
	"strings"

	"nowplaying/internal/core/domain"
)

const starGlyph = "⭐️"

// RenderStatus renders a snapshot as the HTML reply sent to the recipient.
func RenderStatus(s domain.StatusSnapshot) string {
	star := fmt.Sprintf("%.2f%s", s.DifficultyRating, starGlyph)
	if !s.Modifiers.Empty() {
		star += " +" + s.Modifiers.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>now playing osu!%s</b><br>\n", s.ModeLabel)
	fmt.Fprintf(&b, "Map: <a href=\"%s\">%s</a><br>\n", s.MapLink, html.EscapeString(s.MapLabel))
	fmt.Fprintf(&b, "Star: %s<br>\n", star)
	fmt.Fprintf(&b, "Length: %s", s.LengthLabel)

	return strings.TrimSpace(b.String())
}
