package domain

import (
	"fmt"
	"math"
)

const (
	// DefaultColumnCount is assumed for mania when the feed does not report CS.
	DefaultColumnCount = 4

	beatmapLinkFormat = "https://osu.ppy.sh/b/%d"
)

// StatusSnapshot is the final aggregate rendered into a reply. It is discarded after rendering.
type StatusSnapshot struct {
	Mode             GameMode
	ModeLabel        string
	DifficultyRating float64
	Modifiers        ModifierSet
	MapLabel         string
	MapLink          string
	LengthLabel      string
}

// ModeDisplayLabel renders the short mode name used in replies.
func ModeDisplayLabel(mode GameMode, columns int) string {
	switch mode {
	case ModeStandard:
		return "std"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "catch"
	case ModeMania:
		if columns <= 0 {
			columns = DefaultColumnCount
		}
		return fmt.Sprintf("mania (%dK)", columns)
	}
	return "unknown"
}

// MapLabel renders "<artist> - <title> [<difficulty>]".
func MapLabel(meta BeatmapMetadata) string {
	return fmt.Sprintf("%s - %s [%s]", meta.Artist, meta.Title, meta.DifficultyName)
}

func BeatmapLink(beatmapID int) string {
	return fmt.Sprintf(beatmapLinkFormat, beatmapID)
}

// FormatLength renders seconds as M:SS with unpadded minutes.
func FormatLength(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RoundRating rounds a difficulty rating to two decimals for display.
func RoundRating(rating float64) float64 {
	return math.Round(rating*100) / 100
}
