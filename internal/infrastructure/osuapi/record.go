package osuapi

import (
	"bytes"
	"strconv"

	"nowplaying/internal/core/domain"
)

// numericString decodes the API's quoted numbers ("150", "3.456"); bad values become 0.
type numericString float64

func (n *numericString) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(bytes.Trim(data, `"`)), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = numericString(v)
	return nil
}

type beatmapRecord struct {
	Artist           string        `json:"artist"`
	Title            string        `json:"title"`
	Version          string        `json:"version"`
	HitLength        numericString `json:"hit_length"`
	DifficultyRating numericString `json:"difficultyrating"`
}

func (r beatmapRecord) toMetadata(beatmapID int, mode domain.GameMode) domain.BeatmapMetadata {
	return domain.BeatmapMetadata{
		BeatmapID:        beatmapID,
		Mode:             mode,
		Artist:           orUnknown(r.Artist),
		Title:            orUnknown(r.Title),
		DifficultyName:   orUnknown(r.Version),
		LengthSeconds:    int(r.HitLength),
		DifficultyRating: float64(r.DifficultyRating),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknownField
	}
	return s
}
