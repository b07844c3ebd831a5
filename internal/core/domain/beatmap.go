package domain

// BeatmapMetadata is the remote record for one beatmap in one mode.
// It is fetched on every request because the loaded map can change at any time.
type BeatmapMetadata struct {
	BeatmapID        int
	Mode             GameMode
	Artist           string
	Title            string
	DifficultyName   string
	LengthSeconds    int
	DifficultyRating float64 // base rating, no modifiers applied
}
