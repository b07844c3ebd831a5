package services

import "nowplaying/internal/core/domain"

// ResolveModifiers picks the first non-empty modifier source in priority order:
// leaderboard, beatmap string, gameplay string, then the beatmap bitmask.
func ResolveModifiers(src domain.ModifierSources) domain.ModifierSet {
	for _, raw := range []string{src.Leaderboard, src.Beatmap, src.Gameplay} {
		if set := domain.ParseModifiers(raw); !set.Empty() {
			return set
		}
	}
	return domain.DecodeModifierBits(src.Bitmask)
}
