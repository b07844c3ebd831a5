package domain

// GameMode is the ruleset reported by the live feed and the remote metadata service.
type GameMode int

const (
	ModeStandard GameMode = 0
	ModeTaiko    GameMode = 1
	ModeCatch    GameMode = 2
	ModeMania    GameMode = 3
)

func (m GameMode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "catch"
	case ModeMania:
		return "mania"
	default:
		return "unknown"
	}
}

// GameState tells whether the local client is in active gameplay.
type GameState int

const (
	StateIdle GameState = iota
	StateInSession
)

// ModifierSources holds every place the live feed may report active modifiers,
// listed here in resolution priority order.
type ModifierSources struct {
	Leaderboard string // gameplay.leaderboard.ourplayer.mods
	Beatmap     string // menu.bm.mods.str
	Gameplay    string // gameplay.mods.str
	Bitmask     int    // menu.bm.mods.num
}

// FeedSnapshot is one decoded read of the local live feed. It is never persisted.
type FeedSnapshot struct {
	MenuState      int
	Mode           GameMode
	InGameplay     bool
	Score          int64
	BeatmapID      int
	ColumnCount    int     // mania only, 0 when unknown
	FullDifficulty float64 // 0 when the feed has not computed it yet
	Modifiers      ModifierSources
}

// State reports InSession only when gameplay is present and the score moved off zero.
func (s FeedSnapshot) State() GameState {
	if s.InGameplay && s.Score != 0 {
		return StateInSession
	}
	return StateIdle
}

// Live is shorthand for State() == StateInSession.
func (s FeedSnapshot) Live() bool {
	return s.State() == StateInSession
}
