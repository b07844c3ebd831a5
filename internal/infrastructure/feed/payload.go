package feed

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// looseString decodes a JSON string and treats every other JSON type as empty.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(v)
	return nil
}

// looseNumber decodes JSON numbers and numeric strings; anything else is 0.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseNumber(v)
	return nil
}

// scoreField accepts both a bare number and an object with total/current.
type scoreField struct {
	Total   looseNumber
	Current looseNumber
	Bare    *looseNumber
}

func (s *scoreField) UnmarshalJSON(data []byte) error {
	var obj struct {
		Total   looseNumber `json:"total"`
		Current looseNumber `json:"current"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		s.Total, s.Current = obj.Total, obj.Current
		return nil
	}
	var bare looseNumber
	_ = bare.UnmarshalJSON(data)
	s.Bare = &bare
	return nil
}

type modsPayload struct {
	Str looseString `json:"str"`
	Num looseNumber `json:"num"`
}

type menuPayload struct {
	State    looseNumber `json:"state"`
	GameMode looseNumber `json:"gameMode"`
	Bm       struct {
		ID    looseNumber `json:"id"`
		Mods  modsPayload `json:"mods"`
		Stats struct {
			FullSR looseNumber `json:"fullSR"`
			CS     looseNumber `json:"CS"`
		} `json:"stats"`
	} `json:"bm"`
}

type gameplayPayload struct {
	GameMode    looseNumber `json:"gameMode"`
	Score       scoreField  `json:"score"`
	Mods        modsPayload `json:"mods"`
	Leaderboard struct {
		OurPlayer struct {
			Mods looseString `json:"mods"`
		} `json:"ourplayer"`
	} `json:"leaderboard"`
}

// payload is the subset of the gosumemory/tosu /json document this service reads.
type payload struct {
	Menu     menuPayload      `json:"menu"`
	Gameplay *gameplayPayload `json:"gameplay"`
}
