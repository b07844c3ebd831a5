package domain

import "strings"

// ModifierSet is an ordered list of two-letter modifier codes such as "HD" or "DT".
// Treat values as immutable once built.
type ModifierSet []string

// String joins the codes the way the game prints them, e.g. "HDDT".
func (m ModifierSet) String() string {
	return strings.Join(m, "")
}

func (m ModifierSet) Empty() bool {
	return len(m) == 0
}

type modifierBit struct {
	Bit  int
	Code string
}

// modifierBits is iterated in order, which fixes the output order of DecodeModifierBits.
var modifierBits = []modifierBit{
	{2, "EZ"},
	{4, "TD"},
	{8, "HD"},
	{16, "HR"},
	{32, "SD"},
	{64, "DT"},
	{128, "RL"},
	{256, "HT"},
	{512, "NC"},
	{1024, "FL"},
	{2048, "AP"},
	{4096, "SO"},
	{16384, "PF"},
	{32768, "4K"},
	{65536, "5K"},
	{131072, "6K"},
	{262144, "7K"},
	{524288, "8K"},
	{1048576, "9K"},
}

// DecodeModifierBits expands a modifier bitmask into codes in table order.
func DecodeModifierBits(mask int) ModifierSet {
	if mask <= 0 {
		return nil
	}
	var set ModifierSet
	for _, mb := range modifierBits {
		if mask&mb.Bit != 0 {
			set = append(set, mb.Code)
		}
	}
	return set
}

// ParseModifiers splits a feed modifier string ("HDDT", "HD,DT", "+HD DT") into codes.
// Strings that do not split evenly into two-letter codes are kept as a single entry.
func ParseModifiers(raw string) ModifierSet {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '+', '|':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	if len(cleaned)%2 != 0 {
		return ModifierSet{cleaned}
	}
	set := make(ModifierSet, 0, len(cleaned)/2)
	for i := 0; i < len(cleaned); i += 2 {
		set = append(set, cleaned[i:i+2])
	}
	return set
}
