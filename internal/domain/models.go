package domain

import (
	"errors"
	"strings"
	"time"
)

// Match sources. A game-client copy is replaced once the vendor copy is imported.
const (
	SourceVendor = "vendor"
	SourceClient = "client"
)

// Match is immutable once stored, except that a client-sourced copy may be replaced by the
// vendor's.
type Match struct {
	MatchID   string
	CreatedAt int64 // epoch ms
	Duration  int   // seconds
	GameMode  string
	QueueID   int
	Source    string
}

// Participant freezes the player's display name as it was in that game.
type Participant struct {
	MatchID      string
	Puuid        string
	GameName     string
	TagLine      string
	SummonerName string
	ChampionName string
	ChampionID   int
	TeamID       int
	Kills        int
	Deaths       int
	Assists      int
	Win          bool
	Role         string
}

// DisplayName prefers the Riot ID and falls back to the legacy summoner name.
func (p Participant) DisplayName() string {
	if p.GameName != "" {
		if p.TagLine != "" {
			return p.GameName + "#" + p.TagLine
		}
		return p.GameName
	}
	return p.SummonerName
}

type ConfiguredUser struct {
	Puuid       string
	DisplayName string
	Region      string
	APIKey      string
	UpdatedAt   time.Time
}

type TagCategory string

const (
	TagToxic    TagCategory = "toxic"
	TagFriendly TagCategory = "friendly"
	TagNotable  TagCategory = "notable"
	TagDuo      TagCategory = "duo"
	TagWeak     TagCategory = "weak"
)

var ErrInvalidTagCategory = errors.New("invalid tag category")

var TagCategories = []TagCategory{TagToxic, TagFriendly, TagNotable, TagDuo, TagWeak}

func ParseTagCategory(s string) (TagCategory, error) {
	c := TagCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TagCategories {
		if c == known {
			return c, nil
		}
	}
	return "", ErrInvalidTagCategory
}

type PlayerTag struct {
	ID        string      `json:"id"`
	Puuid     string      `json:"puuid"`
	Category  TagCategory `json:"category"`
	Note      string      `json:"note"`
	CreatedAt int64       `json:"createdAt"` // epoch ms
}

// TargetPlayer describes who an encounter summary is computed for. Either field may be empty.
type TargetPlayer struct {
	Puuid       string
	DisplayName string
}

// SharedMatch is one match containing both the local user and the target player, seen from
// both sides.
type SharedMatch struct {
	Match  Match
	Local  Participant
	Target Participant
	// ByName is set when the target row was found through the name fallback.
	ByName bool
}
