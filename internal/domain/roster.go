package domain

import "strings"

// RawPlayer is a roster entry as reported by the game client. Name data arrives under several
// aliases depending on the endpoint and client version.
type RawPlayer struct {
	Puuid          string
	SummonerID     int64
	CellID         int
	GameName       string
	TagLine        string
	RiotIDGameName string
	RiotIDTagline  string
	RiotID         string
	SummonerName   string
	DisplayName    string
	ChampionID     int
	Team           int
	Position       string
	NameHidden     bool
}

// NameSource is one candidate location for a display name.
type NameSource struct {
	Field   string
	Resolve func(p RawPlayer) string
}

// DisplayNamePriority is the resolution order for RawPlayer display names; the first candidate
// that yields a non-empty value wins.
var DisplayNamePriority = []NameSource{
	{Field: "gameName#tagLine", Resolve: func(p RawPlayer) string { return joinRiotID(p.GameName, p.TagLine) }},
	{Field: "riotIdGameName#riotIdTagline", Resolve: func(p RawPlayer) string { return joinRiotID(p.RiotIDGameName, p.RiotIDTagline) }},
	{Field: "riotId", Resolve: func(p RawPlayer) string { return strings.TrimSpace(p.RiotID) }},
	{Field: "summonerName", Resolve: func(p RawPlayer) string { return strings.TrimSpace(p.SummonerName) }},
	{Field: "displayName", Resolve: func(p RawPlayer) string { return strings.TrimSpace(p.DisplayName) }},
}

// ResolveDisplayName returns the first non-empty name from DisplayNamePriority and the field it
// came from.
func (p RawPlayer) ResolveDisplayName() (string, string) {
	for _, src := range DisplayNamePriority {
		if name := src.Resolve(p); name != "" {
			return name, src.Field
		}
	}
	return "", ""
}

func joinRiotID(gameName, tagLine string) string {
	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimSpace(tagLine)
	if gameName == "" {
		return ""
	}
	if tagLine == "" {
		return gameName
	}
	return gameName + "#" + tagLine
}
