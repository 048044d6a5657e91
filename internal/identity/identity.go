// Package identity builds comparison keys for player names and decides whether a player is the
// configured local user.
package identity

import (
	"strings"
	"unicode"
)

// Key is the normalized form of a display name. Full keeps the tag, GameName drops it.
type Key struct {
	Full     string
	GameName string
}

func (k Key) IsEmpty() bool {
	return k.Full == ""
}

// Normalize lowercases name, removes every whitespace rune and splits on the first '#'.
// "Faker #KR1" and "faker#kr1" produce the same key; an empty name produces an empty key.
func Normalize(name string) Key {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	full := b.String()
	if full == "" {
		return Key{}
	}
	gameName := full
	if i := strings.IndexByte(full, '#'); i >= 0 {
		gameName = full[:i]
	}
	return Key{Full: full, GameName: gameName}
}

// NormalizeParts normalizes a Riot ID given as separate game name and tag line.
func NormalizeParts(gameName, tagLine string) Key {
	if strings.TrimSpace(tagLine) == "" {
		return Normalize(gameName)
	}
	return Normalize(gameName + "#" + tagLine)
}

// Candidate is a player seen somewhere else in the system.
type Candidate struct {
	Puuid       string
	DisplayName string
}

// Matcher answers "is this the configured user" for one configured identity.
type Matcher struct {
	puuid string
	key   Key
}

func NewMatcher(puuid, displayName string) Matcher {
	return Matcher{puuid: strings.TrimSpace(puuid), key: Normalize(displayName)}
}

// IsConfiguredUser compares by stable id when both sides carry one; that answer is final.
// Otherwise it falls back to the full name key, then the game-name key. Empty keys never match.
func (m Matcher) IsConfiguredUser(c Candidate) bool {
	puuid := strings.TrimSpace(c.Puuid)
	if m.puuid != "" && puuid != "" {
		return m.puuid == puuid
	}

	other := Normalize(c.DisplayName)
	if m.key.IsEmpty() || other.IsEmpty() {
		return false
	}
	if m.key.Full == other.Full {
		return true
	}
	return m.key.GameName != "" && m.key.GameName == other.GameName
}

// IsConfiguredUser is the one-shot form of Matcher.IsConfiguredUser.
func IsConfiguredUser(userPuuid, userName string, c Candidate) bool {
	return NewMatcher(userPuuid, userName).IsConfiguredUser(c)
}
