// Package gameflow turns the game client's gameflow phase into a UI status and decides when
// roster enrichment may run.
package gameflow

import (
	"fmt"
	"strings"
	"unicode"

	"lol-encounters/internal/queue"
)

type Phase int

const (
	PhaseNone Phase = iota
	PhaseUnreachable
	PhaseLobby
	PhaseMatchmaking
	PhaseReadyCheck
	PhaseChampSelect
	PhaseGameStart
	PhaseInProgress
	PhaseReconnect
	PhaseWaitingForStats
	PhasePreEndOfGame
	PhaseEndOfGame
)

// Unreachable is the phase string reported when the game client cannot be contacted.
const Unreachable = "ClientUnreachable"

var phaseNames = map[Phase]string{
	PhaseNone:            "None",
	PhaseUnreachable:     Unreachable,
	PhaseLobby:           "Lobby",
	PhaseMatchmaking:     "Matchmaking",
	PhaseReadyCheck:      "ReadyCheck",
	PhaseChampSelect:     "ChampSelect",
	PhaseGameStart:       "GameStart",
	PhaseInProgress:      "InProgress",
	PhaseReconnect:       "Reconnect",
	PhaseWaitingForStats: "WaitingForStats",
	PhasePreEndOfGame:    "PreEndOfGame",
	PhaseEndOfGame:       "EndOfGame",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "None"
}

var phaseByKey = map[string]Phase{
	"none":               PhaseNone,
	"clientunreachable":  PhaseUnreachable,
	"clientnotreachable": PhaseUnreachable,
	"unreachable":        PhaseUnreachable,
	"lobby":              PhaseLobby,
	"matchmaking":        PhaseMatchmaking,
	"readycheck":         PhaseReadyCheck,
	"champselect":        PhaseChampSelect,
	"gamestart":          PhaseGameStart,
	"inprogress":         PhaseInProgress,
	"reconnect":          PhaseReconnect,
	"waitingforstats":    PhaseWaitingForStats,
	"preendofgame":       PhasePreEndOfGame,
	"endofgame":          PhaseEndOfGame,
}

// ParsePhase ignores case, whitespace, '-' and '_'. Unrecognized values map to PhaseNone.
func ParsePhase(s string) Phase {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '_' || r == '"' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	if p, ok := phaseByKey[b.String()]; ok {
		return p
	}
	return PhaseNone
}

// IsLive reports membership in the set whose exit means a game has just ended.
func (p Phase) IsLive() bool {
	switch p {
	case PhaseChampSelect, PhaseInProgress, PhaseGameStart, PhaseReconnect:
		return true
	}
	return false
}

type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
)

type Status struct {
	Phase      Phase  `json:"-"`
	PhaseName  string `json:"phase"`
	Tone       Tone   `json:"tone"`
	Message    string `json:"message"`
	QueueID    int    `json:"queueId"`
	Anonymized bool   `json:"anonymized"`
	// Enrich is true when roster lookups may run in this state.
	Enrich bool `json:"enrich"`
	// Reimport is true in the post-game phases where the finished game should be imported.
	Reimport bool `json:"reimport"`
}

// Classify is the single mapping from (phase, anonymization, queue) to a status.
func Classify(p Phase, anonymized bool, queueID int) Status {
	s := Status{Phase: p, PhaseName: p.String(), QueueID: queueID, Anonymized: anonymized}
	mode := queueLabel(queueID)

	switch p {
	case PhaseUnreachable:
		s.Tone = ToneError
		s.Message = "League client is not running"
	case PhaseLobby:
		s.Tone = ToneInfo
		s.Message = "In lobby" + mode
		s.Enrich = !anonymized
	case PhaseMatchmaking:
		s.Tone = ToneInfo
		s.Message = "Searching for a match" + mode
	case PhaseReadyCheck:
		s.Tone = ToneInfo
		s.Message = "Match found, waiting for ready check"
	case PhaseChampSelect:
		s.Tone = ToneInfo
		if anonymized {
			s.Message = "Champion select" + mode + ": player names are hidden until lock-in"
		} else {
			s.Message = "Champion select" + mode
			s.Enrich = true
		}
	case PhaseGameStart:
		s.Tone = ToneSuccess
		s.Message = "Game starting" + mode
		s.Enrich = true
	case PhaseInProgress:
		s.Tone = ToneSuccess
		s.Message = "Game in progress" + mode
		s.Enrich = true
	case PhaseReconnect:
		s.Tone = ToneWarning
		s.Message = "Reconnect required"
		s.Enrich = !anonymized
	case PhaseWaitingForStats:
		s.Tone = ToneInfo
		s.Message = "Waiting for post-game stats"
		s.Reimport = true
	case PhasePreEndOfGame:
		s.Tone = ToneInfo
		s.Message = "Game finished, loading results"
		s.Reimport = true
	case PhaseEndOfGame:
		s.Tone = ToneInfo
		s.Message = "Game finished, updating match history"
		s.Reimport = true
	default:
		s.Tone = ToneInfo
		s.Message = "Idle"
	}

	// In-progress states resolve identities even when champ select was anonymized.
	if p == PhaseInProgress || p == PhaseGameStart {
		s.Anonymized = false
	}
	return s
}

func queueLabel(queueID int) string {
	if queueID <= 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", queue.Name(queueID))
}

// GameEnded reports a transition out of the live set.
func GameEnded(prev, next Phase) bool {
	return prev.IsLive() && !next.IsLive()
}
