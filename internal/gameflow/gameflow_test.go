package gameflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		input string
		want  Phase
	}{
		{"ChampSelect", PhaseChampSelect},
		{"champ select", PhaseChampSelect},
		{" CHAMPSELECT ", PhaseChampSelect},
		{`"InProgress"`, PhaseInProgress},
		{"in_progress", PhaseInProgress},
		{"GameStart", PhaseGameStart},
		{"EndOfGame", PhaseEndOfGame},
		{"WaitingForStats", PhaseWaitingForStats},
		{"PreEndOfGame", PhasePreEndOfGame},
		{"Reconnect", PhaseReconnect},
		{"ReadyCheck", PhaseReadyCheck},
		{"Matchmaking", PhaseMatchmaking},
		{"Lobby", PhaseLobby},
		{"None", PhaseNone},
		{Unreachable, PhaseUnreachable},
		{"client not reachable", PhaseUnreachable},
		{"TerminatedInError", PhaseNone},
		{"", PhaseNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePhase(tt.input), "input %q", tt.input)
	}
}

func TestClassifyTones(t *testing.T) {
	tests := []struct {
		phase Phase
		tone  Tone
	}{
		{PhaseUnreachable, ToneError},
		{PhaseMatchmaking, ToneInfo},
		{PhaseReadyCheck, ToneInfo},
		{PhaseLobby, ToneInfo},
		{PhaseChampSelect, ToneInfo},
		{PhaseNone, ToneInfo},
		{PhaseInProgress, ToneSuccess},
		{PhaseGameStart, ToneSuccess},
		{PhaseEndOfGame, ToneInfo},
		{PhaseWaitingForStats, ToneInfo},
		{PhasePreEndOfGame, ToneInfo},
		{PhaseReconnect, ToneWarning},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			s := Classify(tt.phase, false, 0)
			assert.Equal(t, tt.tone, s.Tone)
			assert.NotEmpty(t, s.Message)
		})
	}
}

func TestClassifyEnrichment(t *testing.T) {
	t.Run("anonymized ranked champ select suppresses lookups", func(t *testing.T) {
		s := Classify(PhaseChampSelect, true, 420)
		assert.False(t, s.Enrich)
		assert.True(t, s.Anonymized)
		assert.Contains(t, s.Message, "hidden")
		assert.Contains(t, s.Message, "Ranked Solo/Duo")
	})

	t.Run("champ select after lock-in enriches", func(t *testing.T) {
		assert.True(t, Classify(PhaseChampSelect, false, 420).Enrich)
	})

	t.Run("in progress clears anonymization", func(t *testing.T) {
		s := Classify(PhaseInProgress, true, 420)
		assert.True(t, s.Enrich)
		assert.False(t, s.Anonymized)
	})

	t.Run("pre-game and post-game phases never enrich", func(t *testing.T) {
		for _, p := range []Phase{PhaseNone, PhaseUnreachable, PhaseMatchmaking, PhaseReadyCheck, PhaseEndOfGame, PhaseWaitingForStats, PhasePreEndOfGame} {
			assert.False(t, Classify(p, false, 0).Enrich, p.String())
		}
	})

	t.Run("post-game phases request a reimport", func(t *testing.T) {
		for _, p := range []Phase{PhaseEndOfGame, PhaseWaitingForStats, PhasePreEndOfGame} {
			assert.True(t, Classify(p, false, 0).Reimport, p.String())
		}
		assert.False(t, Classify(PhaseInProgress, false, 0).Reimport)
	})
}

func TestGameEnded(t *testing.T) {
	assert.True(t, GameEnded(PhaseInProgress, PhaseEndOfGame))
	assert.True(t, GameEnded(PhaseChampSelect, PhaseLobby))
	assert.True(t, GameEnded(PhaseReconnect, PhaseUnreachable))
	assert.False(t, GameEnded(PhaseChampSelect, PhaseInProgress))
	assert.False(t, GameEnded(PhaseGameStart, PhaseInProgress))
	assert.False(t, GameEnded(PhaseLobby, PhaseMatchmaking))
	assert.False(t, GameEnded(PhaseEndOfGame, PhaseLobby))
}
