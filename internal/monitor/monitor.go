// Package monitor polls the game client's gameflow phase and keeps the latest status, lobby and
// last-match roster for the RPC surface.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"lol-encounters/internal/constants"
	"lol-encounters/internal/domain"
	"lol-encounters/internal/events"
	"lol-encounters/internal/gameflow"
	"lol-encounters/internal/lcu"
	"lol-encounters/internal/riot"
	"lol-encounters/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Source interface {
	GameflowPhase(ctx context.Context) (string, error)
	Roster(ctx context.Context, phase gameflow.Phase) (*lcu.Roster, error)
}

type Detector interface {
	Detect(ctx context.Context, players []domain.RawPlayer) ([]service.LobbyEntry, error)
	ResetSession()
}

type LastMatchRefresher interface {
	Refresh(ctx context.Context) (*service.LastMatch, error)
}

type Importer interface {
	Import(ctx context.Context, opts service.ImportOptions) (*service.ImportResult, error)
}

type Snapshot struct {
	// SessionID changes every time a new live game session starts.
	SessionID string               `json:"sessionId"`
	Status    gameflow.Status      `json:"status"`
	Lobby     []service.LobbyEntry `json:"lobby"`
	LastMatch *service.LastMatch   `json:"lastMatch,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type Monitor struct {
	source    Source
	detector  Detector
	lastMatch LastMatchRefresher
	importer  Importer
	publisher events.Publisher
	interval  time.Duration
	logger    zerolog.Logger

	mu          sync.RWMutex
	snapshot    Snapshot
	phase       gameflow.Phase
	fingerprint string
	// postGame is set when a live game ends and cleared once its history work has run.
	postGame bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, source Source, detector Detector, lastMatch LastMatchRefresher, importer Importer, publisher events.Publisher, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Monitor{
		source:    source,
		detector:  detector,
		lastMatch: lastMatch,
		importer:  importer,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With().Str("component", "monitor").Logger(),
		snapshot: Snapshot{
			Status: gameflow.Classify(gameflow.PhaseNone, false, 0),
			Lobby:  []service.LobbyEntry{},
		},
	}
}

func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(ctx, m.done)
	m.logger.Info().Dur("interval", m.interval).Msg("gameflow monitor started")
}

// Stop cancels the running cycle and waits for it to return.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info().Msg("gameflow monitor stopped")
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cycle(ctx)
		}
	}
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.Lobby = append([]service.LobbyEntry{}, m.snapshot.Lobby...)
	return s
}

// Cycle runs one poll to completion. Cycles never overlap: the loop only starts the next one
// after this returns.
func (m *Monitor) Cycle(ctx context.Context) {
	phase := m.readPhase(ctx)

	var roster *lcu.Roster
	if phase != gameflow.PhaseUnreachable && phase != gameflow.PhaseNone {
		clientCtx, cancel := context.WithTimeout(ctx, constants.GameClientTimeout)
		r, err := m.source.Roster(clientCtx, phase)
		cancel()
		if err != nil {
			m.logger.Debug().Err(err).Str("phase", phase.String()).Msg("failed to read roster")
		} else {
			roster = r
		}
	}

	queueID, anonymized := 0, false
	if roster != nil {
		queueID, anonymized = roster.QueueID, roster.Anonymized
	}
	status := gameflow.Classify(phase, anonymized, queueID)

	m.mu.Lock()
	prev := m.phase
	m.phase = phase
	changed := status != m.snapshot.Status
	m.snapshot.Status = status
	if !prev.IsLive() && phase.IsLive() {
		m.snapshot.SessionID = uuid.NewString()
	}
	if phase == gameflow.PhaseNone || phase == gameflow.PhaseUnreachable {
		m.snapshot.Lobby = []service.LobbyEntry{}
		m.fingerprint = ""
	}
	m.snapshot.UpdatedAt = time.Now()
	m.mu.Unlock()

	if changed {
		m.logger.Info().Str("phase", status.PhaseName).Str("message", status.Message).Msg("gameflow status changed")
		m.publish(ctx, events.TopicStatus, status)
	}

	if status.Enrich && roster != nil && len(roster.Players) > 0 {
		m.enrich(ctx, roster)
	}

	if gameflow.GameEnded(prev, phase) {
		m.endSession()
	}
	if m.postGameDue(phase, status) {
		m.afterGame(ctx)
	}
}

func (m *Monitor) endSession() {
	m.detector.ResetSession()
	m.mu.Lock()
	m.fingerprint = ""
	m.postGame = true
	m.mu.Unlock()
}

// postGameDue holds the post-game work until the client reaches EndOfGame, when the finished
// match is in its history. Leaving the post-game phases without reaching it runs the work anyway.
func (m *Monitor) postGameDue(phase gameflow.Phase, status gameflow.Status) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.postGame || (phase != gameflow.PhaseEndOfGame && status.Reimport) {
		return false
	}
	m.postGame = false
	return true
}

func (m *Monitor) readPhase(ctx context.Context) gameflow.Phase {
	clientCtx, cancel := context.WithTimeout(ctx, constants.GameClientTimeout)
	defer cancel()

	raw, err := m.source.GameflowPhase(clientCtx)
	if err != nil {
		if !errors.Is(err, lcu.ErrClientUnavailable) {
			m.logger.Warn().Err(err).Msg("failed to read gameflow phase")
		}
		return gameflow.PhaseUnreachable
	}
	return gameflow.ParsePhase(raw)
}

// Fingerprint identifies a roster by its players and their picks, so enrichment reruns only
// when someone joins, leaves, reveals their name or changes champion.
func Fingerprint(r *lcu.Roster) string {
	parts := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		name, _ := p.ResolveDisplayName()
		parts = append(parts, strings.Join([]string{
			p.Puuid,
			strconv.Itoa(p.CellID),
			name,
			strconv.Itoa(p.ChampionID),
			strconv.Itoa(p.Team),
		}, "|"))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s/%d/%t/%s", r.Source, r.QueueID, r.Anonymized, strings.Join(parts, ";"))
}

func (m *Monitor) enrich(ctx context.Context, roster *lcu.Roster) {
	fp := Fingerprint(roster)
	m.mu.RLock()
	same := fp == m.fingerprint
	m.mu.RUnlock()
	if same {
		return
	}

	entries, err := m.detector.Detect(ctx, roster.Players)
	if err != nil {
		if errors.Is(err, service.ErrNoConfiguredUser) {
			m.logger.Debug().Msg("skipping lobby detection, no configured user")
		} else {
			m.logger.Warn().Err(err).Msg("lobby detection failed")
		}
		return
	}

	m.mu.Lock()
	m.fingerprint = fp
	m.snapshot.Lobby = entries
	m.mu.Unlock()

	m.logger.Info().Str("source", roster.Source).Int("players", len(entries)).Msg("lobby updated")
	m.publish(ctx, events.TopicLobby, entries)
}

// afterGame refreshes the last-match roster and imports new history side by side. Both finish
// before the next cycle starts.
func (m *Monitor) afterGame(ctx context.Context) {
	var g errgroup.Group
	var refreshErr, importErr error

	g.Go(func() error {
		last, err := m.lastMatch.Refresh(ctx)
		if err != nil {
			refreshErr = err
			return err
		}
		m.mu.Lock()
		m.snapshot.LastMatch = last
		m.mu.Unlock()
		m.publish(ctx, events.TopicLastMatch, last)
		return nil
	})

	g.Go(func() error {
		importCtx, cancel := context.WithTimeout(ctx, constants.ImportTimeout)
		defer cancel()
		res, err := m.importer.Import(importCtx, service.ImportOptions{})
		if err != nil {
			importErr = err
			return err
		}
		m.logger.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Msg("post-game import finished")
		return nil
	})

	if err := g.Wait(); err == nil {
		return
	}
	if refreshErr != nil {
		m.logger.Warn().Err(refreshErr).Msg("failed to refresh last match")
	}
	switch {
	case importErr == nil:
	case errors.Is(importErr, service.ErrImportRunning),
		errors.Is(importErr, service.ErrNoConfiguredUser),
		errors.Is(importErr, riot.ErrNoAPIKey):
		m.logger.Debug().Err(importErr).Msg("post-game import skipped")
	default:
		m.logger.Warn().Err(importErr).Msg("post-game import failed")
	}
}

func (m *Monitor) publish(ctx context.Context, topic string, payload any) {
	if err := m.publisher.Publish(ctx, topic, payload); err != nil {
		m.logger.Debug().Err(err).Str("topic", topic).Msg("failed to publish event")
	}
}
