package service

import (
	"context"
	"fmt"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/encounter"
	"lol-encounters/internal/identity"

	"github.com/rs/zerolog"
)

type LastMatchPlayer struct {
	Puuid        string                  `json:"puuid"`
	DisplayName  string                  `json:"displayName"`
	ChampionID   int                     `json:"championId"`
	ChampionName string                  `json:"championName"`
	TeamID       int                     `json:"teamId"`
	Ally         bool                    `json:"ally"`
	Role         string                  `json:"role"`
	Kills        int                     `json:"kills"`
	Deaths       int                     `json:"deaths"`
	Assists      int                     `json:"assists"`
	Win          bool                    `json:"win"`
	Summary      domain.EncounterSummary `json:"summary"`
	Tags         []domain.PlayerTag      `json:"tags"`
}

type LastMatch struct {
	MatchID   string            `json:"matchId"`
	QueueID   int               `json:"queueId"`
	GameMode  string            `json:"gameMode"`
	CreatedAt int64             `json:"createdAt"`
	Duration  int               `json:"duration"`
	Stored    bool              `json:"stored"`
	Players   []LastMatchPlayer `json:"players"`
}

type LastMatchService struct {
	users      UserStore
	matches    MatchStore
	encounters *EncounterService
	tags       TagStore
	client     GameClient
	logger     zerolog.Logger
}

func NewLastMatchService(users UserStore, matches MatchStore, encounters *EncounterService, tags TagStore, client GameClient, logger zerolog.Logger) *LastMatchService {
	return &LastMatchService{
		users:      users,
		matches:    matches,
		encounters: encounters,
		tags:       tags,
		client:     client,
		logger:     logger.With().Str("component", "last_match").Logger(),
	}
}

// Refresh stores the most recent game from the game client and returns everyone else in it.
// Summaries skip games newer than the freshness cutoff, so the game just stored never counts
// towards them.
func (s *LastMatchService) Refresh(ctx context.Context) (*LastMatch, error) {
	user, err := s.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoConfiguredUser
	}

	game, err := s.client.LastGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load last game: %w", err)
	}
	match, participants := game.ToDomain()

	stored, err := s.matches.Insert(ctx, match, participants)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("match_id", match.MatchID).Bool("stored", stored).Msg("last match refreshed")

	self := identity.NewMatcher(user.Puuid, user.DisplayName)
	localTeam := 0
	for _, p := range participants {
		if self.IsConfiguredUser(identity.Candidate{Puuid: p.Puuid, DisplayName: p.DisplayName()}) {
			localTeam = p.TeamID
			break
		}
	}

	out := &LastMatch{
		MatchID:   match.MatchID,
		QueueID:   match.QueueID,
		GameMode:  match.GameMode,
		CreatedAt: match.CreatedAt,
		Duration:  match.Duration,
		Stored:    stored,
		Players:   []LastMatchPlayer{},
	}
	for _, p := range participants {
		if self.IsConfiguredUser(identity.Candidate{Puuid: p.Puuid, DisplayName: p.DisplayName()}) {
			continue
		}

		player := LastMatchPlayer{
			Puuid:        p.Puuid,
			DisplayName:  p.DisplayName(),
			ChampionID:   p.ChampionID,
			ChampionName: p.ChampionName,
			TeamID:       p.TeamID,
			Ally:         localTeam != 0 && p.TeamID == localTeam,
			Role:         encounter.NormalizeRole(p.Role),
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			Win:          p.Win,
			Tags:         []domain.PlayerTag{},
		}

		target := domain.TargetPlayer{Puuid: p.Puuid, DisplayName: player.DisplayName}
		summary, err := s.encounters.SummaryFor(ctx, user, target)
		if err != nil {
			s.logger.Warn().Err(err).Str("puuid", p.Puuid).Msg("encounter lookup failed")
			summary = encounter.Empty(target)
		}
		player.Summary = summary

		if p.Puuid != "" {
			if tags, err := s.tags.List(ctx, p.Puuid); err != nil {
				s.logger.Warn().Err(err).Str("puuid", p.Puuid).Msg("tag lookup failed")
			} else {
				player.Tags = tags
			}
		}
		out.Players = append(out.Players, player)
	}
	return out, nil
}
