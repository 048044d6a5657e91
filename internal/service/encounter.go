package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lol-encounters/internal/constants"
	"lol-encounters/internal/domain"
	"lol-encounters/internal/encounter"
	"lol-encounters/internal/identity"
	"lol-encounters/internal/repository"

	"github.com/rs/zerolog"
)

type EncounterService struct {
	users   UserStore
	matches MatchStore
	logger  zerolog.Logger
	now     func() time.Time
	// timeout bounds one target's lookups so a slow query cannot stall a whole roster.
	timeout time.Duration
}

func NewEncounterService(users UserStore, matches MatchStore, logger zerolog.Logger) *EncounterService {
	return &EncounterService{
		users:   users,
		matches: matches,
		logger:  logger,
		now:     time.Now,
		timeout: constants.DatabaseTimeout,
	}
}

// Summary computes the encounter summary between the configured user and target. It returns
// nil without an error when no user is configured.
func (s *EncounterService) Summary(ctx context.Context, target domain.TargetPlayer) (*domain.EncounterSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	summary, err := s.SummaryFor(ctx, user, target)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// SummaryFor looks the target up by stable id first and falls back to the normalized name only
// when the id lookup finds no shared match at all. Both lookups read the whole corpus; fresh
// matches are dropped afterwards by encounter.Summarize, so a recent game under the stable id
// still suppresses the name fallback.
func (s *EncounterService) SummaryFor(ctx context.Context, user *domain.ConfiguredUser, target domain.TargetPlayer) (domain.EncounterSummary, error) {
	target.Puuid = strings.TrimSpace(target.Puuid)
	target.DisplayName = strings.TrimSpace(target.DisplayName)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []domain.SharedMatch
	if target.Puuid != "" {
		found, err := s.matches.SharedMatches(ctx, repository.PuuidQuery(user.Puuid, target.Puuid, 0))
		if err != nil {
			return encounter.Empty(target), fmt.Errorf("failed to load shared matches: %w", err)
		}
		rows = found
	}

	if len(rows) == 0 {
		if key := identity.Normalize(target.DisplayName); !key.IsEmpty() {
			found, err := s.matches.SharedMatches(ctx, repository.NameQuery(user.Puuid, key, 0))
			if err != nil {
				return encounter.Empty(target), fmt.Errorf("failed to load shared matches by name: %w", err)
			}
			if len(found) > 0 {
				s.logger.Debug().
					Str("puuid", target.Puuid).
					Str("name", target.DisplayName).
					Int("match_count", len(found)).
					Msg("encounters matched by name")
			}
			rows = found
		}
	}

	return encounter.Summarize(target, rows, s.now()), nil
}
