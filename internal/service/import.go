package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lol-encounters/internal/config"
	"lol-encounters/internal/constants"
	"lol-encounters/internal/domain"
	"lol-encounters/internal/events"
	"lol-encounters/internal/riot"

	"github.com/rs/zerolog"
)

type ImportOptions struct {
	// Count is how many of the most recent match ids to consider. Zero uses the configured default.
	Count int
	// MaxRetries bounds rate-limit retries per match; zero retries until cancelled.
	MaxRetries int
	// ShouldCancel is consulted between units of work.
	ShouldCancel func() bool
	OnProgress   func(ImportProgress)
}

type ImportProgress struct {
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	MatchID string `json:"matchId"`
	Stored  bool   `json:"stored"`
}

type ImportResult struct {
	Requested int  `json:"requested"`
	Imported  int  `json:"imported"`
	Skipped   int  `json:"skipped"`
	Cancelled bool `json:"cancelled"`
}

// ImportService pulls the configured user's match history from the vendor API into the
// corpus, one request at a time.
type ImportService struct {
	users     UserStore
	matches   MatchStore
	vendor    VendorClient
	publisher events.Publisher
	count     int
	logger    zerolog.Logger

	running sync.Mutex
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewImportService(cfg *config.Config, users UserStore, matches MatchStore, vendor VendorClient, publisher events.Publisher, logger zerolog.Logger) *ImportService {
	return &ImportService{
		users:     users,
		matches:   matches,
		vendor:    vendor,
		publisher: publisher,
		count:     cfg.ImportMatchCount,
		logger:    logger.With().Str("component", "import").Logger(),
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Import stores every listed match that is not in the corpus yet. Matches committed before a
// failure stay committed.
func (s *ImportService) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	if !s.running.TryLock() {
		return nil, ErrImportRunning
	}
	defer s.running.Unlock()

	user, err := s.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoConfiguredUser
	}
	if user.APIKey != "" {
		s.vendor.SetAPIKey(user.APIKey)
	}
	if !s.vendor.HasAPIKey() {
		return nil, riot.ErrNoAPIKey
	}

	count := opts.Count
	if count <= 0 {
		count = s.count
	}
	result := &ImportResult{}
	cancelled := func() bool {
		if ctx.Err() != nil || (opts.ShouldCancel != nil && opts.ShouldCancel()) {
			result.Cancelled = true
			return true
		}
		return false
	}

	ids, err := s.listIDs(ctx, user.Region, user.Puuid, count, opts, cancelled)
	if err != nil {
		if result.Cancelled || cancelled() {
			s.logger.Info().Str("puuid", user.Puuid).Msg("import cancelled while listing matches")
			return result, nil
		}
		return result, err
	}
	result.Requested = len(ids)
	s.logger.Info().Str("puuid", user.Puuid).Int("match_count", len(ids)).Msg("import started")

	for i, id := range ids {
		if cancelled() {
			break
		}

		stored, err := s.importOne(ctx, user.Region, id, opts, cancelled)
		if err != nil {
			if result.Cancelled {
				break
			}
			s.logger.Error().Err(err).Str("match_id", id).Msg("import failed")
			return result, fmt.Errorf("failed to import match %s: %w", id, err)
		}
		if stored {
			result.Imported++
		} else {
			result.Skipped++
		}

		progress := ImportProgress{Done: i + 1, Total: len(ids), MatchID: id, Stored: stored}
		if opts.OnProgress != nil {
			opts.OnProgress(progress)
		}
		if err := s.publisher.Publish(ctx, events.TopicImportProgress, progress); err != nil {
			s.logger.Debug().Err(err).Msg("failed to publish import progress")
		}
	}

	s.logger.Info().
		Int("requested", result.Requested).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Bool("cancelled", result.Cancelled).
		Msg("import finished")
	return result, nil
}

func (s *ImportService) listIDs(ctx context.Context, region, puuid string, count int, opts ImportOptions, cancelled func() bool) ([]string, error) {
	var ids []string
	for start := 0; start < count; start += constants.VendorMatchPageSize {
		size := min(constants.VendorMatchPageSize, count-start)
		var page []string
		err := s.withBackoff(ctx, opts, cancelled, func() error {
			var err error
			page, err = s.vendor.MatchIDsByPUUID(ctx, region, puuid, start, size)
			return err
		})
		if err != nil {
			return ids, fmt.Errorf("failed to list match ids: %w", err)
		}
		ids = append(ids, page...)
		if len(page) < size {
			break
		}
	}
	return ids, nil
}

// importOne reports whether the match was newly stored. A copy recorded from the game client is
// fetched again and replaced by the vendor's.
func (s *ImportService) importOne(ctx context.Context, region, matchID string, opts ImportOptions, cancelled func() bool) (bool, error) {
	source, err := s.matches.Source(ctx, matchID)
	if err != nil {
		return false, err
	}
	if source != "" && source != domain.SourceClient {
		return false, nil
	}

	var dto *riot.MatchDTO
	err = s.withBackoff(ctx, opts, cancelled, func() error {
		var err error
		dto, err = s.vendor.Match(ctx, region, matchID)
		return err
	})
	if errors.Is(err, riot.ErrNotFound) {
		s.logger.Warn().Str("match_id", matchID).Msg("match listed but not found, skipping")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	match, participants := dto.ToDomain()
	if match.MatchID == "" {
		match.MatchID = matchID
	}
	if source == domain.SourceClient {
		if err := s.matches.Replace(ctx, match, participants); err != nil {
			return false, err
		}
		s.logger.Debug().Str("match_id", matchID).Msg("client copy replaced by vendor match")
		return true, nil
	}
	return s.matches.Insert(ctx, match, participants)
}

// withBackoff retries fn on rate limiting. The wait grows exponentially up to the cap, and a
// longer Retry-After from the vendor wins up to ImportMaxRetryAfter.
func (s *ImportService) withBackoff(ctx context.Context, opts ImportOptions, cancelled func() bool, fn func() error) error {
	backoff := constants.ImportInitialBackoff
	for attempt := 0; ; attempt++ {
		err := fn()
		var rl *riot.RateLimitError
		if !errors.As(err, &rl) {
			return err
		}
		if opts.MaxRetries > 0 && attempt >= opts.MaxRetries {
			return err
		}

		wait := min(max(backoff, rl.RetryAfter), constants.ImportMaxRetryAfter)
		s.logger.Debug().Dur("wait", wait).Int("attempt", attempt+1).Msg("rate limited, backing off")
		if err := s.sleep(ctx, wait); err != nil {
			cancelled()
			return err
		}
		if cancelled() {
			return context.Canceled
		}
		backoff = min(backoff*2, constants.ImportMaxBackoff)
	}
}
