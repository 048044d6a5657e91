package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/lcu"
	"lol-encounters/internal/repository"
	"lol-encounters/internal/riot"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeUsers struct {
	mu   sync.Mutex
	user *domain.ConfiguredUser
	err  error
}

func (f *fakeUsers) Get(context.Context) (*domain.ConfiguredUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil || f.user == nil {
		return nil, f.err
	}
	u := *f.user
	return &u, nil
}

func (f *fakeUsers) Upsert(_ context.Context, u domain.ConfiguredUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &u
	return f.err
}

type fakeMatches struct {
	mu       sync.Mutex
	byPuuid  map[string][]domain.SharedMatch
	byName   map[string][]domain.SharedMatch
	failFor  map[string]error
	blockFor map[string]bool
	stored   map[string]string // match id to source
	inserted []string
	replaced []string
	queries  []repository.SharedMatchQuery
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{
		byPuuid:  map[string][]domain.SharedMatch{},
		byName:   map[string][]domain.SharedMatch{},
		failFor:  map[string]error{},
		blockFor: map[string]bool{},
		stored:   map[string]string{},
	}
}

func (f *fakeMatches) Insert(_ context.Context, m domain.Match, _ []domain.Participant) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored[m.MatchID] != "" {
		return false, nil
	}
	f.stored[m.MatchID] = m.Source
	f.inserted = append(f.inserted, m.MatchID)
	return true, nil
}

func (f *fakeMatches) Replace(_ context.Context, m domain.Match, _ []domain.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[m.MatchID] = m.Source
	f.replaced = append(f.replaced, m.MatchID)
	return nil
}

func (f *fakeMatches) Source(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored[id], nil
}

// SharedMatches ignores CreatedBefore; freshness is applied by the caller.
func (f *fakeMatches) SharedMatches(ctx context.Context, q repository.SharedMatchQuery) ([]domain.SharedMatch, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	block := q.ByPuuid && f.blockFor[q.TargetPuuid]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if q.ByPuuid {
		if err := f.failFor[q.TargetPuuid]; err != nil {
			return nil, err
		}
		return f.byPuuid[q.TargetPuuid], nil
	}
	return f.byName[q.TargetName.Full], nil
}

type fakeTags struct {
	tags map[string][]domain.PlayerTag
}

func (f *fakeTags) Upsert(_ context.Context, puuid string, c domain.TagCategory, note string) (*domain.PlayerTag, error) {
	if f.tags == nil {
		f.tags = map[string][]domain.PlayerTag{}
	}
	tag := domain.PlayerTag{ID: "t-" + puuid + "-" + string(c), Puuid: puuid, Category: c, Note: note}
	for i, t := range f.tags[puuid] {
		if t.Category == c {
			f.tags[puuid][i] = tag
			return &tag, nil
		}
	}
	f.tags[puuid] = append(f.tags[puuid], tag)
	return &tag, nil
}

func (f *fakeTags) Delete(_ context.Context, puuid string, c domain.TagCategory) (bool, error) {
	for i, t := range f.tags[puuid] {
		if t.Category == c {
			f.tags[puuid] = append(f.tags[puuid][:i], f.tags[puuid][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTags) List(_ context.Context, puuid string) ([]domain.PlayerTag, error) {
	return append([]domain.PlayerTag{}, f.tags[puuid]...), nil
}

func (f *fakeTags) ListAll(context.Context) ([]domain.PlayerTag, error) {
	out := []domain.PlayerTag{}
	for _, tags := range f.tags {
		out = append(out, tags...)
	}
	return out, nil
}

type fakeVendor struct {
	mu        sync.Mutex
	apiKey    string
	ids       []string
	matches   map[string]*riot.MatchDTO
	throttles map[string][]time.Duration
	account   *riot.AccountDTO
	accErr    error
	calls     []string

	// listThrottles rate-limits id listing once per entry.
	listThrottles []time.Duration
}

func (f *fakeVendor) SetAPIKey(key string) { f.apiKey = key }
func (f *fakeVendor) HasAPIKey() bool      { return f.apiKey != "" }

func (f *fakeVendor) AccountByRiotID(context.Context, string, string, string) (*riot.AccountDTO, error) {
	return f.account, f.accErr
}

func (f *fakeVendor) MatchIDsByPUUID(_ context.Context, _, _ string, start, count int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listThrottles) > 0 {
		wait := f.listThrottles[0]
		f.listThrottles = f.listThrottles[1:]
		return nil, &riot.RateLimitError{RetryAfter: wait}
	}
	if start >= len(f.ids) {
		return []string{}, nil
	}
	return f.ids[start:min(len(f.ids), start+count)], nil
}

func (f *fakeVendor) Match(_ context.Context, _, id string) (*riot.MatchDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if waits := f.throttles[id]; len(waits) > 0 {
		f.throttles[id] = waits[1:]
		return nil, &riot.RateLimitError{RetryAfter: waits[0]}
	}
	m, ok := f.matches[id]
	if !ok {
		return nil, riot.ErrNotFound
	}
	return m, nil
}

type fakeGameClient struct {
	me        *lcu.Summoner
	names     map[int64]string
	nameCalls int
	last      *lcu.HistoryGame
	err       error
}

func (f *fakeGameClient) CurrentSummoner(context.Context) (*lcu.Summoner, error) {
	if f.me == nil {
		return nil, lcu.ErrClientUnavailable
	}
	return f.me, nil
}

func (f *fakeGameClient) SummonerName(_ context.Context, id int64) (string, error) {
	f.nameCalls++
	name, ok := f.names[id]
	if !ok {
		return "", lcu.ErrNotFound
	}
	return name, nil
}

func (f *fakeGameClient) LastGame(context.Context) (*lcu.HistoryGame, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.last, nil
}

func configuredUser() *domain.ConfiguredUser {
	return &domain.ConfiguredUser{Puuid: "U1", DisplayName: "Me#EUW", Region: "euw1", APIKey: "RGAPI-test"}
}

// shared builds a stored game between U1 and the target, old enough to pass the freshness cutoff.
func shared(id, targetPuuid, targetName string, sameTeam, localWin bool) domain.SharedMatch {
	targetTeam := 100
	if !sameTeam {
		targetTeam = 200
	}
	return domain.SharedMatch{
		Match:  domain.Match{MatchID: id, CreatedAt: testNow.Add(-2 * time.Hour).UnixMilli(), QueueID: 420},
		Local:  domain.Participant{MatchID: id, Puuid: "U1", TeamID: 100, Win: localWin},
		Target: domain.Participant{MatchID: id, Puuid: targetPuuid, GameName: targetName, TeamID: targetTeam, ChampionName: "Ahri", Kills: 3, Deaths: 2, Assists: 5},
	}
}

func newEncounterService(users UserStore, matches MatchStore) *EncounterService {
	s := NewEncounterService(users, matches, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s
}
