package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lol-encounters/internal/config"
	"lol-encounters/internal/constants"
	"lol-encounters/internal/domain"
	"lol-encounters/internal/events"
	"lol-encounters/internal/riot"
)

func matchDTO(id string) *riot.MatchDTO {
	return &riot.MatchDTO{
		Metadata: riot.MetadataDTO{MatchID: id},
		Info: riot.InfoDTO{
			GameCreation: testNow.Add(-time.Hour).UnixMilli(),
			GameDuration: 1800,
			QueueID:      420,
			Participants: []riot.ParticipantDTO{
				{Puuid: "U1", RiotIDGameName: "Me", RiotIDTagline: "EUW", TeamID: 100, Win: true},
				{Puuid: "P2", RiotIDGameName: "Two", RiotIDTagline: "EUW", TeamID: 200},
			},
		},
	}
}

type importFixture struct {
	svc     *ImportService
	users   *fakeUsers
	matches *fakeMatches
	vendor  *fakeVendor
	waits   []time.Duration
}

func newImportFixture(ids ...string) *importFixture {
	f := &importFixture{
		users:   &fakeUsers{user: configuredUser()},
		matches: newFakeMatches(),
		vendor: &fakeVendor{
			ids:       ids,
			matches:   map[string]*riot.MatchDTO{},
			throttles: map[string][]time.Duration{},
		},
	}
	for _, id := range ids {
		f.vendor.matches[id] = matchDTO(id)
	}
	f.svc = NewImportService(&config.Config{ImportMatchCount: 20}, f.users, f.matches, f.vendor, events.Noop{}, zerolog.Nop())
	f.svc.sleep = func(_ context.Context, d time.Duration) error {
		f.waits = append(f.waits, d)
		return nil
	}
	return f
}

func TestImportStoresNewMatches(t *testing.T) {
	f := newImportFixture("EUW1_1", "EUW1_2", "EUW1_3")
	f.matches.stored["EUW1_2"] = domain.SourceVendor

	var progress []ImportProgress
	res, err := f.svc.Import(context.Background(), ImportOptions{
		OnProgress: func(p ImportProgress) { progress = append(progress, p) },
	})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Requested: 3, Imported: 2, Skipped: 1}, res)
	assert.Equal(t, []string{"EUW1_1", "EUW1_3"}, f.matches.inserted)
	assert.Equal(t, []string{"EUW1_1", "EUW1_3"}, f.vendor.calls, "stored ids are not fetched")
	require.Len(t, progress, 3)
	assert.Equal(t, 3, progress[2].Done)
	assert.Equal(t, 3, progress[2].Total)
	assert.Equal(t, "RGAPI-test", f.vendor.apiKey)
}

func TestImportSkipsMissingMatches(t *testing.T) {
	f := newImportFixture("EUW1_1", "EUW1_2")
	delete(f.vendor.matches, "EUW1_1")

	res, err := f.svc.Import(context.Background(), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
}

func TestImportBacksOffOnRateLimit(t *testing.T) {
	f := newImportFixture("EUW1_1")
	f.vendor.throttles["EUW1_1"] = []time.Duration{0, 0, 3 * time.Second, 0, 0}

	res, err := f.svc.Import(context.Background(), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		time.Second,
		3 * time.Second,
		4 * time.Second,
		4 * time.Second,
	}, f.waits)
	assert.Len(t, f.vendor.calls, 6, "the same id is retried")
}

func TestImportMaxRetries(t *testing.T) {
	f := newImportFixture("EUW1_1", "EUW1_2")
	f.vendor.throttles["EUW1_2"] = []time.Duration{0, 0, 0}

	res, err := f.svc.Import(context.Background(), ImportOptions{MaxRetries: 2})
	var rl *riot.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 1, res.Imported, "committed matches survive the failure")
	assert.Equal(t, []string{"EUW1_1"}, f.matches.inserted)
}

func TestImportCancellation(t *testing.T) {
	f := newImportFixture("EUW1_1", "EUW1_2", "EUW1_3")

	done := 0
	res, err := f.svc.Import(context.Background(), ImportOptions{
		OnProgress:   func(ImportProgress) { done++ },
		ShouldCancel: func() bool { return done >= 1 },
	})
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, []string{"EUW1_1"}, f.matches.inserted)
}

func TestImportCancelledContext(t *testing.T) {
	f := newImportFixture("EUW1_1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.svc.Import(ctx, ImportOptions{})
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Empty(t, f.matches.inserted)
}

func TestImportPreconditions(t *testing.T) {
	t.Run("no configured user", func(t *testing.T) {
		f := newImportFixture()
		f.users.user = nil
		_, err := f.svc.Import(context.Background(), ImportOptions{})
		assert.ErrorIs(t, err, ErrNoConfiguredUser)
	})

	t.Run("no api key", func(t *testing.T) {
		f := newImportFixture()
		f.users.user.APIKey = ""
		_, err := f.svc.Import(context.Background(), ImportOptions{})
		assert.ErrorIs(t, err, riot.ErrNoAPIKey)
	})

	t.Run("already running", func(t *testing.T) {
		f := newImportFixture()
		f.svc.running.Lock()
		defer f.svc.running.Unlock()
		_, err := f.svc.Import(context.Background(), ImportOptions{})
		assert.ErrorIs(t, err, ErrImportRunning)
	})
}

func TestImportPagesMatchIDs(t *testing.T) {
	ids := make([]string, 150)
	for i := range ids {
		ids[i] = "EUW1_" + string(rune('A'+i%26)) + string(rune('a'+i/26))
	}
	f := newImportFixture(ids...)

	res, err := f.svc.Import(context.Background(), ImportOptions{Count: 150})
	require.NoError(t, err)
	assert.Equal(t, 150, res.Requested)
	assert.Equal(t, 150, res.Imported)
}

func TestImportReplacesClientCopies(t *testing.T) {
	f := newImportFixture("EUW1_1", "EUW1_2")
	f.matches.stored["EUW1_1"] = domain.SourceClient
	f.matches.stored["EUW1_2"] = domain.SourceVendor

	res, err := f.svc.Import(context.Background(), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Requested: 2, Imported: 1, Skipped: 1}, res)
	assert.Equal(t, []string{"EUW1_1"}, f.vendor.calls, "vendor copies are not fetched again")
	assert.Equal(t, []string{"EUW1_1"}, f.matches.replaced)
	assert.Empty(t, f.matches.inserted)
	assert.Equal(t, domain.SourceVendor, f.matches.stored["EUW1_1"])
}

func TestImportCapsRetryAfter(t *testing.T) {
	f := newImportFixture("EUW1_1")
	f.vendor.throttles["EUW1_1"] = []time.Duration{time.Hour}

	res, err := f.svc.Import(context.Background(), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, []time.Duration{constants.ImportMaxRetryAfter}, f.waits)
}

func TestImportCancelledWhileListing(t *testing.T) {
	f := newImportFixture("EUW1_1")
	f.vendor.listThrottles = []time.Duration{0, 0}

	res, err := f.svc.Import(context.Background(), ImportOptions{
		ShouldCancel: func() bool { return len(f.waits) > 0 },
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Cancelled)
	assert.Zero(t, res.Requested)
	assert.Empty(t, f.vendor.calls)
}

func TestImportListingFailsWithoutCancel(t *testing.T) {
	f := newImportFixture("EUW1_1")
	f.vendor.listThrottles = []time.Duration{0, 0}

	res, err := f.svc.Import(context.Background(), ImportOptions{MaxRetries: 1})
	var rl *riot.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.False(t, res.Cancelled)
}
