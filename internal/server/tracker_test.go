package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/gameflow"
	"lol-encounters/internal/lcu"
	"lol-encounters/internal/middleware"
	"lol-encounters/internal/monitor"
	"lol-encounters/internal/riot"
	"lol-encounters/internal/service"
)

type fakeState struct{ snap monitor.Snapshot }

func (f fakeState) Snapshot() monitor.Snapshot { return f.snap }

type fakeEncounters struct {
	summary *domain.EncounterSummary
	got     domain.TargetPlayer
}

func (f *fakeEncounters) Summary(_ context.Context, target domain.TargetPlayer) (*domain.EncounterSummary, error) {
	f.got = target
	return f.summary, nil
}

type fakeSettings struct {
	saved *service.Settings
	err   error
}

func (f *fakeSettings) Get(context.Context) (*service.Settings, error) { return f.saved, nil }

func (f *fakeSettings) Save(_ context.Context, in service.SettingsInput) (*service.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = &service.Settings{Puuid: in.Puuid, DisplayName: in.RiotID, Region: in.Region}
	return f.saved, nil
}

type fakeImports struct {
	err  error
	opts service.ImportOptions
}

func (f *fakeImports) Import(_ context.Context, opts service.ImportOptions) (*service.ImportResult, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &service.ImportResult{Requested: 3, Imported: 2, Skipped: 1}, nil
}

type fakeTags struct {
	tags map[string][]domain.PlayerTag
}

func (f *fakeTags) Upsert(_ context.Context, puuid, category, note string) (*domain.PlayerTag, error) {
	cat, err := domain.ParseTagCategory(category)
	if err != nil {
		return nil, err
	}
	tag := domain.PlayerTag{ID: "t1", Puuid: puuid, Category: cat, Note: note}
	f.tags[puuid] = append(f.tags[puuid], tag)
	return &tag, nil
}

func (f *fakeTags) Delete(_ context.Context, puuid, category string) (bool, error) {
	n := len(f.tags[puuid])
	delete(f.tags, puuid)
	return n > 0, nil
}

func (f *fakeTags) List(_ context.Context, puuid string) ([]domain.PlayerTag, error) {
	return append([]domain.PlayerTag{}, f.tags[puuid]...), nil
}

type fakeLastMatch struct{ err error }

func (f fakeLastMatch) Refresh(context.Context) (*service.LastMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.LastMatch{MatchID: "EUW1_42", Players: []service.LastMatchPlayer{}}, nil
}

type harness struct {
	url        string
	encounters *fakeEncounters
	settings   *fakeSettings
	imports    *fakeImports
	tags       *fakeTags
}

func newHarness(t *testing.T, last fakeLastMatch) *harness {
	h := &harness{
		encounters: &fakeEncounters{},
		settings:   &fakeSettings{},
		imports:    &fakeImports{},
		tags:       &fakeTags{tags: map[string][]domain.PlayerTag{}},
	}
	srv := &TrackerServer{
		state: fakeState{snap: monitor.Snapshot{
			SessionID: "s-1",
			Status:    gameflow.Classify(gameflow.PhaseChampSelect, false, 420),
			Lobby:     []service.LobbyEntry{{Key: "P2", Puuid: "P2"}},
			LastMatch: &service.LastMatch{MatchID: "EUW1_41"},
		}},
		encounters: h.encounters,
		settings:   h.settings,
		imports:    h.imports,
		tags:       h.tags,
		lastMatch:  last,
	}

	path, handler := NewTrackerHandler(srv)
	mux := http.NewServeMux()
	mux.Handle(path, middleware.Chain(handler, middleware.RequestID(zerolog.Nop()), middleware.CORS()))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	h.url = ts.URL
	return h
}

func call[Req, Res any](t *testing.T, h *harness, procedure string, req *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](http.DefaultClient, h.url+procedure, connect.WithCodec(JSONCodec{}))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestGetStatusAndLobby(t *testing.T) {
	h := newHarness(t, fakeLastMatch{})

	status, err := call[GetStatusRequest, StatusResponse](t, h, ProcedureGetStatus, &GetStatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, "s-1", status.SessionID)
	assert.Equal(t, "ChampSelect", status.Status.PhaseName)
	assert.True(t, status.Status.Enrich)

	lobby, err := call[GetLobbyRequest, LobbyResponse](t, h, ProcedureGetLobby, &GetLobbyRequest{})
	require.NoError(t, err)
	require.Len(t, lobby.Entries, 1)
	assert.Equal(t, "P2", lobby.Entries[0].Puuid)
}

func TestGetLastMatch(t *testing.T) {
	h := newHarness(t, fakeLastMatch{})

	cached, err := call[GetLastMatchRequest, LastMatchResponse](t, h, ProcedureGetLastMatch, &GetLastMatchRequest{})
	require.NoError(t, err)
	assert.Equal(t, "EUW1_41", cached.Match.MatchID)

	fresh, err := call[GetLastMatchRequest, LastMatchResponse](t, h, ProcedureGetLastMatch, &GetLastMatchRequest{Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, "EUW1_42", fresh.Match.MatchID)

	h = newHarness(t, fakeLastMatch{err: lcu.ErrClientUnavailable})
	_, err = call[GetLastMatchRequest, LastMatchResponse](t, h, ProcedureGetLastMatch, &GetLastMatchRequest{Refresh: true})
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
}

func TestGetEncounterSummary(t *testing.T) {
	h := newHarness(t, fakeLastMatch{})

	_, err := call[GetEncounterSummaryRequest, EncounterSummaryResponse](t, h, ProcedureGetEncounterSummary, &GetEncounterSummaryRequest{})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	resp, err := call[GetEncounterSummaryRequest, EncounterSummaryResponse](t, h, ProcedureGetEncounterSummary, &GetEncounterSummaryRequest{Puuid: "P2"})
	require.NoError(t, err)
	assert.False(t, resp.Configured)
	assert.Nil(t, resp.Summary)

	h.encounters.summary = &domain.EncounterSummary{Puuid: "P2", TotalGames: 4, ThreatLevel: domain.ThreatHigh}
	h.tags.tags["P2"] = []domain.PlayerTag{{ID: "t1", Puuid: "P2", Category: domain.TagToxic}}
	resp, err = call[GetEncounterSummaryRequest, EncounterSummaryResponse](t, h, ProcedureGetEncounterSummary, &GetEncounterSummaryRequest{Puuid: " P2 ", DisplayName: "Two#EUW"})
	require.NoError(t, err)
	assert.True(t, resp.Configured)
	assert.Equal(t, 4, resp.Summary.TotalGames)
	assert.Equal(t, domain.ThreatHigh, resp.Summary.ThreatLevel)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, domain.TargetPlayer{Puuid: "P2", DisplayName: "Two#EUW"}, h.encounters.got)
}

func TestSettings(t *testing.T) {
	h := newHarness(t, fakeLastMatch{})

	got, err := call[GetSettingsRequest, SettingsResponse](t, h, ProcedureGetSettings, &GetSettingsRequest{})
	require.NoError(t, err)
	assert.Nil(t, got.Settings)

	saved, err := call[service.SettingsInput, SettingsResponse](t, h, ProcedureSaveSettings, &service.SettingsInput{RiotID: "Me#EUW", Region: "euw1", Puuid: "U1"})
	require.NoError(t, err)
	assert.Equal(t, "U1", saved.Settings.Puuid)

	h.settings.err = service.ErrInvalidSettings
	_, err = call[service.SettingsInput, SettingsResponse](t, h, ProcedureSaveSettings, &service.SettingsInput{})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestImportHistory(t *testing.T) {
	h := newHarness(t, fakeLastMatch{})

	res, err := call[ImportHistoryRequest, service.ImportResult](t, h, ProcedureImportHistory, &ImportHistoryRequest{Count: 3})
	require.NoError(t, err)
	assert.Equal(t, service.ImportResult{Requested: 3, Imported: 2, Skipped: 1}, *res)
	assert.Equal(t, 3, h.imports.opts.Count)

	h.imports.err = service.ErrImportRunning
	_, err = call[ImportHistoryRequest, service.ImportResult](t, h, ProcedureImportHistory, &ImportHistoryRequest{})
	assert.Equal(t, connect.CodeAborted, connect.CodeOf(err))

	h.imports.err = &riot.RateLimitError{RetryAfter: time.Second}
	_, err = call[ImportHistoryRequest, service.ImportResult](t, h, ProcedureImportHistory, &ImportHistoryRequest{})
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
}

func TestTags(t *testing.T) {
	h := newHarness(t, fakeLastMatch{})

	tag, err := call[UpsertTagRequest, TagResponse](t, h, ProcedureUpsertTag, &UpsertTagRequest{Puuid: "P2", Category: "duo", Note: "good jungler"})
	require.NoError(t, err)
	assert.Equal(t, domain.TagDuo, tag.Tag.Category)

	_, err = call[UpsertTagRequest, TagResponse](t, h, ProcedureUpsertTag, &UpsertTagRequest{Puuid: "P2", Category: "salty"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	list, err := call[ListTagsRequest, ListTagsResponse](t, h, ProcedureListTags, &ListTagsRequest{Puuid: "P2"})
	require.NoError(t, err)
	assert.Len(t, list.Tags, 1)

	del, err := call[DeleteTagRequest, DeleteTagResponse](t, h, ProcedureDeleteTag, &DeleteTagRequest{Puuid: "P2", Category: "duo"})
	require.NoError(t, err)
	assert.True(t, del.Deleted)
}

func TestPlainJSONRequest(t *testing.T) {
	h := newHarness(t, fakeLastMatch{})

	resp, err := http.Post(h.url+ProcedureGetStatus, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestToConnectError(t *testing.T) {
	ctx := context.Background()
	cases := map[error]connect.Code{
		service.ErrNoConfiguredUser:  connect.CodeFailedPrecondition,
		riot.ErrNoAPIKey:             connect.CodeFailedPrecondition,
		service.ErrUnresolvedUser:    connect.CodeNotFound,
		riot.ErrUnauthorized:         connect.CodeUnauthenticated,
		domain.ErrInvalidTagCategory: connect.CodeInvalidArgument,
		context.DeadlineExceeded:     connect.CodeDeadlineExceeded,
		errors.New("disk I/O error"): connect.CodeInternal,
		lcu.ErrClientUnavailable:     connect.CodeUnavailable,
	}
	for err, want := range cases {
		assert.Equal(t, want, connect.CodeOf(toConnectError(ctx, err)), err.Error())
	}
}
