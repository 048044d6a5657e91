package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"lol-encounters/internal/constants"
	"lol-encounters/internal/domain"
	"lol-encounters/internal/lcu"
	"lol-encounters/internal/monitor"
	"lol-encounters/internal/riot"
	"lol-encounters/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type StateSource interface {
	Snapshot() monitor.Snapshot
}

type EncounterReader interface {
	Summary(ctx context.Context, target domain.TargetPlayer) (*domain.EncounterSummary, error)
}

type SettingsManager interface {
	Get(ctx context.Context) (*service.Settings, error)
	Save(ctx context.Context, in service.SettingsInput) (*service.Settings, error)
}

type HistoryImporter interface {
	Import(ctx context.Context, opts service.ImportOptions) (*service.ImportResult, error)
}

type TagManager interface {
	Upsert(ctx context.Context, puuid, category, note string) (*domain.PlayerTag, error)
	Delete(ctx context.Context, puuid, category string) (bool, error)
	List(ctx context.Context, puuid string) ([]domain.PlayerTag, error)
}

type LastMatchRefresher interface {
	Refresh(ctx context.Context) (*service.LastMatch, error)
}

type TrackerServer struct {
	state      StateSource
	encounters EncounterReader
	settings   SettingsManager
	imports    HistoryImporter
	tags       TagManager
	lastMatch  LastMatchRefresher
}

func NewTrackerServer(
	mon *monitor.Monitor,
	encounters *service.EncounterService,
	settings *service.SettingsService,
	imports *service.ImportService,
	tags *service.TagService,
	lastMatch *service.LastMatchService,
) *TrackerServer {
	return &TrackerServer{
		state:      mon,
		encounters: encounters,
		settings:   settings,
		imports:    imports,
		tags:       tags,
		lastMatch:  lastMatch,
	}
}

func (s *TrackerServer) GetStatus(ctx context.Context, req *connect.Request[GetStatusRequest]) (*connect.Response[StatusResponse], error) {
	snap := s.state.Snapshot()
	return connect.NewResponse(&StatusResponse{
		SessionID: snap.SessionID,
		Status:    snap.Status,
		UpdatedAt: snap.UpdatedAt,
	}), nil
}

func (s *TrackerServer) GetLobby(ctx context.Context, req *connect.Request[GetLobbyRequest]) (*connect.Response[LobbyResponse], error) {
	snap := s.state.Snapshot()
	return connect.NewResponse(&LobbyResponse{SessionID: snap.SessionID, Entries: snap.Lobby}), nil
}

func (s *TrackerServer) GetLastMatch(ctx context.Context, req *connect.Request[GetLastMatchRequest]) (*connect.Response[LastMatchResponse], error) {
	if !req.Msg.Refresh {
		return connect.NewResponse(&LastMatchResponse{Match: s.state.Snapshot().LastMatch}), nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	match, err := s.lastMatch.Refresh(ctx)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&LastMatchResponse{Match: match}), nil
}

func (s *TrackerServer) GetEncounterSummary(ctx context.Context, req *connect.Request[GetEncounterSummaryRequest]) (*connect.Response[EncounterSummaryResponse], error) {
	target := domain.TargetPlayer{
		Puuid:       strings.TrimSpace(req.Msg.Puuid),
		DisplayName: strings.TrimSpace(req.Msg.DisplayName),
	}
	if target.Puuid == "" && target.DisplayName == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("puuid or displayName is required"))
	}

	summary, err := s.encounters.Summary(ctx, target)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	resp := &EncounterSummaryResponse{Configured: summary != nil, Summary: summary, Tags: []domain.PlayerTag{}}
	if target.Puuid != "" {
		tags, err := s.tags.List(ctx, target.Puuid)
		if err != nil {
			return nil, toConnectError(ctx, err)
		}
		resp.Tags = tags
	}
	return connect.NewResponse(resp), nil
}

func (s *TrackerServer) GetSettings(ctx context.Context, req *connect.Request[GetSettingsRequest]) (*connect.Response[SettingsResponse], error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&SettingsResponse{Settings: settings}), nil
}

func (s *TrackerServer) SaveSettings(ctx context.Context, req *connect.Request[service.SettingsInput]) (*connect.Response[SettingsResponse], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	settings, err := s.settings.Save(ctx, *req.Msg)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	zerolog.Ctx(ctx).Info().Str("puuid", settings.Puuid).Str("region", settings.Region).Msg("settings saved")
	return connect.NewResponse(&SettingsResponse{Settings: settings}), nil
}

func (s *TrackerServer) ImportHistory(ctx context.Context, req *connect.Request[ImportHistoryRequest]) (*connect.Response[service.ImportResult], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ImportTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.imports.Import(ctx, service.ImportOptions{Count: req.Msg.Count})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	zerolog.Ctx(ctx).Info().
		Int("imported", res.Imported).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("history import finished")
	return connect.NewResponse(res), nil
}

func (s *TrackerServer) ListTags(ctx context.Context, req *connect.Request[ListTagsRequest]) (*connect.Response[ListTagsResponse], error) {
	tags, err := s.tags.List(ctx, req.Msg.Puuid)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&ListTagsResponse{Tags: tags}), nil
}

func (s *TrackerServer) UpsertTag(ctx context.Context, req *connect.Request[UpsertTagRequest]) (*connect.Response[TagResponse], error) {
	tag, err := s.tags.Upsert(ctx, req.Msg.Puuid, req.Msg.Category, req.Msg.Note)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&TagResponse{Tag: tag}), nil
}

func (s *TrackerServer) DeleteTag(ctx context.Context, req *connect.Request[DeleteTagRequest]) (*connect.Response[DeleteTagResponse], error) {
	deleted, err := s.tags.Delete(ctx, req.Msg.Puuid, req.Msg.Category)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&DeleteTagResponse{Deleted: deleted}), nil
}

func toConnectError(ctx context.Context, err error) error {
	var rl *riot.RateLimitError
	code := connect.CodeInternal
	switch {
	case errors.As(err, &rl):
		code = connect.CodeResourceExhausted
	case errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrInvalidTag),
		errors.Is(err, domain.ErrInvalidTagCategory):
		code = connect.CodeInvalidArgument
	case errors.Is(err, service.ErrNoConfiguredUser),
		errors.Is(err, riot.ErrNoAPIKey):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, service.ErrImportRunning):
		code = connect.CodeAborted
	case errors.Is(err, service.ErrUnresolvedUser),
		errors.Is(err, riot.ErrNotFound),
		errors.Is(err, lcu.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, riot.ErrUnauthorized):
		code = connect.CodeUnauthenticated
	case errors.Is(err, lcu.ErrClientUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}

	if code == connect.CodeInternal {
		zerolog.Ctx(ctx).Error().Err(err).Msg("request failed")
	}
	return connect.NewError(code, err)
}
