package server

import (
	"time"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/gameflow"
	"lol-encounters/internal/service"
)

type GetStatusRequest struct{}

type StatusResponse struct {
	SessionID string          `json:"sessionId"`
	Status    gameflow.Status `json:"status"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type GetLobbyRequest struct{}

type LobbyResponse struct {
	SessionID string               `json:"sessionId"`
	Entries   []service.LobbyEntry `json:"entries"`
}

type GetLastMatchRequest struct {
	// Refresh reads the latest game from the game client instead of the cached roster.
	Refresh bool `json:"refresh"`
}

type LastMatchResponse struct {
	Match *service.LastMatch `json:"match"`
}

type GetEncounterSummaryRequest struct {
	Puuid       string `json:"puuid"`
	DisplayName string `json:"displayName"`
}

type EncounterSummaryResponse struct {
	// Configured is false when no local user has been saved; Summary is then nil.
	Configured bool                     `json:"configured"`
	Summary    *domain.EncounterSummary `json:"summary"`
	Tags       []domain.PlayerTag       `json:"tags"`
}

type GetSettingsRequest struct{}

type SettingsResponse struct {
	Settings *service.Settings `json:"settings"`
}

type ImportHistoryRequest struct {
	Count int `json:"count"`
}

type ListTagsRequest struct {
	Puuid string `json:"puuid"`
}

type ListTagsResponse struct {
	Tags []domain.PlayerTag `json:"tags"`
}

type UpsertTagRequest struct {
	Puuid    string `json:"puuid"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

type TagResponse struct {
	Tag *domain.PlayerTag `json:"tag"`
}

type DeleteTagRequest struct {
	Puuid    string `json:"puuid"`
	Category string `json:"category"`
}

type DeleteTagResponse struct {
	Deleted bool `json:"deleted"`
}
