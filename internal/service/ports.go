package service

import (
	"context"
	"errors"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/lcu"
	"lol-encounters/internal/repository"
	"lol-encounters/internal/riot"
)

var (
	// ErrNoConfiguredUser means settings were never saved; enrichment and imports need them.
	ErrNoConfiguredUser = errors.New("no configured user")
	ErrImportRunning    = errors.New("an import is already running")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrUnresolvedUser   = errors.New("could not resolve the player's stable id")
	ErrInvalidTag       = errors.New("invalid tag")
)

type UserStore interface {
	Get(ctx context.Context) (*domain.ConfiguredUser, error)
	Upsert(ctx context.Context, u domain.ConfiguredUser) error
}

type MatchStore interface {
	Insert(ctx context.Context, match domain.Match, participants []domain.Participant) (bool, error)
	Replace(ctx context.Context, match domain.Match, participants []domain.Participant) error
	Source(ctx context.Context, matchID string) (string, error)
	SharedMatches(ctx context.Context, q repository.SharedMatchQuery) ([]domain.SharedMatch, error)
}

type TagStore interface {
	Upsert(ctx context.Context, puuid string, category domain.TagCategory, note string) (*domain.PlayerTag, error)
	Delete(ctx context.Context, puuid string, category domain.TagCategory) (bool, error)
	List(ctx context.Context, puuid string) ([]domain.PlayerTag, error)
	ListAll(ctx context.Context) ([]domain.PlayerTag, error)
}

// VendorClient is the part of the vendor API the services use.
type VendorClient interface {
	SetAPIKey(key string)
	HasAPIKey() bool
	AccountByRiotID(ctx context.Context, platform, gameName, tagLine string) (*riot.AccountDTO, error)
	MatchIDsByPUUID(ctx context.Context, platform, puuid string, start, count int) ([]string, error)
	Match(ctx context.Context, platform, matchID string) (*riot.MatchDTO, error)
}

// GameClient is the part of the running game client the services use.
type GameClient interface {
	CurrentSummoner(ctx context.Context) (*lcu.Summoner, error)
	SummonerName(ctx context.Context, summonerID int64) (string, error)
	LastGame(ctx context.Context) (*lcu.HistoryGame, error)
}
