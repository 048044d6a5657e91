package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lol-encounters/internal/constants"
	"lol-encounters/internal/domain"
	"lol-encounters/internal/identity"
	"lol-encounters/internal/riot"

	"github.com/rs/zerolog"
)

type SettingsInput struct {
	// RiotID is "gameName#tagLine"; it is ignored when GameName is set.
	RiotID   string `json:"riotId"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
	Region   string `json:"region"`
	APIKey   string `json:"apiKey"`
	Puuid    string `json:"puuid"`
}

type Settings struct {
	Puuid       string    `json:"puuid"`
	DisplayName string    `json:"displayName"`
	Region      string    `json:"region"`
	HasAPIKey   bool      `json:"hasApiKey"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SettingsService struct {
	users  UserStore
	vendor VendorClient
	client GameClient
	logger zerolog.Logger
}

func NewSettingsService(users UserStore, vendor VendorClient, client GameClient, logger zerolog.Logger) *SettingsService {
	return &SettingsService{users: users, vendor: vendor, client: client, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	u, err := s.users.Get(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	return toSettings(u), nil
}

func toSettings(u *domain.ConfiguredUser) *Settings {
	return &Settings{
		Puuid:       u.Puuid,
		DisplayName: u.DisplayName,
		Region:      u.Region,
		HasAPIKey:   u.APIKey != "",
		UpdatedAt:   u.UpdatedAt,
	}
}

func splitRiotID(in SettingsInput) (string, string) {
	gameName := strings.TrimSpace(in.GameName)
	tagLine := strings.TrimSpace(in.TagLine)
	if gameName == "" {
		name := strings.TrimSpace(in.RiotID)
		if i := strings.LastIndexByte(name, '#'); i >= 0 {
			gameName, tagLine = strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
		} else {
			gameName = name
		}
	}
	return gameName, tagLine
}

// Save overwrites the configured user. The stable id comes from the input, else the vendor
// account lookup, else the signed-in game client account when its Riot ID matches.
func (s *SettingsService) Save(ctx context.Context, in SettingsInput) (*Settings, error) {
	gameName, tagLine := splitRiotID(in)
	region := riot.NormalizePlatform(in.Region)
	if gameName == "" || region == "" {
		return nil, fmt.Errorf("%w: riot id and region are required", ErrInvalidSettings)
	}

	displayName := gameName
	if tagLine != "" {
		displayName = gameName + "#" + tagLine
	}

	apiKey := strings.TrimSpace(in.APIKey)
	if apiKey == "" {
		if prev, err := s.users.Get(ctx); err == nil && prev != nil {
			apiKey = prev.APIKey
		}
	}
	if apiKey != "" {
		s.vendor.SetAPIKey(apiKey)
	}

	puuid := strings.TrimSpace(in.Puuid)
	if puuid == "" {
		var err error
		puuid, displayName, err = s.resolve(ctx, region, gameName, tagLine, displayName)
		if err != nil {
			return nil, err
		}
	}

	u := domain.ConfiguredUser{
		Puuid:       puuid,
		DisplayName: displayName,
		Region:      region,
		APIKey:      apiKey,
		UpdatedAt:   time.Now(),
	}
	if err := s.users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return toSettings(&u), nil
}

func (s *SettingsService) resolve(ctx context.Context, region, gameName, tagLine, displayName string) (string, string, error) {
	if s.vendor.HasAPIKey() && tagLine != "" {
		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		acc, err := s.vendor.AccountByRiotID(apiCtx, region, gameName, tagLine)
		cancel()
		if err == nil && acc.Puuid != "" {
			return acc.Puuid, acc.RiotID(), nil
		}
		if errors.Is(err, riot.ErrNotFound) {
			return "", "", fmt.Errorf("%w: %s not found", ErrUnresolvedUser, displayName)
		}
		s.logger.Warn().Err(err).Str("riot_id", displayName).Msg("account lookup failed, trying game client")
	}

	if s.client != nil {
		me, err := s.client.CurrentSummoner(ctx)
		if err == nil && me.Puuid != "" {
			if identity.IsConfiguredUser("", displayName, identity.Candidate{DisplayName: me.RiotID()}) {
				return me.Puuid, me.RiotID(), nil
			}
			s.logger.Warn().Str("riot_id", displayName).Str("client_riot_id", me.RiotID()).Msg("signed-in account does not match")
		}
	}
	return "", "", ErrUnresolvedUser
}
