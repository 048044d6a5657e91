package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"lol-encounters/internal/domain"

	"github.com/rs/zerolog"
)

const maxTagNoteLength = 280

type TagService struct {
	tags   TagStore
	logger zerolog.Logger
}

func NewTagService(tags TagStore, logger zerolog.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

func validatePuuid(puuid string) (string, error) {
	puuid = strings.TrimSpace(puuid)
	if puuid == "" {
		return "", fmt.Errorf("%w: puuid is required", ErrInvalidTag)
	}
	return puuid, nil
}

// Upsert tags a player. Re-tagging the same category replaces the note and timestamp.
func (s *TagService) Upsert(ctx context.Context, puuid, category, note string) (*domain.PlayerTag, error) {
	puuid, err := validatePuuid(puuid)
	if err != nil {
		return nil, err
	}
	cat, err := domain.ParseTagCategory(category)
	if err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxTagNoteLength {
		return nil, fmt.Errorf("%w: note longer than %d characters", ErrInvalidTag, maxTagNoteLength)
	}

	tag, err := s.tags.Upsert(ctx, puuid, cat, note)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("puuid", puuid).Str("category", string(cat)).Msg("player tagged")
	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, puuid, category string) (bool, error) {
	puuid, err := validatePuuid(puuid)
	if err != nil {
		return false, err
	}
	cat, err := domain.ParseTagCategory(category)
	if err != nil {
		return false, err
	}
	return s.tags.Delete(ctx, puuid, cat)
}

// List returns one player's tags, or every tag when puuid is empty.
func (s *TagService) List(ctx context.Context, puuid string) ([]domain.PlayerTag, error) {
	puuid = strings.TrimSpace(puuid)
	if puuid == "" {
		return s.tags.ListAll(ctx)
	}
	return s.tags.List(ctx, puuid)
}
