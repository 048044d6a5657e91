package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lol-encounters/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type TagRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTagRepository(sqlDB *sql.DB, logger zerolog.Logger) *TagRepository {
	return &TagRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Upsert keeps at most one tag per (puuid, category); re-tagging replaces note and timestamp.
func (r *TagRepository) Upsert(ctx context.Context, puuid string, category domain.TagCategory, note string) (*domain.PlayerTag, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tag id: %w", err)
	}
	tag := domain.PlayerTag{
		ID:        id,
		Puuid:     puuid,
		Category:  category,
		Note:      strings.TrimSpace(note),
		CreatedAt: time.Now().UnixMilli(),
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO player_tags (id, puuid, category, note, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(puuid, category) DO UPDATE SET
			note = excluded.note,
			created_at = excluded.created_at
		RETURNING id`,
		tag.ID, tag.Puuid, string(tag.Category), tag.Note, tag.CreatedAt,
	).Scan(&tag.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tag %s for %s: %w", category, puuid, err)
	}
	return &tag, nil
}

// Delete reports whether a tag was removed.
func (r *TagRepository) Delete(ctx context.Context, puuid string, category domain.TagCategory) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM player_tags WHERE puuid = ? AND category = ?`, puuid, string(category))
	if err != nil {
		return false, fmt.Errorf("failed to delete tag %s for %s: %w", category, puuid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *TagRepository) List(ctx context.Context, puuid string) ([]domain.PlayerTag, error) {
	return r.query(ctx, `WHERE puuid = ?`, puuid)
}

func (r *TagRepository) ListAll(ctx context.Context) ([]domain.PlayerTag, error) {
	return r.query(ctx, ``)
}

func (r *TagRepository) query(ctx context.Context, where string, args ...any) ([]domain.PlayerTag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, puuid, category, note, created_at FROM player_tags `+where+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.PlayerTag{}
	for rows.Next() {
		var (
			t        domain.PlayerTag
			category string
		)
		if err := rows.Scan(&t.ID, &t.Puuid, &category, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		t.Category = domain.TagCategory(category)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
