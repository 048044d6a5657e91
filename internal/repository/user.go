package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lol-encounters/internal/domain"

	"github.com/rs/zerolog"
)

// UserRepository holds the single configured-user row.
type UserRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserRepository(sqlDB *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Get returns nil without an error when no user has been configured yet.
func (r *UserRepository) Get(ctx context.Context) (*domain.ConfiguredUser, error) {
	var (
		u         domain.ConfiguredUser
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT puuid, display_name, region, api_key, updated_at FROM configured_user WHERE id = 1`,
	).Scan(&u.Puuid, &u.DisplayName, &u.Region, &u.APIKey, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configured user: %w", err)
	}
	u.UpdatedAt = time.UnixMilli(updatedAt)
	return &u, nil
}

// Upsert overwrites the configured user.
func (r *UserRepository) Upsert(ctx context.Context, u domain.ConfiguredUser) error {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO configured_user (id, puuid, display_name, region, api_key, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			puuid = excluded.puuid,
			display_name = excluded.display_name,
			region = excluded.region,
			api_key = excluded.api_key,
			updated_at = excluded.updated_at`,
		u.Puuid, u.DisplayName, u.Region, u.APIKey, u.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save configured user: %w", err)
	}

	r.logger.Info().Str("puuid", u.Puuid).Str("region", u.Region).Msg("configured user saved")
	return nil
}
