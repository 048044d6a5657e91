package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/identity"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Insert stores a match with all of its participants in one transaction. A match that already
// exists is left untouched and Insert reports false.
func (r *MatchRepository) Insert(ctx context.Context, match domain.Match, participants []domain.Participant) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stored, err := insertMatch(ctx, tx, match, participants)
	if err != nil || !stored {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit match %s: %w", match.MatchID, err)
	}

	r.logger.Debug().
		Str("match_id", match.MatchID).
		Str("source", match.Source).
		Int("participants", len(participants)).
		Msg("match stored")
	return true, nil
}

// Replace swaps any stored copy of the match for this one in a single transaction. Participants
// of the old copy go with it.
func (r *MatchRepository) Replace(ctx context.Context, match domain.Match, participants []domain.Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE match_id = ?`, match.MatchID); err != nil {
		return fmt.Errorf("failed to delete match %s: %w", match.MatchID, err)
	}
	if _, err := insertMatch(ctx, tx, match, participants); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match %s: %w", match.MatchID, err)
	}

	r.logger.Debug().
		Str("match_id", match.MatchID).
		Str("source", match.Source).
		Int("participants", len(participants)).
		Msg("match replaced")
	return nil
}

func insertMatch(ctx context.Context, tx *sql.Tx, match domain.Match, participants []domain.Participant) (bool, error) {
	source := match.Source
	if source == "" {
		source = domain.SourceVendor
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO matches (match_id, created_at, duration, game_mode, queue_id, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO NOTHING`,
		match.MatchID, match.CreatedAt, match.Duration, match.GameMode, match.QueueID, source,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert match %s: %w", match.MatchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO participants (
			match_id, puuid, game_name, tag_line, summoner_name, name_key, game_name_key,
			champion_name, champion_id, team_id, kills, deaths, assists, win, role
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return false, fmt.Errorf("failed to prepare participant insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range participants {
		key := nameKey(p)
		if _, err := stmt.ExecContext(ctx,
			match.MatchID, p.Puuid, p.GameName, p.TagLine, p.SummonerName, key.Full, key.GameName,
			p.ChampionName, p.ChampionID, p.TeamID, p.Kills, p.Deaths, p.Assists, p.Win, p.Role,
		); err != nil {
			return false, fmt.Errorf("failed to insert participant %s of match %s: %w", p.Puuid, match.MatchID, err)
		}
	}
	return true, nil
}

func nameKey(p domain.Participant) identity.Key {
	if p.GameName != "" {
		return identity.NormalizeParts(p.GameName, p.TagLine)
	}
	return identity.Normalize(p.SummonerName)
}

// Source returns where the stored copy of the match came from, or "" when it is not stored.
func (r *MatchRepository) Source(ctx context.Context, matchID string) (string, error) {
	var source string
	err := r.db.QueryRowContext(ctx, `SELECT source FROM matches WHERE match_id = ?`, matchID).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read source of match %s: %w", matchID, err)
	}
	return source, nil
}

func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}

func (r *MatchRepository) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	var m domain.Match
	err := r.db.QueryRowContext(ctx,
		`SELECT match_id, created_at, duration, game_mode, queue_id, source FROM matches WHERE match_id = ?`, matchID,
	).Scan(&m.MatchID, &m.CreatedAt, &m.Duration, &m.GameMode, &m.QueueID, &m.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return &m, nil
}

func (r *MatchRepository) Participants(ctx context.Context, matchID string) ([]domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE match_id = ? ORDER BY team_id, id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of %s: %w", matchID, err)
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		p := domain.Participant{MatchID: matchID}
		if err := rows.Scan(participantFields(&p)...); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SharedMatches runs q and returns one row per match.
func (r *MatchRepository) SharedMatches(ctx context.Context, q SharedMatchQuery) ([]domain.SharedMatch, error) {
	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared matches: %w", err)
	}
	defer rows.Close()

	byName := q.byName()
	seen := map[string]bool{}
	var out []domain.SharedMatch
	for rows.Next() {
		var (
			sm        domain.SharedMatch
			fullMatch int
		)
		dest := []any{&sm.Match.MatchID, &sm.Match.CreatedAt, &sm.Match.Duration, &sm.Match.GameMode, &sm.Match.QueueID}
		dest = append(dest, participantFields(&sm.Local)...)
		dest = append(dest, participantFields(&sm.Target)...)
		dest = append(dest, &fullMatch)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan shared match: %w", err)
		}
		if seen[sm.Match.MatchID] {
			continue
		}
		seen[sm.Match.MatchID] = true
		sm.Local.MatchID = sm.Match.MatchID
		sm.Target.MatchID = sm.Match.MatchID
		sm.ByName = byName
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shared matches: %w", err)
	}
	return out, nil
}

func participantFields(p *domain.Participant) []any {
	return []any{
		&p.Puuid, &p.GameName, &p.TagLine, &p.SummonerName, &p.ChampionName, &p.ChampionID,
		&p.TeamID, &p.Kills, &p.Deaths, &p.Assists, &p.Win, &p.Role,
	}
}
