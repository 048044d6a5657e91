package repository

import (
	"errors"
	"strings"

	"lol-encounters/internal/identity"
)

var ErrEmptyQuery = errors.New("shared match query has no target predicate")

// SharedMatchQuery selects matches where the local user and a target player both took part.
// Each target predicate is an explicit switch; enabled predicates are OR'ed together.
type SharedMatchQuery struct {
	LocalPuuid  string
	TargetPuuid string
	TargetName  identity.Key

	ByPuuid    bool
	ByFullName bool
	ByGameName bool

	// CreatedBefore excludes matches created after this epoch ms value. Zero disables it.
	CreatedBefore int64
}

// PuuidQuery is the primary lookup: the target is joined by stable id.
func PuuidQuery(localPuuid, targetPuuid string, createdBefore int64) SharedMatchQuery {
	return SharedMatchQuery{
		LocalPuuid:    localPuuid,
		TargetPuuid:   targetPuuid,
		ByPuuid:       targetPuuid != "",
		CreatedBefore: createdBefore,
	}
}

// NameQuery is the fallback lookup by normalized name. It matches the full key or the
// game-name key, so two players sharing a game name under different tags both match.
func NameQuery(localPuuid string, name identity.Key, createdBefore int64) SharedMatchQuery {
	return SharedMatchQuery{
		LocalPuuid:    localPuuid,
		TargetName:    name,
		ByFullName:    name.Full != "",
		ByGameName:    name.GameName != "",
		CreatedBefore: createdBefore,
	}
}

func (q SharedMatchQuery) byName() bool {
	return !q.ByPuuid && (q.ByFullName || q.ByGameName)
}

const participantColumns = `puuid, game_name, tag_line, summoner_name, champion_name, champion_id, team_id, kills, deaths, assists, win, role`

func prefixed(alias string) string {
	cols := strings.Split(participantColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// Build renders the query. Rows come back most recent first; within one match a full-key
// hit sorts ahead of a game-name-only hit.
func (q SharedMatchQuery) Build() (string, []any, error) {
	var (
		preds []string
		args  []any
	)

	rank := "1"
	var rankArgs []any
	if q.ByFullName && q.TargetName.Full != "" {
		rank = "CASE WHEN t.name_key = ? THEN 1 ELSE 0 END"
		rankArgs = append(rankArgs, q.TargetName.Full)
	}

	if q.ByPuuid && q.TargetPuuid != "" {
		preds = append(preds, "t.puuid = ?")
		args = append(args, q.TargetPuuid)
	}
	if q.ByFullName && q.TargetName.Full != "" {
		preds = append(preds, "t.name_key = ?")
		args = append(args, q.TargetName.Full)
	}
	if q.ByGameName && q.TargetName.GameName != "" {
		preds = append(preds, "t.game_name_key = ?")
		args = append(args, q.TargetName.GameName)
	}
	if len(preds) == 0 || q.LocalPuuid == "" {
		return "", nil, ErrEmptyQuery
	}

	var b strings.Builder
	b.WriteString("SELECT m.match_id, m.created_at, m.duration, m.game_mode, m.queue_id, ")
	b.WriteString(prefixed("l"))
	b.WriteString(", ")
	b.WriteString(prefixed("t"))
	b.WriteString(", ")
	b.WriteString(rank)
	b.WriteString(" AS full_match")
	b.WriteString(" FROM matches m")
	b.WriteString(" JOIN participants l ON l.match_id = m.match_id AND l.puuid = ?")
	b.WriteString(" JOIN participants t ON t.match_id = m.match_id AND t.id != l.id")
	b.WriteString(" WHERE (")
	b.WriteString(strings.Join(preds, " OR "))
	b.WriteString(") AND t.puuid != ?")

	all := append(rankArgs, q.LocalPuuid)
	all = append(all, args...)
	all = append(all, q.LocalPuuid)

	if q.CreatedBefore > 0 {
		b.WriteString(" AND m.created_at <= ?")
		all = append(all, q.CreatedBefore)
	}
	b.WriteString(" ORDER BY m.created_at DESC, m.match_id ASC, full_match DESC")

	return b.String(), all, nil
}
