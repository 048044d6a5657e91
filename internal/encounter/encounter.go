// Package encounter computes head-to-head statistics between the local user and one other
// player from the matches they shared.
package encounter

import (
	"math"
	"sort"
	"strconv"
	"time"

	"lol-encounters/internal/constants"
	"lol-encounters/internal/domain"
	"lol-encounters/internal/queue"
)

const (
	Win  = "W"
	Loss = "L"
)

// Summarize is a pure function of its inputs: the same rows and clock always produce the same
// summary. Matches newer than the freshness cutoff are ignored, duplicate rows for one match
// keep their first occurrence.
func Summarize(target domain.TargetPlayer, rows []domain.SharedMatch, now time.Time) domain.EncounterSummary {
	games := prepare(rows, now)
	summary := Empty(target)
	if len(games) == 0 {
		return summary
	}

	latest := games[0]
	if name := latest.Target.DisplayName(); name != "" {
		summary.DisplayName = name
	}
	if summary.Puuid == "" {
		summary.Puuid = latest.Target.Puuid
	}

	ally, enemy := split(games)
	summary.TotalGames = len(games)
	summary.Ally = cohortStats(ally)
	summary.Enemy = cohortStats(enemy)
	summary.ThreatLevel = threatLevel(summary.Enemy)
	summary.AllyQuality = allyQuality(summary.Ally)
	summary.ByQueue = byQueue(games)
	summary.LastSeen = lastSeen(latest)
	for _, g := range games {
		if g.ByName {
			summary.MatchedByName = true
			break
		}
	}
	return summary
}

// Empty is the zero-history summary: both cohorts present with no games and neutral ratings.
func Empty(target domain.TargetPlayer) domain.EncounterSummary {
	return domain.EncounterSummary{
		Puuid:       target.Puuid,
		DisplayName: target.DisplayName,
		Ally:        emptyCohort(),
		Enemy:       emptyCohort(),
		ByQueue:     []domain.QueueBreakdown{},
		ThreatLevel: domain.ThreatMedium,
		AllyQuality: domain.AllyAverage,
	}
}

func emptyCohort() domain.CohortStats {
	return domain.CohortStats{
		RecentForm:   []string{},
		TopChampions: []domain.ChampionStat{},
		RoleStats:    []domain.RoleStat{},
	}
}

// prepare drops fresh and duplicate matches and orders the rest most recent first.
func prepare(rows []domain.SharedMatch, now time.Time) []domain.SharedMatch {
	cutoff := now.Add(-constants.FreshnessCutoff).UnixMilli()
	seen := make(map[string]bool, len(rows))
	games := make([]domain.SharedMatch, 0, len(rows))
	for _, r := range rows {
		if r.Match.CreatedAt > cutoff || seen[r.Match.MatchID] {
			continue
		}
		seen[r.Match.MatchID] = true
		games = append(games, r)
	}
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Match.CreatedAt != games[j].Match.CreatedAt {
			return games[i].Match.CreatedAt > games[j].Match.CreatedAt
		}
		return games[i].Match.MatchID < games[j].Match.MatchID
	})
	return games
}

func isAlly(g domain.SharedMatch) bool {
	return g.Local.TeamID == g.Target.TeamID
}

func split(games []domain.SharedMatch) (ally, enemy []domain.SharedMatch) {
	for _, g := range games {
		if isAlly(g) {
			ally = append(ally, g)
		} else {
			enemy = append(enemy, g)
		}
	}
	return ally, enemy
}

func outcome(g domain.SharedMatch) string {
	if g.Local.Win {
		return Win
	}
	return Loss
}

// cohortStats expects games ordered most recent first.
func cohortStats(games []domain.SharedMatch) domain.CohortStats {
	stats := emptyCohort()
	if len(games) == 0 {
		return stats
	}

	var kills, deaths, assists int
	for _, g := range games {
		if g.Local.Win {
			stats.Wins++
		} else {
			stats.Losses++
		}
		kills += g.Target.Kills
		deaths += g.Target.Deaths
		assists += g.Target.Assists
	}

	n := float64(len(games))
	stats.Games = len(games)
	stats.WinRate = percent(stats.Wins, stats.Games)
	stats.AvgKills = round1(float64(kills) / n)
	stats.AvgDeaths = round1(float64(deaths) / n)
	stats.AvgAssists = round1(float64(assists) / n)
	stats.KDA = kda(stats.AvgKills, stats.AvgDeaths, stats.AvgAssists)

	for i := 0; i < len(games) && i < constants.RecentFormSize; i++ {
		stats.RecentForm = append(stats.RecentForm, outcome(games[i]))
	}
	stats.TopChampions = topChampions(games, constants.TopChampionLimit)
	stats.RoleStats = roleStats(games)
	return stats
}

// kda is (kills + assists) / deaths, or kills + assists when deaths average to zero.
func kda(avgKills, avgDeaths, avgAssists float64) float64 {
	if avgDeaths == 0 {
		return round2(avgKills + avgAssists)
	}
	return round2((avgKills + avgAssists) / avgDeaths)
}

func championKey(p domain.Participant) string {
	if p.ChampionName != "" {
		return p.ChampionName
	}
	return "#" + strconv.Itoa(p.ChampionID)
}

func topChampions(games []domain.SharedMatch, limit int) []domain.ChampionStat {
	index := map[string]int{}
	champs := []domain.ChampionStat{}
	for _, g := range games {
		key := championKey(g.Target)
		i, ok := index[key]
		if !ok {
			i = len(champs)
			index[key] = i
			champs = append(champs, domain.ChampionStat{
				ChampionName: g.Target.ChampionName,
				ChampionID:   g.Target.ChampionID,
			})
		}
		champs[i].Games++
		if g.Local.Win {
			champs[i].Wins++
		} else {
			champs[i].Losses++
		}
	}
	// stable sort keeps first-seen order among ties
	sort.SliceStable(champs, func(i, j int) bool { return champs[i].Games > champs[j].Games })
	if len(champs) > limit {
		champs = champs[:limit]
	}
	for i := range champs {
		champs[i].WinRate = percent(champs[i].Wins, champs[i].Games)
	}
	return champs
}

func roleStats(games []domain.SharedMatch) []domain.RoleStat {
	index := map[string]int{}
	roles := []domain.RoleStat{}
	for _, g := range games {
		role := NormalizeRole(g.Target.Role)
		i, ok := index[role]
		if !ok {
			i = len(roles)
			index[role] = i
			roles = append(roles, domain.RoleStat{Role: role})
		}
		roles[i].Games++
		if g.Local.Win {
			roles[i].Wins++
		} else {
			roles[i].Losses++
		}
	}
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].Games > roles[j].Games })
	for i := range roles {
		roles[i].WinRate = percent(roles[i].Wins, roles[i].Games)
	}
	return roles
}

func byQueue(games []domain.SharedMatch) []domain.QueueBreakdown {
	buckets := map[queue.Category][]domain.SharedMatch{}
	for _, g := range games {
		c := queue.Classify(g.Match.QueueID)
		buckets[c] = append(buckets[c], g)
	}

	out := []domain.QueueBreakdown{}
	for _, c := range queue.Categories {
		bucket := buckets[c]
		if len(bucket) == 0 {
			continue
		}
		ally, enemy := split(bucket)
		out = append(out, domain.QueueBreakdown{
			Category: string(c),
			Games:    len(bucket),
			Ally:     cohortStats(ally),
			Enemy:    cohortStats(enemy),
		})
	}
	return out
}

func lastSeen(g domain.SharedMatch) *domain.LastSeen {
	rel := domain.RelationshipEnemy
	if isAlly(g) {
		rel = domain.RelationshipAlly
	}
	return &domain.LastSeen{
		Timestamp:    g.Match.CreatedAt,
		MatchID:      g.Match.MatchID,
		ChampionName: g.Target.ChampionName,
		ChampionID:   g.Target.ChampionID,
		Role:         NormalizeRole(g.Target.Role),
		Outcome:      outcome(g),
		Relationship: rel,
		QueueID:      g.Match.QueueID,
	}
}

func threatLevel(enemy domain.CohortStats) domain.ThreatLevel {
	switch {
	case enemy.Games == 0:
		return domain.ThreatMedium
	case enemy.WinRate < 40:
		return domain.ThreatLow
	case enemy.WinRate > 60:
		return domain.ThreatHigh
	default:
		return domain.ThreatMedium
	}
}

func allyQuality(ally domain.CohortStats) domain.AllyQuality {
	switch {
	case ally.Games == 0:
		return domain.AllyAverage
	case ally.WinRate < 40:
		return domain.AllyPoor
	case ally.WinRate > 60:
		return domain.AllyGood
	default:
		return domain.AllyAverage
	}
}

func percent(wins, games int) int {
	if games == 0 {
		return 0
	}
	return int(math.Round(float64(wins) * 100 / float64(games)))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
