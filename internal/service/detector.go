package service

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/encounter"
	"lol-encounters/internal/identity"

	"github.com/rs/zerolog"
)

// LobbyEntry is one distinct non-self player of the current roster with their history.
type LobbyEntry struct {
	Key         string                  `json:"key"`
	Puuid       string                  `json:"puuid"`
	DisplayName string                  `json:"displayName"`
	NameSource  string                  `json:"nameSource"`
	NameHidden  bool                    `json:"nameHidden"`
	ChampionID  int                     `json:"championId"`
	Team        int                     `json:"team"`
	Position    string                  `json:"position"`
	Summary     domain.EncounterSummary `json:"summary"`
	Tags        []domain.PlayerTag      `json:"tags"`
}

// NameCache memoizes summoner-id name lookups for one live session.
type NameCache struct {
	mu    sync.Mutex
	names map[string]string
}

func NewNameCache() *NameCache {
	return &NameCache{names: map[string]string{}}
}

func (c *NameCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[key]
	return name, ok
}

func (c *NameCache) Put(key, name string) {
	c.mu.Lock()
	c.names[key] = name
	c.mu.Unlock()
}

func (c *NameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.names)
}

func (c *NameCache) Reset() {
	c.mu.Lock()
	c.names = map[string]string{}
	c.mu.Unlock()
}

// Detector turns a raw roster into enriched lobby entries.
type Detector struct {
	users      UserStore
	encounters *EncounterService
	tags       TagStore
	names      GameClient
	cache      *NameCache
	logger     zerolog.Logger
}

func NewDetector(users UserStore, encounters *EncounterService, tags TagStore, names GameClient, logger zerolog.Logger) *Detector {
	return &Detector{
		users:      users,
		encounters: encounters,
		tags:       tags,
		names:      names,
		cache:      NewNameCache(),
		logger:     logger.With().Str("component", "detector").Logger(),
	}
}

// ResetSession clears the name cache; called when the live game ends.
func (d *Detector) ResetSession() {
	d.cache.Reset()
}

// DedupeKey is the stable id when known, else the client-assigned slot.
func DedupeKey(p domain.RawPlayer) string {
	if p.Puuid != "" {
		return p.Puuid
	}
	return "slot:" + strconv.Itoa(p.CellID)
}

// Dedupe merges descriptors that share a key. The first descriptor keeps its position;
// later duplicates only fill fields it lacks.
func Dedupe(players []domain.RawPlayer) []domain.RawPlayer {
	index := map[string]int{}
	out := make([]domain.RawPlayer, 0, len(players))
	for _, p := range players {
		key := DedupeKey(p)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, p)
			continue
		}
		out[i] = merge(out[i], p)
	}
	return out
}

func merge(a, b domain.RawPlayer) domain.RawPlayer {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&a.GameName, b.GameName)
	fill(&a.TagLine, b.TagLine)
	fill(&a.RiotIDGameName, b.RiotIDGameName)
	fill(&a.RiotIDTagline, b.RiotIDTagline)
	fill(&a.RiotID, b.RiotID)
	fill(&a.SummonerName, b.SummonerName)
	fill(&a.DisplayName, b.DisplayName)
	fill(&a.Position, b.Position)
	if a.SummonerID == 0 {
		a.SummonerID = b.SummonerID
	}
	if a.ChampionID == 0 {
		a.ChampionID = b.ChampionID
	}
	a.NameHidden = a.NameHidden && b.NameHidden
	return a
}

// Detect dedupes the roster, drops the configured user and attaches a summary to every
// remaining player. Summaries run one at a time; a failed lookup leaves that player with an
// empty history instead of failing the roster.
func (d *Detector) Detect(ctx context.Context, players []domain.RawPlayer) ([]LobbyEntry, error) {
	user, err := d.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoConfiguredUser
	}
	self := identity.NewMatcher(user.Puuid, user.DisplayName)

	entries := []LobbyEntry{}
	for _, p := range Dedupe(players) {
		name, source := d.resolveName(ctx, p)
		if self.IsConfiguredUser(identity.Candidate{Puuid: p.Puuid, DisplayName: name}) {
			continue
		}

		entry := LobbyEntry{
			Key:         DedupeKey(p),
			Puuid:       p.Puuid,
			DisplayName: name,
			NameSource:  source,
			NameHidden:  p.NameHidden && p.Puuid == "" && name == "",
			ChampionID:  p.ChampionID,
			Team:        p.Team,
			Position:    p.Position,
			Tags:        []domain.PlayerTag{},
		}
		target := domain.TargetPlayer{Puuid: p.Puuid, DisplayName: name}

		if entry.NameHidden {
			entry.Summary = encounter.Empty(target)
		} else {
			summary, err := d.encounters.SummaryFor(ctx, user, target)
			if err != nil {
				d.logger.Warn().Err(err).Str("key", entry.Key).Str("name", name).Msg("encounter lookup failed")
				summary = encounter.Empty(target)
			}
			entry.Summary = summary
			if entry.DisplayName == "" {
				entry.DisplayName = summary.DisplayName
			}
		}

		if p.Puuid != "" {
			tags, err := d.tags.List(ctx, p.Puuid)
			if err != nil {
				d.logger.Warn().Err(err).Str("puuid", p.Puuid).Msg("tag lookup failed")
			} else {
				entry.Tags = tags
			}
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Summary.TotalGames > entries[j].Summary.TotalGames
	})
	return entries, nil
}

// resolveName walks the display-name priority list and, when the roster carried no name,
// asks the game client once per session for the summoner's name.
func (d *Detector) resolveName(ctx context.Context, p domain.RawPlayer) (string, string) {
	if name, field := p.ResolveDisplayName(); name != "" {
		return name, field
	}
	if p.SummonerID == 0 || p.NameHidden || d.names == nil {
		return "", ""
	}

	key := "summoner:" + strconv.FormatInt(p.SummonerID, 10)
	if name, ok := d.cache.Get(key); ok {
		return name, "summonerLookup"
	}
	name, err := d.names.SummonerName(ctx, p.SummonerID)
	if err != nil {
		d.logger.Debug().Err(err).Int64("summoner_id", p.SummonerID).Msg("summoner name lookup failed")
		return "", ""
	}
	d.cache.Put(key, name)
	return name, "summonerLookup"
}
