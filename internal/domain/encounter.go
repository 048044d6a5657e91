package domain

type ThreatLevel string

const (
	ThreatLow    ThreatLevel = "low"
	ThreatMedium ThreatLevel = "medium"
	ThreatHigh   ThreatLevel = "high"
)

type AllyQuality string

const (
	AllyPoor    AllyQuality = "poor"
	AllyAverage AllyQuality = "average"
	AllyGood    AllyQuality = "good"
)

type Relationship string

const (
	RelationshipAlly  Relationship = "ally"
	RelationshipEnemy Relationship = "enemy"
)

type ChampionStat struct {
	ChampionName string `json:"championName"`
	ChampionID   int    `json:"championId"`
	Games        int    `json:"games"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	WinRate      int    `json:"winRate"`
}

type RoleStat struct {
	Role    string `json:"role"`
	Games   int    `json:"games"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	WinRate int    `json:"winRate"`
}

// CohortStats aggregates the ally or enemy games. Outcomes are from the local user's point of
// view; K/D/A, champions and roles belong to the target player.
type CohortStats struct {
	Games        int            `json:"games"`
	Wins         int            `json:"wins"`
	Losses       int            `json:"losses"`
	WinRate      int            `json:"winRate"`
	AvgKills     float64        `json:"avgKills"`
	AvgDeaths    float64        `json:"avgDeaths"`
	AvgAssists   float64        `json:"avgAssists"`
	KDA          float64        `json:"kda"`
	RecentForm   []string       `json:"recentForm"`
	TopChampions []ChampionStat `json:"topChampions"`
	RoleStats    []RoleStat     `json:"roleStats"`
}

type QueueBreakdown struct {
	Category string      `json:"category"`
	Games    int         `json:"games"`
	Ally     CohortStats `json:"ally"`
	Enemy    CohortStats `json:"enemy"`
}

type LastSeen struct {
	Timestamp    int64        `json:"timestamp"`
	MatchID      string       `json:"matchId"`
	ChampionName string       `json:"championName"`
	ChampionID   int          `json:"championId"`
	Role         string       `json:"role"`
	Outcome      string       `json:"outcome"`
	Relationship Relationship `json:"relationship"`
	QueueID      int          `json:"queueId"`
}

type EncounterSummary struct {
	Puuid       string           `json:"puuid"`
	DisplayName string           `json:"displayName"`
	TotalGames  int              `json:"totalGames"`
	Ally        CohortStats      `json:"ally"`
	Enemy       CohortStats      `json:"enemy"`
	ByQueue     []QueueBreakdown `json:"byQueue"`
	LastSeen    *LastSeen        `json:"lastSeen,omitempty"`
	ThreatLevel ThreatLevel      `json:"threatLevel"`
	AllyQuality AllyQuality      `json:"allyQuality"`
	// MatchedByName reports that the stable id lookup found nothing and the name fallback was used.
	MatchedByName bool `json:"matchedByName"`
}
