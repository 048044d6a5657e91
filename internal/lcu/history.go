package lcu

import (
	"context"
	"fmt"
	"strings"

	"lol-encounters/internal/domain"
)

type historyList struct {
	Games struct {
		Games []struct {
			GameID int64 `json:"gameId"`
		} `json:"games"`
	} `json:"games"`
}

type HistoryGame struct {
	GameID       int64  `json:"gameId"`
	PlatformID   string `json:"platformId"`
	GameCreation int64  `json:"gameCreation"`
	GameDuration int    `json:"gameDuration"`
	GameMode     string `json:"gameMode"`
	QueueID      int    `json:"queueId"`

	ParticipantIdentities []struct {
		ParticipantID int `json:"participantId"`
		Player        struct {
			Puuid        string `json:"puuid"`
			GameName     string `json:"gameName"`
			TagLine      string `json:"tagLine"`
			SummonerName string `json:"summonerName"`
		} `json:"player"`
	} `json:"participantIdentities"`

	Participants []struct {
		ParticipantID int `json:"participantId"`
		TeamID        int `json:"teamId"`
		ChampionID    int `json:"championId"`
		Stats         struct {
			Kills   int  `json:"kills"`
			Deaths  int  `json:"deaths"`
			Assists int  `json:"assists"`
			Win     bool `json:"win"`
		} `json:"stats"`
		Timeline struct {
			Lane string `json:"lane"`
			Role string `json:"role"`
		} `json:"timeline"`
	} `json:"participants"`
}

// MatchID uses the vendor match id format so a game stored from here is recognized by a later
// import.
func (g HistoryGame) MatchID() string {
	return fmt.Sprintf("%s_%d", strings.ToUpper(g.PlatformID), g.GameID)
}

func lanePosition(lane, role string) string {
	switch strings.ToUpper(role) {
	case "DUO_SUPPORT", "SUPPORT":
		return "UTILITY"
	case "DUO_CARRY", "CARRY":
		return "BOTTOM"
	}
	switch strings.ToUpper(lane) {
	case "", "NONE":
		return ""
	case "BOT":
		return "BOTTOM"
	}
	return lane
}

func (g HistoryGame) ToDomain() (domain.Match, []domain.Participant) {
	match := domain.Match{
		MatchID:   g.MatchID(),
		CreatedAt: g.GameCreation,
		Duration:  g.GameDuration,
		GameMode:  g.GameMode,
		QueueID:   g.QueueID,
		Source:    domain.SourceClient,
	}

	identities := make(map[int]int, len(g.ParticipantIdentities))
	for i, id := range g.ParticipantIdentities {
		identities[id.ParticipantID] = i
	}

	participants := make([]domain.Participant, 0, len(g.Participants))
	for _, p := range g.Participants {
		dp := domain.Participant{
			MatchID:    match.MatchID,
			ChampionID: p.ChampionID,
			TeamID:     p.TeamID,
			Kills:      p.Stats.Kills,
			Deaths:     p.Stats.Deaths,
			Assists:    p.Stats.Assists,
			Win:        p.Stats.Win,
			Role:       lanePosition(p.Timeline.Lane, p.Timeline.Role),
		}
		if i, ok := identities[p.ParticipantID]; ok {
			player := g.ParticipantIdentities[i].Player
			dp.Puuid = player.Puuid
			dp.GameName = strings.TrimSpace(player.GameName)
			dp.TagLine = strings.TrimSpace(player.TagLine)
			dp.SummonerName = strings.TrimSpace(player.SummonerName)
		}
		participants = append(participants, dp)
	}
	return match, participants
}

// LastGame returns the most recent game of the signed-in player, or ErrNotFound when the
// history is empty.
func (c *Client) LastGame(ctx context.Context) (*HistoryGame, error) {
	list, err := getJSON[historyList](ctx, c, "/lol-match-history/v1/products/lol/current-summoner/matches?begIndex=0&endIndex=1")
	if err != nil {
		return nil, err
	}
	if len(list.Games.Games) == 0 {
		return nil, ErrNotFound
	}
	return getJSON[HistoryGame](ctx, c, fmt.Sprintf("/lol-match-history/v1/games/%d", list.Games.Games[0].GameID))
}
