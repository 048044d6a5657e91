package riot

import (
	"strings"

	"lol-encounters/internal/domain"
)

type AccountDTO struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

func (a AccountDTO) RiotID() string {
	if a.TagLine == "" {
		return a.GameName
	}
	return a.GameName + "#" + a.TagLine
}

type MatchDTO struct {
	Metadata MetadataDTO `json:"metadata"`
	Info     InfoDTO     `json:"info"`
}

type MetadataDTO struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type InfoDTO struct {
	GameCreation       int64            `json:"gameCreation"`
	GameStartTimestamp int64            `json:"gameStartTimestamp"`
	GameEndTimestamp   int64            `json:"gameEndTimestamp"`
	GameDuration       int64            `json:"gameDuration"`
	GameMode           string           `json:"gameMode"`
	QueueID            int              `json:"queueId"`
	PlatformID         string           `json:"platformId"`
	Participants       []ParticipantDTO `json:"participants"`
}

type ParticipantDTO struct {
	Puuid              string `json:"puuid"`
	RiotIDGameName     string `json:"riotIdGameName"`
	RiotIDTagline      string `json:"riotIdTagline"`
	SummonerName       string `json:"summonerName"`
	ChampionName       string `json:"championName"`
	ChampionID         int    `json:"championId"`
	TeamID             int    `json:"teamId"`
	Kills              int    `json:"kills"`
	Deaths             int    `json:"deaths"`
	Assists            int    `json:"assists"`
	Win                bool   `json:"win"`
	TeamPosition       string `json:"teamPosition"`
	IndividualPosition string `json:"individualPosition"`
	Lane               string `json:"lane"`
	// Arena reports sub-teams here; TeamID is 0 for every player in that mode.
	PlayerSubteamID int `json:"playerSubteamId"`
}

// DurationSeconds handles both payload generations: before gameEndTimestamp existed the
// duration was reported in milliseconds.
func (i InfoDTO) DurationSeconds() int {
	if i.GameEndTimestamp == 0 {
		return int(i.GameDuration / 1000)
	}
	return int(i.GameDuration)
}

func (p ParticipantDTO) position() string {
	for _, v := range []string{p.TeamPosition, p.IndividualPosition, p.Lane} {
		v = strings.TrimSpace(v)
		switch strings.ToUpper(v) {
		case "", "INVALID", "NONE":
			continue
		}
		return v
	}
	return ""
}

func (p ParticipantDTO) team() int {
	if p.TeamID == 0 && p.PlayerSubteamID != 0 {
		return p.PlayerSubteamID
	}
	return p.TeamID
}

// ToDomain converts the payload into a corpus match and its participants.
func (m MatchDTO) ToDomain() (domain.Match, []domain.Participant) {
	created := m.Info.GameCreation
	if created == 0 {
		created = m.Info.GameStartTimestamp
	}
	match := domain.Match{
		MatchID:   m.Metadata.MatchID,
		CreatedAt: created,
		Duration:  m.Info.DurationSeconds(),
		GameMode:  m.Info.GameMode,
		QueueID:   m.Info.QueueID,
		Source:    domain.SourceVendor,
	}

	participants := make([]domain.Participant, 0, len(m.Info.Participants))
	for _, p := range m.Info.Participants {
		participants = append(participants, domain.Participant{
			MatchID:      match.MatchID,
			Puuid:        p.Puuid,
			GameName:     strings.TrimSpace(p.RiotIDGameName),
			TagLine:      strings.TrimSpace(p.RiotIDTagline),
			SummonerName: strings.TrimSpace(p.SummonerName),
			ChampionName: p.ChampionName,
			ChampionID:   p.ChampionID,
			TeamID:       p.team(),
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			Win:          p.Win,
			Role:         p.position(),
		})
	}
	return match, participants
}
