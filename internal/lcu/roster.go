package lcu

import (
	"context"
	"errors"
	"strings"

	"lol-encounters/internal/domain"
	"lol-encounters/internal/gameflow"
)

const (
	TeamOne = 1
	TeamTwo = 2
)

type ChampSelectPlayer struct {
	CellID             int    `json:"cellId"`
	Puuid              string `json:"puuid"`
	SummonerID         int64  `json:"summonerId"`
	GameName           string `json:"gameName"`
	TagLine            string `json:"tagLine"`
	ChampionID         int    `json:"championId"`
	ChampionPickIntent int    `json:"championPickIntent"`
	AssignedPosition   string `json:"assignedPosition"`
	NameVisibilityType string `json:"nameVisibilityType"`
}

func (p ChampSelectPlayer) hidden() bool {
	return strings.EqualFold(p.NameVisibilityType, "HIDDEN")
}

type ChampSelectSession struct {
	LocalPlayerCellID int                 `json:"localPlayerCellId"`
	IsCustomGame      bool                `json:"isCustomGame"`
	MyTeam            []ChampSelectPlayer `json:"myTeam"`
	TheirTeam         []ChampSelectPlayer `json:"theirTeam"`
}

type SessionPlayer struct {
	Puuid            string `json:"puuid"`
	SummonerID       int64  `json:"summonerId"`
	SummonerName     string `json:"summonerName"`
	GameName         string `json:"gameName"`
	TagLine          string `json:"tagLine"`
	RiotIDGameName   string `json:"riotIdGameName"`
	RiotIDTagline    string `json:"riotIdTagline"`
	ChampionID       int    `json:"championId"`
	SelectedPosition string `json:"selectedPosition"`
}

type GameflowSession struct {
	Phase    string `json:"phase"`
	GameData struct {
		GameID int64 `json:"gameId"`
		Queue  struct {
			ID   int    `json:"id"`
			Type string `json:"type"`
		} `json:"queue"`
		TeamOne []SessionPlayer `json:"teamOne"`
		TeamTwo []SessionPlayer `json:"teamTwo"`
	} `json:"gameData"`
}

type LobbyMember struct {
	Puuid        string `json:"puuid"`
	SummonerID   int64  `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	GameName     string `json:"gameName"`
	GameTag      string `json:"gameTag"`
}

type Lobby struct {
	GameConfig struct {
		QueueID int `json:"queueId"`
	} `json:"gameConfig"`
	Members []LobbyMember `json:"members"`
}

func (c *Client) ChampSelect(ctx context.Context) (*ChampSelectSession, error) {
	return getJSON[ChampSelectSession](ctx, c, "/lol-champ-select/v1/session")
}

func (c *Client) GameflowSession(ctx context.Context) (*GameflowSession, error) {
	return getJSON[GameflowSession](ctx, c, "/lol-gameflow/v1/session")
}

func (c *Client) Lobby(ctx context.Context) (*Lobby, error) {
	return getJSON[Lobby](ctx, c, "/lol-lobby/v2/lobby")
}

// Roster is the set of players visible in the current phase.
type Roster struct {
	Source     string
	QueueID    int
	Anonymized bool
	Players    []domain.RawPlayer
}

// Roster reads players from the endpoint that owns them in phase: the lobby, the champion
// select session or the gameflow session. Phases without players yield an empty roster.
func (c *Client) Roster(ctx context.Context, phase gameflow.Phase) (*Roster, error) {
	switch phase {
	case gameflow.PhaseLobby, gameflow.PhaseMatchmaking, gameflow.PhaseReadyCheck:
		lobby, err := c.Lobby(ctx)
		if errors.Is(err, ErrNotFound) {
			return &Roster{Source: "lobby"}, nil
		}
		if err != nil {
			return nil, err
		}
		return lobbyRoster(lobby), nil

	case gameflow.PhaseChampSelect:
		cs, err := c.ChampSelect(ctx)
		if errors.Is(err, ErrNotFound) {
			return &Roster{Source: "champ-select"}, nil
		}
		if err != nil {
			return nil, err
		}
		r := champSelectRoster(cs)
		if session, err := c.GameflowSession(ctx); err == nil {
			r.QueueID = session.GameData.Queue.ID
		}
		return r, nil

	case gameflow.PhaseGameStart, gameflow.PhaseInProgress, gameflow.PhaseReconnect:
		session, err := c.GameflowSession(ctx)
		if errors.Is(err, ErrNotFound) {
			return &Roster{Source: "game"}, nil
		}
		if err != nil {
			return nil, err
		}
		return sessionRoster(session), nil
	}
	return &Roster{}, nil
}

func lobbyRoster(l *Lobby) *Roster {
	r := &Roster{Source: "lobby", QueueID: l.GameConfig.QueueID}
	for i, m := range l.Members {
		r.Players = append(r.Players, domain.RawPlayer{
			Puuid:        m.Puuid,
			SummonerID:   m.SummonerID,
			CellID:       i,
			GameName:     m.GameName,
			TagLine:      m.GameTag,
			SummonerName: m.SummonerName,
			Team:         TeamOne,
		})
	}
	return r
}

func champSelectRoster(cs *ChampSelectSession) *Roster {
	r := &Roster{Source: "champ-select"}
	add := func(players []ChampSelectPlayer, team int) {
		for _, p := range players {
			hidden := p.hidden() || (p.Puuid == "" && p.GameName == "" && p.SummonerID == 0)
			if hidden && team == TeamOne {
				r.Anonymized = true
			}
			champ := p.ChampionID
			if champ == 0 {
				champ = p.ChampionPickIntent
			}
			r.Players = append(r.Players, domain.RawPlayer{
				Puuid:      p.Puuid,
				SummonerID: p.SummonerID,
				CellID:     p.CellID,
				GameName:   p.GameName,
				TagLine:    p.TagLine,
				ChampionID: champ,
				Team:       team,
				Position:   p.AssignedPosition,
				NameHidden: hidden,
			})
		}
	}
	add(cs.MyTeam, TeamOne)
	add(cs.TheirTeam, TeamTwo)
	return r
}

func sessionRoster(s *GameflowSession) *Roster {
	r := &Roster{Source: "game", QueueID: s.GameData.Queue.ID}
	add := func(players []SessionPlayer, team, offset int) {
		for i, p := range players {
			r.Players = append(r.Players, domain.RawPlayer{
				Puuid:          p.Puuid,
				SummonerID:     p.SummonerID,
				CellID:         offset + i,
				GameName:       p.GameName,
				TagLine:        p.TagLine,
				RiotIDGameName: p.RiotIDGameName,
				RiotIDTagline:  p.RiotIDTagline,
				SummonerName:   p.SummonerName,
				ChampionID:     p.ChampionID,
				Team:           team,
				Position:       p.SelectedPosition,
			})
		}
	}
	add(s.GameData.TeamOne, TeamOne, 0)
	add(s.GameData.TeamTwo, TeamTwo, len(s.GameData.TeamOne))
	return r
}
