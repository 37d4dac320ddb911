package server

import (
	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/session"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

type CreateGameDTO struct {
	Difficulty string `schema:"difficulty"`
	Name       string `schema:"name"`
}

func ParseCreateGameDTO(src map[string][]string) (CreateGameDTO, error) {
	var dto CreateGameDTO
	err := decoder.Decode(&dto, src)
	if dto.Difficulty == "" {
		dto.Difficulty = string(mines.Beginner)
	}
	return dto, err
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePositionDTO(src map[string][]string) (PositionDTO, error) {
	var dto PositionDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type ResetDTO struct {
	Difficulty string `schema:"difficulty"`
}

func ParseResetDTO(src map[string][]string) (ResetDTO, error) {
	var dto ResetDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// GameDTO is the response to every game request.
type GameDTO struct {
	Token  string        `json:"token,omitempty"`
	Player string        `json:"player"`
	Game   session.View  `json:"game"`
	Result *mines.Result `json:"result,omitempty"`
}

func NewGameDTO(s *session.Session, res *mines.Result) GameDTO {
	return GameDTO{
		Player: s.Player(),
		Game:   s.View(),
		Result: res,
	}
}

type LeaderboardDTO struct {
	Difficulty mines.Difficulty    `json:"difficulty"`
	Entries    []leaderboard.Entry `json:"entries"`
}

// EventDTO is pushed over the WebSocket for every session event.
type EventDTO struct {
	Type  string        `json:"type"`
	Event session.Event `json:"event,omitempty"`
	Game  *session.View `json:"game,omitempty"`
	Error string        `json:"error,omitempty"`
}
