package session

import "github.com/vancomm/minesweeper/internal/mines"

// Event is delivered to subscribers after a command or tick completes.
type Event interface {
	Kind() string
}

// CellsChanged lists cells whose view changed, including mines disclosed or
// flagged when the game ends.
type CellsChanged struct {
	Points []mines.Point `json:"points"`
}

// GameStarted is sent when the first open places the mines.
type GameStarted struct {
	Difficulty mines.Difficulty `json:"difficulty"`
}

type GameWon struct {
	Elapsed int `json:"elapsed"`
	Rank    int `json:"rank"` // 1-based leaderboard position, 0 if not placed
}

type GameLost struct {
	At mines.Point `json:"at"`
}

type Tick struct {
	Elapsed int `json:"elapsed"`
}

type GameReset struct {
	Difficulty mines.Difficulty `json:"difficulty"`
}

func (CellsChanged) Kind() string { return "cells" }
func (GameStarted) Kind() string  { return "started" }
func (GameWon) Kind() string      { return "won" }
func (GameLost) Kind() string     { return "lost" }
func (Tick) Kind() string         { return "tick" }
func (GameReset) Kind() string    { return "reset" }
