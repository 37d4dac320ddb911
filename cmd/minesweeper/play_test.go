package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/logging"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/session"
)

func newPlaySession(t *testing.T, board *leaderboard.Board) *session.Session {
	t.Helper()
	s, err := session.New(mines.Beginner,
		session.WithRand(rand.New(rand.NewPCG(1, 2))),
		session.WithTickInterval(time.Hour),
		session.WithLeaderboard(board),
		session.WithPlayer("Zed"),
	)
	require.NoError(t, err)
	t.Cleanup(s.Dispose)
	return s
}

func TestPlayHelpAndQuit(t *testing.T) {
	s := newPlaySession(t, nil)
	var out bytes.Buffer

	err := play(s, strings.NewReader("h\nzap 1 2\no 99 0\nq\no 4 4\n"), &out, false)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "beginner  mines 010  time 000  unstarted")
	assert.Contains(t, out.String(), "commands:")
	assert.Contains(t, out.String(), "unknown command")
	assert.Contains(t, out.String(), "out of bounds")
	assert.Equal(t, session.Unstarted, s.State(), "commands after q are not run")
}

func TestPlayWin(t *testing.T) {
	board := leaderboard.New(leaderboard.NewMemory(), logging.Discard())
	s := newPlaySession(t, board)

	// the first open places the mines, the rest of the script is built from them
	s.Open(4, 4)
	grid, err := s.Snapshot().Grid()
	require.NoError(t, err)
	var script strings.Builder
	for row := range grid.Rows() {
		for col := range grid.Cols() {
			if c, _ := grid.Cell(row, col); !c.Mine && !c.Revealed {
				fmt.Fprintf(&script, "o %d %d\n", row, col)
			}
		}
	}

	var out bytes.Buffer
	require.NoError(t, play(s, strings.NewReader(script.String()), &out, true))

	assert.Equal(t, session.Won, s.State())
	assert.Contains(t, out.String(), "you won in 0s, #1 on the beginner leaderboard")
	assert.Contains(t, out.String(), "layout:")

	list, err := board.Load(context.Background(), mines.Beginner)
	require.NoError(t, err)
	assert.Equal(t, leaderboard.List{{Name: "Zed", Time: 0}}, list)
}

func TestPlayLose(t *testing.T) {
	s := newPlaySession(t, nil)
	s.Open(4, 4)
	grid, err := s.Snapshot().Grid()
	require.NoError(t, err)

	var mine mines.Point
	for row := range grid.Rows() {
		for col := range grid.Cols() {
			if c, _ := grid.Cell(row, col); c.Mine {
				mine = mines.Point{Row: row, Col: col}
			}
		}
	}

	var out bytes.Buffer
	line := fmt.Sprintf("o %d %d\n", mine.Row, mine.Col)
	require.NoError(t, play(s, strings.NewReader(line), &out, false))

	assert.Equal(t, session.Lost, s.State())
	assert.Contains(t, out.String(), fmt.Sprintf("boom at (%d, %d)", mine.Row, mine.Col))
	assert.NotContains(t, out.String(), "layout:")
}

func TestLeaderboardOptions(t *testing.T) {
	c := config.Default()
	c.Leaderboard.Dir = "/tmp/mines"
	opts, err := leaderboardOptions(&c)
	require.NoError(t, err)
	assert.Equal(t, leaderboard.BackendFile, opts.Backend)
	assert.Equal(t, "/tmp/mines", opts.Dir)
	assert.Empty(t, opts.PostgresURL)

	c.Leaderboard.Backend = leaderboard.BackendPostgres
	_, err = leaderboardOptions(&c)
	assert.Error(t, err, "postgres needs a url or host")

	c.Leaderboard.Postgres.Host = "db"
	c.Leaderboard.Postgres.User = "mines"
	c.Leaderboard.Postgres.Password = "p@ss"
	c.Leaderboard.Postgres.DBName = "mines"
	opts, err = leaderboardOptions(&c)
	require.NoError(t, err)
	assert.Equal(t, "postgresql://mines:p%40ss@db:5432/mines?sslmode=disable", opts.PostgresURL)
	assert.True(t, opts.Migrate)
}

func TestPrintList(t *testing.T) {
	var out bytes.Buffer
	printList(&out, mines.Expert, nil)
	printList(&out, mines.Beginner, leaderboard.List{
		{Name: "Zed", Time: 7},
		{Name: "Anon", Time: 120},
	})
	assert.Equal(t, "expert\n  no times yet\n"+
		"beginner\n  1. Zed 007s\n  2. Anon 120s\n", out.String())
}

func TestParseDifficulties(t *testing.T) {
	ds, err := parseDifficulties(nil)
	require.NoError(t, err)
	assert.Equal(t, mines.Difficulties(), ds)

	ds, err = parseDifficulties([]string{"Expert", "beginner"})
	require.NoError(t, err)
	assert.Equal(t, []mines.Difficulty{mines.Expert, mines.Beginner}, ds)

	_, err = parseDifficulties([]string{"custom"})
	assert.ErrorIs(t, err, mines.ErrUnknownDifficulty)
}
