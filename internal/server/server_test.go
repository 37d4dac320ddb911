package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/logging"
	"github.com/vancomm/minesweeper/internal/metrics"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/session"
)

type testServer struct {
	*Server
	http  *httptest.Server
	board *leaderboard.Board
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	c := config.Default()
	c.Mode = config.ModeDevelopment
	c.Cookies.Secure = false
	c.Session.TickInterval = config.Duration{Duration: time.Hour}

	board := leaderboard.New(leaderboard.NewMemory(), logging.Discard())
	s, err := New(&c, logging.Discard(), board,
		WithSessionOptions(session.WithRand(rand.New(rand.NewPCG(1, 2)))),
	)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Sessions().Close()
	})
	return &testServer{Server: s, http: ts, board: board}
}

func (ts *testServer) do(t *testing.T, method, path, token string, query url.Values) *http.Response {
	t.Helper()
	u := ts.http.URL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (ts *testServer) newGame(t *testing.T, query url.Values) GameDTO {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/v1/game", "", query)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[GameDTO](t, resp)
}

func pos(row, col int) url.Values {
	return url.Values{
		"row": {fmt.Sprint(row)},
		"col": {fmt.Sprint(col)},
	}
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.newGame(t, nil)

	resp := ts.do(t, http.MethodGet, "/v1/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
}

func TestNewGame(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/v1/game", "", url.Values{
		"difficulty": {"Intermediate"},
		"name":       {"  Zed  "},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == tokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	dto := decode[GameDTO](t, resp)
	assert.Equal(t, cookie.Value, dto.Token)
	assert.Equal(t, "Zed", dto.Player)
	assert.Equal(t, mines.Intermediate, dto.Game.Difficulty)
	assert.Equal(t, session.Unstarted, dto.Game.State)
	assert.Equal(t, 40, dto.Game.MinesRemaining)
	require.Len(t, dto.Game.Grid, 16*16)
	for _, st := range dto.Game.Grid {
		assert.Equal(t, mines.Unknown, st)
	}
}

func TestNewGameRejectsDifficulty(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/v1/game", "", url.Values{"difficulty": {"insane"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["error"], "unknown difficulty")
}

func TestGameAuth(t *testing.T) {
	ts := newTestServer(t)
	a := ts.newGame(t, nil)
	b := ts.newGame(t, nil)

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"other session", b.Token, http.StatusForbidden},
		{"own session", a.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, "/v1/game/"+a.Game.ID, tt.token, nil)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}

	t.Run("foreign secret", func(t *testing.T) {
		other := NewTokens([]byte("another secret"), time.Hour)
		token, err := other.Sign(a.Game.ID)
		require.NoError(t, err)
		resp := ts.do(t, http.MethodGet, "/v1/game/"+a.Game.ID, token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("cookie", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.http.URL+"/v1/game/"+a.Game.ID, nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: a.Token})
		resp, err := ts.http.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestOpenStartsGame(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, nil)
	started := testutil.ToFloat64(metrics.GamesStarted.WithLabelValues("beginner"))

	resp := ts.do(t, http.MethodPost, "/v1/game/"+game.Game.ID+"/open", game.Token, pos(4, 4))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[GameDTO](t, resp)

	require.NotNil(t, dto.Result)
	assert.Equal(t, mines.Opened, dto.Result.Outcome)
	assert.Equal(t, session.Playing, dto.Game.State)
	assert.Positive(t, dto.Game.Revealed)
	assert.GreaterOrEqual(t, dto.Game.Status(4, 4), mines.CellStatus(0))
	assert.Equal(t, started+1, testutil.ToFloat64(metrics.GamesStarted.WithLabelValues("beginner")))
}

func TestMoveRejectsPosition(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, nil)
	path := "/v1/game/" + game.Game.ID + "/open"

	tests := []struct {
		name  string
		query url.Values
	}{
		{"missing", nil},
		{"not a number", url.Values{"row": {"a"}, "col": {"1"}}},
		{"out of bounds", pos(9, 0)},
		{"negative", pos(0, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, path, game.Token, tt.query)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestFlagAndChord(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, nil)
	base := "/v1/game/" + game.Game.ID

	resp := ts.do(t, http.MethodPost, base+"/flag", game.Token, pos(0, 0))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[GameDTO](t, resp)
	assert.Equal(t, mines.Marked, dto.Result.Outcome)
	assert.Equal(t, 9, dto.Game.MinesRemaining)
	assert.Equal(t, mines.Flag, dto.Game.Status(0, 0))

	// chording before the game starts does nothing
	resp = ts.do(t, http.MethodPost, base+"/chord", game.Token, pos(4, 4))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto = decode[GameDTO](t, resp)
	assert.Equal(t, mines.Noop, dto.Result.Outcome)
	assert.Equal(t, session.Unstarted, dto.Game.State)
}

func TestReset(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, nil)
	base := "/v1/game/" + game.Game.ID

	ts.do(t, http.MethodPost, base+"/open", game.Token, pos(4, 4))

	resp := ts.do(t, http.MethodPost, base+"/reset", game.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[GameDTO](t, resp)
	assert.Equal(t, session.Unstarted, dto.Game.State)
	assert.Equal(t, mines.Beginner, dto.Game.Difficulty)
	assert.Zero(t, dto.Game.Revealed)

	resp = ts.do(t, http.MethodPost, base+"/reset", game.Token, url.Values{"difficulty": {"expert"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto = decode[GameDTO](t, resp)
	assert.Equal(t, mines.Expert, dto.Game.Difficulty)
	assert.Equal(t, 16, dto.Game.Rows)
	assert.Equal(t, 30, dto.Game.Cols)

	resp = ts.do(t, http.MethodPost, base+"/reset", game.Token, url.Values{"difficulty": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteGame(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, nil)
	path := "/v1/game/" + game.Game.ID

	resp := ts.do(t, http.MethodDelete, path, game.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, ts.Sessions().Len())

	resp = ts.do(t, http.MethodGet, path, game.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWinSubmitsTime(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, url.Values{"name": {"Zed"}})
	base := "/v1/game/" + game.Game.ID
	won := testutil.ToFloat64(metrics.GamesFinished.WithLabelValues("beginner", "won"))

	resp := ts.do(t, http.MethodPost, base+"/open", game.Token, pos(4, 4))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sess, ok := ts.Sessions().Get(game.Game.ID)
	require.True(t, ok)
	grid, err := sess.Snapshot().Grid()
	require.NoError(t, err)

	var last GameDTO
	for row := range grid.Rows() {
		for col := range grid.Cols() {
			c, _ := grid.Cell(row, col)
			if c.Mine || c.Revealed {
				continue
			}
			resp := ts.do(t, http.MethodPost, base+"/open", game.Token, pos(row, col))
			require.Equal(t, http.StatusOK, resp.StatusCode)
			last = decode[GameDTO](t, resp)
		}
	}
	assert.Equal(t, session.Won, last.Game.State)
	assert.Zero(t, last.Game.MinesRemaining)
	assert.Equal(t, won+1, testutil.ToFloat64(metrics.GamesFinished.WithLabelValues("beginner", "won")))

	resp = ts.do(t, http.MethodGet, "/v1/leaderboard/beginner", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[LeaderboardDTO](t, resp)
	assert.Equal(t, []leaderboard.Entry{{Name: "Zed", Time: 0}}, board.Entries)
}

func TestLeaderboardRoutes(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	for i, name := range []string{"b", "a", "c"} {
		_, _, err := ts.board.Submit(ctx, mines.Expert, name, 100-i*10)
		require.NoError(t, err)
	}

	resp := ts.do(t, http.MethodGet, "/v1/leaderboard/expert", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[LeaderboardDTO](t, resp)
	assert.Equal(t, mines.Expert, dto.Difficulty)
	assert.Equal(t, []leaderboard.Entry{
		{Name: "c", Time: 80},
		{Name: "a", Time: 90},
		{Name: "b", Time: 100},
	}, dto.Entries)

	resp = ts.do(t, http.MethodGet, "/v1/leaderboard/beginner", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[LeaderboardDTO](t, resp).Entries)

	resp = ts.do(t, http.MethodGet, "/v1/leaderboard/custom", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/v1/leaderboard/expert", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	list, err := ts.board.Load(ctx, mines.Expert)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/v1/status", "", nil)

	resp := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body strings.Builder
	_, err := io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `minesweeper_http_requests_total{code="200",pattern="GET /v1/status"}`)
}

func readEvent(t *testing.T, conn *websocket.Conn) EventDTO {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Type  string          `json:"type"`
		Event json.RawMessage `json:"event"`
		Game  *session.View   `json:"game"`
		Error string          `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	return EventDTO{Type: msg.Type, Game: msg.Game, Error: msg.Error}
}

// readUntilGame collects event types until the next game view.
func readUntilGame(t *testing.T, conn *websocket.Conn) ([]string, session.View) {
	t.Helper()
	var kinds []string
	for {
		msg := readEvent(t, conn)
		if msg.Type == "game" {
			require.NotNil(t, msg.Game)
			return kinds, *msg.Game
		}
		kinds = append(kinds, msg.Type)
	}
}

func TestConnect(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, nil)

	u := "ws" + strings.TrimPrefix(ts.http.URL, "http") +
		"/v1/game/" + game.Game.ID + "/connect?token=" + url.QueryEscape(game.Token)
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	kinds, view := readUntilGame(t, conn)
	assert.Empty(t, kinds)
	assert.Equal(t, session.Unstarted, view.State)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("f 0 0\no 4 4")))
	kinds, view = readUntilGame(t, conn)
	assert.Equal(t, []string{"cells", "started", "cells"}, kinds)
	assert.Equal(t, session.Playing, view.State)
	assert.Equal(t, mines.Flag, view.Status(0, 0))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("o 99 99\nzap")))
	kinds, _ = readUntilGame(t, conn)
	assert.Equal(t, []string{"error", "error"}, kinds)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("n expert")))
	kinds, view = readUntilGame(t, conn)
	assert.Equal(t, []string{"reset"}, kinds)
	assert.Equal(t, mines.Expert, view.Difficulty)
}

func TestConnectRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	game := ts.newGame(t, nil)

	u := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/v1/game/" + game.Game.ID + "/connect"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
