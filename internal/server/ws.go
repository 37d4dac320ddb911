package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper/internal/session"
)

const (
	outboxSize = 64
	writeWait  = 10 * time.Second
)

// handleConnect upgrades to a WebSocket that accepts line commands, one or
// more per message, and pushes every session event followed by the game view
// after each message.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	log := s.log.WithField("session", sess.ID())
	log.Debug("websocket connected")

	outbox := make(chan EventDTO, outboxSize)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }
	defer stop()

	push := func(msg EventDTO) {
		select {
		case outbox <- msg:
		case <-done:
		default:
			log.Warn("websocket outbox full, dropping message")
		}
	}
	pushGame := func() {
		view := sess.View()
		push(EventDTO{Type: "game", Game: &view})
	}

	cancel := sess.Subscribe(func(e session.Event) {
		push(EventDTO{Type: e.Kind(), Event: e})
	})
	defer cancel()

	go func() {
		for {
			select {
			case <-done:
				return
			case msg := <-outbox:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					log.WithError(err).Warn("websocket write failed")
					stop()
					conn.Close()
					return
				}
			}
		}
	}()

	pushGame()
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("websocket read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}
		s.sessions.Touch(sess.ID())

		for _, line := range strings.Split(strings.TrimSpace(string(message)), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			log.Debugf("\t> %s", line)
			if _, err := sess.ExecuteLine(line); err != nil {
				push(EventDTO{Type: "error", Error: err.Error()})
			}
		}
		if sess.Disposed() {
			return
		}
		pushGame()
	}
}
