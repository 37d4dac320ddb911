package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/session"
)

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.log.WithError(err).Error("unable to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(payload); err != nil {
		s.log.WithError(err).Warn("unable to send response")
	}
}

func (s *Server) sendError(w http.ResponseWriter, code int, err error) {
	s.sendJSON(w, code, wrapError(err))
}

type sessionHandler func(http.ResponseWriter, *http.Request, *session.Session)

// withSession resolves the {id} path value to a live session owned by the
// bearer of the request token.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := FromRequest(r)
		if err != nil {
			s.sendError(w, http.StatusUnauthorized, err)
			return
		}
		id, err := s.tokens.Parse(token)
		if err != nil {
			s.log.WithError(err).Debug("rejected token")
			s.sendError(w, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}
		if id != r.PathValue("id") {
			s.sendError(w, http.StatusForbidden, errors.New("token does not match session"))
			return
		}
		sess, ok := s.sessions.Get(id)
		if !ok {
			s.sendError(w, http.StatusNotFound, errors.New("session not found"))
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"mode":     s.config.Mode,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}
	dto, err := ParseCreateGameDTO(r.Form)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}
	d, err := mines.ParseDifficulty(dto.Difficulty)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}

	opts := []session.Option{
		session.WithLeaderboard(s.board),
		session.WithPlayer(dto.Name),
		session.WithLogger(s.log),
		session.WithTickInterval(s.config.Session.TickInterval.Duration),
	}
	sess, err := session.New(d, append(opts, s.sessionOpts...)...)
	if err != nil {
		s.log.WithError(err).Error("unable to create session")
		s.sendError(w, http.StatusInternalServerError, errors.New("unable to create session"))
		return
	}

	token, err := s.tokens.Sign(sess.ID())
	if err != nil {
		sess.Dispose()
		s.log.WithError(err).Error("unable to sign token")
		s.sendError(w, http.StatusInternalServerError, errors.New("unable to create session"))
		return
	}
	s.register(sess)
	s.tokens.setCookie(w, s.cookies, token)

	s.log.WithFields(logrus.Fields{
		"session":    sess.ID(),
		"difficulty": d,
		"player":     sess.Player(),
	}).Info("created session")

	res := NewGameDTO(sess, nil)
	res.Token = token
	s.sendJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.sendJSON(w, http.StatusOK, NewGameDTO(sess, nil))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.sessions.Remove(sess.ID())
	clearCookie(w, s.cookies)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(move func(*session.Session, int, int) mines.Result) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		if err := r.ParseForm(); err != nil {
			s.sendError(w, http.StatusBadRequest, err)
			return
		}
		pos, err := ParsePositionDTO(r.Form)
		if err != nil {
			s.sendError(w, http.StatusBadRequest, err)
			return
		}
		if _, ok := sess.Cell(pos.Row, pos.Col); !ok {
			s.sendError(w, http.StatusBadRequest, mines.ErrOutOfBounds)
			return
		}
		res := move(sess, pos.Row, pos.Col)
		s.sendJSON(w, http.StatusOK, NewGameDTO(sess, &res))
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := r.ParseForm(); err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}
	dto, err := ParseResetDTO(r.Form)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}
	if dto.Difficulty == "" {
		err = sess.Reset()
	} else {
		var d mines.Difficulty
		if d, err = mines.ParseDifficulty(dto.Difficulty); err == nil {
			err = sess.Start(d)
		}
	}
	switch {
	case errors.Is(err, mines.ErrUnknownDifficulty):
		s.sendError(w, http.StatusBadRequest, err)
	case errors.Is(err, session.ErrDisposed):
		s.sendError(w, http.StatusGone, err)
	case err != nil:
		s.log.WithError(err).Error("unable to reset session")
		s.sendError(w, http.StatusInternalServerError, errors.New("unable to reset session"))
	default:
		s.sendJSON(w, http.StatusOK, NewGameDTO(sess, nil))
	}
}

func (s *Server) pathDifficulty(w http.ResponseWriter, r *http.Request) (mines.Difficulty, bool) {
	d, err := mines.ParseDifficulty(r.PathValue("difficulty"))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return "", false
	}
	return d, true
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDifficulty(w, r)
	if !ok {
		return
	}
	list, err := s.board.Load(r.Context(), d)
	if err != nil {
		s.log.WithError(err).Error("unable to load leaderboard")
		s.sendError(w, http.StatusInternalServerError, errors.New("unable to load leaderboard"))
		return
	}
	if list == nil {
		list = leaderboard.List{}
	}
	s.sendJSON(w, http.StatusOK, LeaderboardDTO{Difficulty: d, Entries: list})
}

func (s *Server) handleClearLeaderboard(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDifficulty(w, r)
	if !ok {
		return
	}
	if err := s.board.Clear(r.Context(), d); err != nil {
		s.log.WithError(err).Error("unable to clear leaderboard")
		s.sendError(w, http.StatusInternalServerError, errors.New("unable to clear leaderboard"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
