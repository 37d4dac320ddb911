package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/metrics"
	"github.com/vancomm/minesweeper/internal/session"
)

type Server struct {
	config      *config.Config
	log         logrus.FieldLogger
	board       *leaderboard.Board
	sessions    *Registry
	tokens      *Tokens
	cookies     cookieSettings
	upgrader    websocket.Upgrader
	sessionOpts []session.Option
	handler     http.Handler
}

type Option func(*Server)

// WithSessionOptions adds options to every session the server creates.
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

func New(
	c *config.Config,
	log logrus.FieldLogger,
	board *leaderboard.Board,
	opts ...Option,
) (*Server, error) {
	secret := []byte(c.JWT.Secret)
	if len(secret) == 0 {
		if c.Production() {
			return nil, errors.New("jwt secret is required in production")
		}
		var err error
		if secret, err = RandomSecret(); err != nil {
			return nil, fmt.Errorf("unable to generate jwt secret: %w", err)
		}
		log.Warn("no jwt secret configured, using a random one")
	}

	s := &Server{
		config:   c,
		log:      log,
		board:    board,
		sessions: NewRegistry(),
		tokens:   NewTokens(secret, c.JWT.TokenLifetime.Duration),
		cookies: cookieSettings{
			domain:   c.Cookies.Domain,
			secure:   c.Cookies.Secure,
			sameSite: c.CookieSameSite(),
		},
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = Wrap(s.routes(), Logging(log), Cors(c.Server.AllowedOrigins))
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/status", s.handleStatus)

	mux.HandleFunc("POST /v1/game", s.handleNewGame)
	mux.HandleFunc("GET /v1/game/{id}", s.withSession(s.handleGetGame))
	mux.HandleFunc("DELETE /v1/game/{id}", s.withSession(s.handleDeleteGame))
	mux.HandleFunc("POST /v1/game/{id}/open", s.withSession(s.handleMove((*session.Session).Open)))
	mux.HandleFunc("POST /v1/game/{id}/flag", s.withSession(s.handleMove((*session.Session).ToggleFlag)))
	mux.HandleFunc("POST /v1/game/{id}/chord", s.withSession(s.handleMove((*session.Session).Chord)))
	mux.HandleFunc("POST /v1/game/{id}/reset", s.withSession(s.handleReset))
	mux.HandleFunc("GET /v1/game/{id}/connect", s.withSession(s.handleConnect))

	mux.HandleFunc("GET /v1/leaderboard/{difficulty}", s.handleLeaderboard)
	mux.HandleFunc("DELETE /v1/leaderboard/{difficulty}", s.handleClearLeaderboard)

	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Sessions() *Registry {
	return s.sessions
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.config.Server.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.config.Server.AllowedOrigins, origin)
}

// register adds the session to the registry and counts its outcomes.
func (s *Server) register(sess *session.Session) {
	sess.Subscribe(func(e session.Event) {
		switch e := e.(type) {
		case session.GameStarted:
			metrics.GamesStarted.WithLabelValues(e.Difficulty.String()).Inc()
		case session.GameWon:
			d := sess.Difficulty().String()
			metrics.GamesFinished.WithLabelValues(d, "won").Inc()
			metrics.WinSeconds.WithLabelValues(d).Observe(float64(e.Elapsed))
		case session.GameLost:
			metrics.GamesFinished.WithLabelValues(sess.Difficulty().String(), "lost").Inc()
		}
	})
	s.sessions.Add(sess)
}

func (s *Server) reap(ctx context.Context) {
	interval := s.config.Session.ReapInterval.Duration
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Reap(s.config.Session.IdleTimeout.Duration); n > 0 {
				s.log.WithField("count", n).Info("reaped idle sessions")
			}
		}
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.reap(gCtx)
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), s.config.Server.ShutdownTimeout.Duration,
		)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.sessions.Close()
		return err
	})
	return g.Wait()
}
