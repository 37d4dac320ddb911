package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/logging"
)

var (
	log = logrus.New()

	configPath string
	conf       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "minesweeper",
	Short: "Minesweeper server and terminal game",
	Long: `minesweeper runs the game server or a game in the terminal.

Serve the HTTP and WebSocket API
	minesweeper serve

Play in the terminal
	minesweeper play --difficulty expert --name Zed

Show the best times
	minesweeper leaderboard show
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if conf, err = config.Load(configPath); err != nil {
			return err
		}
		if log, err = logging.New(conf, os.Stderr); err != nil {
			return err
		}
		log.WithFields(conf.Fields()).Debug("config")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", config.DefaultPath, "config file path",
	)
}

func leaderboardOptions(c *config.Config) (leaderboard.Options, error) {
	lb := c.Leaderboard
	opts := leaderboard.Options{
		Backend:       lb.Backend,
		Dir:           lb.Dir,
		SQLitePath:    lb.SQLitePath,
		Migrate:       lb.Postgres.Migrate,
		RedisAddr:     lb.Redis.Addr,
		RedisPassword: lb.Redis.Password,
		RedisDB:       lb.Redis.DB,
	}
	if lb.Backend == leaderboard.BackendPostgres {
		url, err := lb.Postgres.DbURL()
		if err != nil {
			return leaderboard.Options{}, err
		}
		opts.PostgresURL = url
	}
	return opts, nil
}

func openBoard(ctx context.Context) (*leaderboard.Board, error) {
	opts, err := leaderboardOptions(conf)
	if err != nil {
		return nil, err
	}
	backend, err := leaderboard.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	log.WithField("backend", conf.Leaderboard.Backend).Debug("opened leaderboard")
	return leaderboard.New(backend, log), nil
}
