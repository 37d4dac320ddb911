package leaderboard

import (
	"context"
	"fmt"

	"github.com/vancomm/minesweeper/internal/database"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Options struct {
	Backend       string
	Dir           string // file
	SQLitePath    string // sqlite
	PostgresURL   string // postgres
	Migrate       bool   // postgres: apply migrations before connecting
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects to the backend selected by opts. An empty backend name
// selects the file backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFile(opts.Dir)
	case BackendSQLite:
		return OpenSQLite(opts.SQLitePath)
	case BackendPostgres:
		connect := database.Connect
		if opts.Migrate {
			connect = database.ConnectAndMigrate
		}
		pool, err := connect(ctx, opts.PostgresURL)
		if err != nil {
			return nil, err
		}
		return NewPostgres(pool), nil
	case BackendRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
