package leaderboard

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps lists in the leaderboard_record table. The schema is created
// by the database migrations.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func undefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}

func (pg *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := pg.db.QueryRow(ctx, `
	SELECT value
	FROM leaderboard_record
	WHERE key = $1;`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) || undefinedTable(err) {
		return nil, ErrNotFound
	}
	return value, err
}

func (pg *Postgres) Set(ctx context.Context, key string, value []byte) error {
	_, err := pg.db.Exec(ctx, `
	INSERT INTO leaderboard_record (key, value)
	VALUES ($1, $2)
	ON CONFLICT (key)
	DO UPDATE SET value = excluded.value;`, key, json.RawMessage(value))
	return err
}

func (pg *Postgres) Delete(ctx context.Context, key string) error {
	_, err := pg.db.Exec(ctx, `
	DELETE FROM leaderboard_record
	WHERE key = $1;`, key)
	if undefinedTable(err) {
		return nil
	}
	return err
}

func (pg *Postgres) Close() error {
	pg.db.Close()
	return nil
}
