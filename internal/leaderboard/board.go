package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/mines"
)

// Board applies the leaderboard rules on top of a [Backend]. Submissions are
// serialised, so concurrent wins cannot overwrite each other.
type Board struct {
	mu      sync.Mutex
	backend Backend
	log     logrus.FieldLogger
}

func New(backend Backend, log logrus.FieldLogger) *Board {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Board{backend: backend, log: log}
}

func checkDifficulty(d mines.Difficulty) error {
	if _, ok := d.Params(); !ok {
		return fmt.Errorf("%w: %q", mines.ErrUnknownDifficulty, d)
	}
	return nil
}

// Load returns the list for d. Missing and unreadable lists are empty.
func (b *Board) Load(ctx context.Context, d mines.Difficulty) (List, error) {
	if err := checkDifficulty(d); err != nil {
		return nil, err
	}
	return b.load(ctx, Key(d))
}

func (b *Board) load(ctx context.Context, key string) (List, error) {
	data, err := b.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return List{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", key, err)
	}
	l, err := Decode(data)
	if err != nil {
		b.log.WithError(err).WithField("key", key).Warn("discarding leaderboard")
	}
	return l, nil
}

// Submit records a finished game. rank is the 1-based position of the new
// entry, or 0 when the time did not make the list, in which case nothing is
// written.
func (b *Board) Submit(
	ctx context.Context, d mines.Difficulty, name string, time int,
) (l List, rank int, err error) {
	if err := checkDifficulty(d); err != nil {
		return nil, 0, err
	}
	if time < 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidTime, time)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := Key(d)
	l, err = b.load(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	l, rank = Insert(l, Entry{Name: SanitizeName(name), Time: time})
	if rank == 0 {
		return l, 0, nil
	}

	data, err := Encode(l)
	if err != nil {
		return nil, 0, err
	}
	if err := b.backend.Set(ctx, key, data); err != nil {
		return nil, 0, fmt.Errorf("unable to write %s: %w", key, err)
	}

	b.log.WithFields(logrus.Fields{
		"difficulty": d,
		"time":       time,
		"rank":       rank,
	}).Info("new best time")
	return l, rank, nil
}

// Clear removes the list for d.
func (b *Board) Clear(ctx context.Context, d mines.Difficulty) error {
	if err := checkDifficulty(d); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.backend.Delete(ctx, Key(d)); err != nil {
		return fmt.Errorf("unable to clear %s: %w", Key(d), err)
	}
	return nil
}

// Best returns the fastest recorded time for d.
func (b *Board) Best(ctx context.Context, d mines.Difficulty) (Entry, bool, error) {
	l, err := b.Load(ctx, d)
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := l.Best()
	return e, ok, nil
}

func (b *Board) Close() error {
	return b.backend.Close()
}
