package leaderboard

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("value not found")
	ErrBadName        = errors.New("bad name for store")
	ErrCorrupt        = errors.New("corrupt leaderboard data")
	ErrInvalidTime    = errors.New("time must not be negative")
	ErrUnknownBackend = errors.New("unknown leaderboard backend")
)

// Backend is a key-value store for encoded lists. Get returns [ErrNotFound]
// for absent keys; deleting an absent key is not an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func isKeyChar(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
		'0' <= c && c <= '9' || c == '_' || c == '-'
}

// validKey reports whether key is safe to use as a file name or table name.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, c := range key {
		if !isKeyChar(c) {
			return false
		}
	}
	return true
}
