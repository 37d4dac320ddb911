package mines

import "errors"

var (
	ErrInvalidParams     = errors.New("invalid game params")
	ErrOutOfBounds       = errors.New("cell position out of bounds")
	ErrAlreadyPopulated  = errors.New("mines are already placed")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidLayout     = errors.New("invalid grid layout")
)

// AssertionError reports a broken internal invariant. It is returned, never
// panicked.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
