package leaderboard

import (
	"encoding/json"
	"fmt"
)

// Encode serializes l as a JSON array of {"name", "time"} objects.
func Encode(l List) ([]byte, error) {
	if l == nil {
		l = List{}
	}
	return json.Marshal(l)
}

// Decode parses a stored list. Empty input is an empty list. On error the
// returned list is empty, never nil.
func Decode(data []byte) (List, error) {
	if len(data) == 0 {
		return List{}, nil
	}
	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return List{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return l.normalize(), nil
}
