package leaderboard

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vancomm/minesweeper/internal/mines"
)

const (
	MaxEntries    = 5
	MaxNameLength = 12 // runes
	DefaultName   = "Anon"

	keyPrefix = "mines_leaders_"
)

type Entry struct {
	Name string `json:"name"`
	Time int    `json:"time"` // seconds
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %03ds", e.Name, e.Time)
}

// List is a leaderboard sorted by ascending time.
type List []Entry

// Key is the storage key of the leaderboard for d.
func Key(d mines.Difficulty) string {
	return keyPrefix + d.String()
}

// SanitizeName trims name, falls back to [DefaultName] when nothing is left
// and cuts it to [MaxNameLength] runes.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
		name = strings.TrimSpace(name)
	}
	return name
}

// Qualifies reports whether a run of the given time would enter the list.
func (l List) Qualifies(time int) bool {
	return len(l) < MaxEntries || time < l[len(l)-1].Time
}

// Insert returns l with e added in time order and the 1-based rank of e. When
// e does not qualify, l is returned unchanged with rank 0. Ties keep the older
// entry ahead. l itself is never modified.
func Insert(l List, e Entry) (List, int) {
	if !l.Qualifies(e.Time) {
		return l, 0
	}
	i := sort.Search(len(l), func(i int) bool { return l[i].Time > e.Time })
	out := slices.Insert(slices.Clone(l), i, e)
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out, i + 1
}

// Best returns the fastest entry.
func (l List) Best() (Entry, bool) {
	if len(l) == 0 {
		return Entry{}, false
	}
	return l[0], true
}

// normalize makes data read from storage obey the list rules again.
func (l List) normalize() List {
	out := make(List, 0, len(l))
	for _, e := range l {
		if e.Time < 0 {
			continue
		}
		e.Name = SanitizeName(e.Name)
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b Entry) int { return a.Time - b.Time })
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}
