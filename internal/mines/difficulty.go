package mines

import (
	"fmt"
	"strings"
)

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Expert       Difficulty = "expert"
)

var presets = map[Difficulty]Params{
	Beginner:     {Rows: 9, Cols: 9, Mines: 10},
	Intermediate: {Rows: 16, Cols: 16, Mines: 40},
	Expert:       {Rows: 16, Cols: 30, Mines: 99},
}

// Difficulties lists the presets from easiest to hardest.
func Difficulties() []Difficulty {
	return []Difficulty{Beginner, Intermediate, Expert}
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := presets[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

func (d Difficulty) Params() (Params, bool) {
	p, ok := presets[d]
	return p, ok
}

func (d Difficulty) String() string {
	return string(d)
}
