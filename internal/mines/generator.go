package mines

import (
	"fmt"
	"strings"
)

type Params struct {
	Rows, Cols, Mines int
}

func (p Params) Unpack() (rows int, cols int, mines int) {
	return p.Rows, p.Cols, p.Mines
}

func (p Params) Cells() int {
	return p.Rows * p.Cols
}

// safeZone is the size of the largest first-click neighbourhood the grid can
// have. Mines must fit outside of it wherever the first click lands.
func (p Params) safeZone() int {
	return min(3, p.Rows) * min(3, p.Cols)
}

func (p Params) validateShape() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1 (have %dx%d)",
			ErrInvalidParams, p.Rows, p.Cols)
	}
	if p.Mines <= 0 {
		return fmt.Errorf("%w: mine count must be positive (have %d)",
			ErrInvalidParams, p.Mines)
	}
	if p.Mines >= p.Cells() {
		return fmt.Errorf("%w: %d mines do not fit into %d cells",
			ErrInvalidParams, p.Mines, p.Cells())
	}
	return nil
}

// Validate rejects configurations that cannot be played: empty grids, no
// mines, and grids too crowded to keep any first click and its neighbours
// mine-free.
func (p Params) Validate() error {
	if err := p.validateShape(); err != nil {
		return err
	}
	if usable := p.Cells() - p.safeZone(); p.Mines > usable {
		return fmt.Errorf(
			"%w: %d mines exceed the %d cells usable outside the first click",
			ErrInvalidParams, p.Mines, usable,
		)
	}
	return nil
}

func (p Params) InBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

func (p Params) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.Mines)
}

func ParseParams(s string) (Params, error) {
	var p Params
	ss := strings.ReplaceAll(s, ":", " ")
	n, err := fmt.Sscanf(ss, "%d %d %d", &p.Rows, &p.Cols, &p.Mines)
	if n != 3 || err != nil {
		return Params{}, fmt.Errorf(
			`%w: cannot parse "%s" (n = %d, err = %v)`, ErrInvalidParams, s, n, err,
		)
	}
	return p, p.Validate()
}
