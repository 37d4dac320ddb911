package mines

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	layoutMine = '*'
	layoutSafe = '.'
)

// ParseLayout builds a populated grid from rows of '*' (mine) and '.' (safe).
// Blank lines and surrounding whitespace are ignored. The first-click rule is
// not applied, so any layout with at least one mine and one safe cell is
// accepted.
func ParseLayout(layout string) (*Grid, error) {
	var rows []string
	for _, line := range strings.Split(layout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidLayout)
	}

	params := Params{Rows: len(rows), Cols: len(rows[0])}
	for r, row := range rows {
		if len(row) != params.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrInvalidLayout, r, len(row), params.Cols)
		}
		params.Mines += strings.Count(row, string(layoutMine))
	}
	if err := params.validateShape(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	g := newGrid(params)
	for r, row := range rows {
		for c, ch := range []byte(row) {
			switch ch {
			case layoutMine:
				g.cells[g.index(r, c)].Mine = true
			case layoutSafe:
			default:
				return nil, fmt.Errorf("%w: unexpected %q at (%d, %d)",
					ErrInvalidLayout, ch, r, c)
			}
		}
	}
	g.computeAdjacency()
	g.populated = true
	return g, nil
}

// Layout prints the mine positions in the format read by [ParseLayout].
// Unpopulated grids print as all safe.
func (g *Grid) Layout() string {
	var b strings.Builder
	for row := range g.params.Rows {
		for col := range g.params.Cols {
			if g.cells[g.index(row, col)].Mine {
				b.WriteByte(layoutMine)
			} else {
				b.WriteByte(layoutSafe)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Snapshot is a human-readable dump of a grid: where the mines are and what
// the player has done so far.
type Snapshot struct {
	Params string `yaml:"params"`
	Layout string `yaml:"layout,omitempty"`
	Player string `yaml:"player"`
}

func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Params: g.params.String(),
		Player: g.playerLayout(),
	}
	if g.populated {
		s.Layout = g.Layout()
	}
	return s
}

// playerLayout writes one character per cell: 'f' flagged, 'o' revealed,
// '#' closed.
func (g *Grid) playerLayout() string {
	var b strings.Builder
	for row := range g.params.Rows {
		for col := range g.params.Cols {
			c := g.cells[g.index(row, col)]
			switch {
			case c.Revealed:
				b.WriteByte('o')
			case c.Flagged:
				b.WriteByte('f')
			default:
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (s Snapshot) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	return s, nil
}

// Grid rebuilds the grid described by the snapshot, including reveals and
// flags, and recomputes the counters and the game outcome.
func (s Snapshot) Grid() (*Grid, error) {
	var g *Grid
	if strings.TrimSpace(s.Layout) == "" {
		p, err := ParseParams(s.Params)
		if err != nil {
			return nil, err
		}
		g = newGrid(p)
	} else {
		var err error
		if g, err = ParseLayout(s.Layout); err != nil {
			return nil, err
		}
	}

	rows := strings.Fields(s.Player)
	if len(rows) != g.Rows() {
		return nil, fmt.Errorf("%w: player view has %d rows, want %d",
			ErrInvalidLayout, len(rows), g.Rows())
	}
	for r, row := range rows {
		if len(row) != g.Cols() {
			return nil, fmt.Errorf("%w: player row %d has %d cells, want %d",
				ErrInvalidLayout, r, len(row), g.Cols())
		}
		for c, ch := range []byte(row) {
			i := g.index(r, c)
			switch ch {
			case 'o':
				if !g.populated {
					return nil, fmt.Errorf("%w: revealed cell without a layout", ErrInvalidLayout)
				}
				g.cells[i].Revealed = true
				g.revealed++
				if g.cells[i].Mine {
					g.exploded = i
				}
			case 'f':
				g.cells[i].Flagged = true
				g.flags++
			case '#':
			default:
				return nil, fmt.Errorf("%w: unexpected %q in player view at (%d, %d)",
					ErrInvalidLayout, ch, r, c)
			}
		}
	}

	switch {
	case g.exploded >= 0:
		g.disclosed = true
	case g.populated && g.revealed == len(g.cells)-g.params.Mines:
		g.cleared = true
	}
	return g, nil
}
