package mines

import (
	"fmt"
	"strconv"
	"strings"
)

// MineMarker is stored in [Cell.Adjacent] of mined cells. It is never a count.
const MineMarker = -1

type Cell struct {
	Mine     bool
	Adjacent int8
	Revealed bool
	Flagged  bool
}

// Count returns the number of mined neighbours. ok is false for mines.
func (c Cell) Count() (n int, ok bool) {
	if c.Mine {
		return 0, false
	}
	return int(c.Adjacent), true
}

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type CellStatus int8

const (
	Unknown       CellStatus = -2
	Flag          CellStatus = -1
	CorrectFlag   CellStatus = 64 // post-game-over
	ExplodedMine  CellStatus = 65
	WrongFlag     CellStatus = 66
	UnflaggedMine CellStatus = 67
	// 0-8 for open cells with the given number of mined neighbours
)

func (s CellStatus) String() string {
	switch s {
	case Unknown:
		return "#"
	case Flag:
		return "f"
	case 0:
		return "."
	case 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	case CorrectFlag:
		return "F"
	case ExplodedMine:
		return "X"
	case WrongFlag:
		return "x"
	case UnflaggedMine:
		return "*"
	default:
		return "!"
	}
}

// CellView is what a presentation layer may know about a cell. Mine is set
// only once the mine is visible, Adjacent only for revealed safe cells.
type CellView struct {
	Revealed bool       `json:"revealed"`
	Flagged  bool       `json:"flagged"`
	Mine     bool       `json:"mine"`
	Adjacent int        `json:"adjacent"`
	Status   CellStatus `json:"status"`
}

// Grid holds the cells of one board in row-major order.
type Grid struct {
	params    Params
	cells     []Cell
	populated bool
	revealed  int
	flags     int
	exploded  int // index of the mine the player hit, -1 if none
	cleared   bool
	disclosed bool
}

func NewGrid(params Params) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return newGrid(params), nil
}

func newGrid(params Params) *Grid {
	return &Grid{
		params:   params,
		cells:    make([]Cell, params.Cells()),
		exploded: -1,
	}
}

func (g *Grid) Params() Params  { return g.params }
func (g *Grid) Rows() int       { return g.params.Rows }
func (g *Grid) Cols() int       { return g.params.Cols }
func (g *Grid) Mines() int      { return g.params.Mines }
func (g *Grid) Populated() bool { return g.populated }
func (g *Grid) Revealed() int   { return g.revealed }
func (g *Grid) Flags() int      { return g.flags }
func (g *Grid) Exploded() bool  { return g.exploded >= 0 }
func (g *Grid) Cleared() bool   { return g.cleared }
func (g *Grid) Finished() bool  { return g.Exploded() || g.cleared }

func (g *Grid) InBounds(row, col int) bool {
	return g.params.InBounds(row, col)
}

// MinesRemaining is the mine counter shown to the player. Flags beyond the
// mine count are allowed, so the value is clamped at zero.
func (g *Grid) MinesRemaining() int {
	return max(0, g.params.Mines-g.flags)
}

// ExplodedAt returns the mine the player hit.
func (g *Grid) ExplodedAt() (Point, bool) {
	if g.exploded < 0 {
		return Point{}, false
	}
	return g.point(g.exploded), true
}

func (g *Grid) Cell(row, col int) (Cell, bool) {
	if !g.InBounds(row, col) {
		return Cell{}, false
	}
	return g.cells[g.index(row, col)], true
}

func (g *Grid) index(row, col int) int {
	return row*g.params.Cols + col
}

func (g *Grid) point(i int) Point {
	return Point{Row: i / g.params.Cols, Col: i % g.params.Cols}
}

// eachNeighbour calls fn with the index of every in-bounds cell adjacent to i.
func (g *Grid) eachNeighbour(i int, fn func(j int)) {
	p := g.point(i)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := p.Row+dr, p.Col+dc
			if g.InBounds(r, c) {
				fn(g.index(r, c))
			}
		}
	}
}

// Neighbors returns the up to 8 in-bounds positions adjacent to (row, col).
func (g *Grid) Neighbors(row, col int) []Point {
	if !g.InBounds(row, col) {
		return nil
	}
	ps := make([]Point, 0, 8)
	g.eachNeighbour(g.index(row, col), func(j int) {
		ps = append(ps, g.point(j))
	})
	return ps
}

func (g *Grid) status(i int) CellStatus {
	c := g.cells[i]
	switch {
	case c.Revealed && c.Mine:
		return ExplodedMine
	case c.Revealed:
		return CellStatus(c.Adjacent)
	case g.disclosed && c.Mine && c.Flagged:
		return CorrectFlag
	case g.disclosed && c.Mine:
		return UnflaggedMine
	case g.disclosed && c.Flagged:
		return WrongFlag
	case g.cleared && c.Mine:
		return CorrectFlag
	case c.Flagged:
		return Flag
	default:
		return Unknown
	}
}

func (g *Grid) View(row, col int) (CellView, bool) {
	if !g.InBounds(row, col) {
		return CellView{}, false
	}
	i := g.index(row, col)
	c := g.cells[i]
	v := CellView{
		Revealed: c.Revealed,
		Flagged:  c.Flagged,
		Mine:     c.Mine && (c.Revealed || g.disclosed || g.cleared),
		Status:   g.status(i),
	}
	if c.Revealed && !c.Mine {
		v.Adjacent = int(c.Adjacent)
	}
	return v, true
}

// Statuses returns the player view of every cell in row-major order.
func (g *Grid) Statuses() []CellStatus {
	out := make([]CellStatus, len(g.cells))
	for i := range g.cells {
		out[i] = g.status(i)
	}
	return out
}

func (g *Grid) String() string {
	var b strings.Builder
	for row := range g.params.Rows {
		for col := range g.params.Cols {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(g.status(g.index(row, col)).String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *Grid) GoString() string {
	return fmt.Sprintf("mines.Grid{%s populated=%t revealed=%d flags=%d}",
		g.params, g.populated, g.revealed, g.flags)
}
