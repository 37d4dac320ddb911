package mines

import "github.com/gammazero/deque"

type Outcome int

const (
	Noop     Outcome = iota
	Opened           // one or more safe cells were revealed
	Marked           // a flag was placed or removed
	Exploded         // the player revealed a mine
	Cleared          // every safe cell is revealed
)

func (o Outcome) String() string {
	switch o {
	case Noop:
		return "noop"
	case Opened:
		return "opened"
	case Marked:
		return "marked"
	case Exploded:
		return "exploded"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Result describes what a single command did to the grid. Changed lists the
// cells whose player-visible state changed, in the order they changed.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	Changed  []Point `json:"changed,omitempty"`
	Revealed int     `json:"revealed"`
}

func (r Result) Terminal() bool {
	return r.Outcome == Exploded || r.Outcome == Cleared
}

func (g *Grid) noop() Result {
	return Result{Outcome: Noop, Revealed: g.revealed}
}

// playable reports whether commands may still change (row, col).
func (g *Grid) playable(row, col int) bool {
	return g.InBounds(row, col) && !g.Finished()
}

// OpenCell reveals (row, col). Revealed and flagged cells are left alone.
// Opening a cell with no mined neighbours keeps opening outwards until the
// region is bordered by numbered cells.
func (g *Grid) OpenCell(row, col int) Result {
	if !g.playable(row, col) || !g.populated {
		return g.noop()
	}
	i := g.index(row, col)
	if c := g.cells[i]; c.Revealed || c.Flagged {
		return g.noop()
	}
	res := Result{Outcome: Opened}
	g.open(i, &res)
	res.Revealed = g.revealed
	return res
}

// open reveals the unrevealed, unflagged cell i, cascades through empty
// cells and settles the outcome.
func (g *Grid) open(i int, res *Result) {
	g.reveal(i, res)

	if g.cells[i].Mine {
		g.exploded = i
		res.Outcome = Exploded
		return
	}

	if g.cells[i].Adjacent == 0 {
		g.flood(i, res)
	}

	if g.revealed == len(g.cells)-g.params.Mines {
		g.cleared = true
		res.Outcome = Cleared
	}
}

func (g *Grid) reveal(i int, res *Result) {
	g.cells[i].Revealed = true
	g.revealed++
	res.Changed = append(res.Changed, g.point(i))
}

// flood opens the connected region of empty cells around start and its
// numbered border. The work-list keeps stack usage flat on large boards.
func (g *Grid) flood(start int, res *Result) {
	var todo deque.Deque[int]
	todo.PushBack(start)
	for todo.Len() > 0 {
		i := todo.PopFront()
		g.eachNeighbour(i, func(j int) {
			c := &g.cells[j]
			if c.Revealed || c.Flagged || c.Mine {
				return
			}
			g.reveal(j, res)
			if c.Adjacent == 0 {
				todo.PushBack(j)
			}
		})
	}
}

// ChordCell opens every closed neighbour of a revealed numbered cell, but
// only when the number of flagged neighbours matches its count exactly.
func (g *Grid) ChordCell(row, col int) Result {
	if !g.playable(row, col) {
		return g.noop()
	}
	i := g.index(row, col)
	c := g.cells[i]
	if !c.Revealed || c.Mine || c.Adjacent == 0 {
		return g.noop()
	}

	flagged := 0
	closed := make([]int, 0, 8)
	g.eachNeighbour(i, func(j int) {
		switch {
		case g.cells[j].Flagged:
			flagged++
		case !g.cells[j].Revealed:
			closed = append(closed, j)
		}
	})
	if flagged != int(c.Adjacent) || len(closed) == 0 {
		return g.noop()
	}

	res := Result{Outcome: Opened}
	for _, j := range closed {
		if g.cells[j].Revealed {
			continue // opened by an earlier cascade
		}
		g.open(j, &res)
		if g.Finished() {
			break
		}
	}
	res.Revealed = g.revealed
	return res
}

// FlagCell toggles the flag on a closed cell. Flags may be placed before the
// mines are, and there may be more flags than mines.
func (g *Grid) FlagCell(row, col int) Result {
	if !g.playable(row, col) {
		return g.noop()
	}
	c := &g.cells[g.index(row, col)]
	if c.Revealed {
		return g.noop()
	}
	c.Flagged = !c.Flagged
	if c.Flagged {
		g.flags++
	} else {
		g.flags--
	}
	return Result{
		Outcome:  Marked,
		Changed:  []Point{{Row: row, Col: col}},
		Revealed: g.revealed,
	}
}

// DiscloseMines shows every mine after a loss, flagged or not, and marks wrong
// flags. The revealed counter is not affected. It returns the cells whose
// view changed.
func (g *Grid) DiscloseMines() []Point {
	if g.disclosed {
		return nil
	}
	g.disclosed = true
	var changed []Point
	for i, c := range g.cells {
		if c.Revealed {
			continue
		}
		if c.Mine || c.Flagged {
			changed = append(changed, g.point(i))
		}
	}
	return changed
}

// FlagMines marks every hidden mine as flagged after a win. The revealed
// counter is not affected.
func (g *Grid) FlagMines() []Point {
	var changed []Point
	for i := range g.cells {
		c := &g.cells[i]
		if c.Mine && !c.Revealed && !c.Flagged {
			c.Flagged = true
			g.flags++
			changed = append(changed, g.point(i))
		}
	}
	return changed
}
