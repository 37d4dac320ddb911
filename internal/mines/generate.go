package mines

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"
)

// placementAttempts bounds rejection sampling per mine before the remaining
// mines are drawn from an explicit candidate list.
const placementAttempts = 32

func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// PlaceMines populates the grid with exactly Mines() mines, none of which is
// at (excludeRow, excludeCol) or within one cell of it, and computes the
// adjacency counts. Every allowed cell is equally likely to be mined.
func (g *Grid) PlaceMines(excludeRow, excludeCol int, r *rand.Rand) error {
	if g.populated {
		return ErrAlreadyPopulated
	}
	if !g.InBounds(excludeRow, excludeCol) {
		return fmt.Errorf("%w: (%d, %d) on a %dx%d grid",
			ErrOutOfBounds, excludeRow, excludeCol, g.Rows(), g.Cols())
	}
	if r == nil {
		r = NewRand()
	}

	allowed := func(i int) bool {
		p := g.point(i)
		return absDiff(p.Row, excludeRow) > 1 || absDiff(p.Col, excludeCol) > 1
	}

	var (
		total  = len(g.cells)
		want   = g.params.Mines
		placed = 0
	)

	for budget := want * placementAttempts; placed < want && budget > 0; budget-- {
		i := r.IntN(total)
		if !allowed(i) || g.cells[i].Mine {
			continue
		}
		g.cells[i].Mine = true
		placed++
	}

	if placed < want {
		candidates := make([]int, 0, total)
		for i := range total {
			if allowed(i) && !g.cells[i].Mine {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) < want-placed {
			g.clearMines()
			return fmt.Errorf("%w: only %d cells available for %d mines",
				ErrInvalidParams, len(candidates)+placed, want)
		}
		k := len(candidates)
		for ; placed < want; placed++ {
			i := r.IntN(k)
			g.cells[candidates[i]].Mine = true
			k--
			candidates[i] = candidates[k]
		}
	}

	g.computeAdjacency()
	g.populated = true

	if c := g.cells[g.index(excludeRow, excludeCol)]; c.Mine || c.Adjacent != 0 {
		return AssertionError{"mine next to the starting cell"}
	}
	return nil
}

func (g *Grid) clearMines() {
	for i := range g.cells {
		g.cells[i].Mine = false
		g.cells[i].Adjacent = 0
	}
}

func (g *Grid) computeAdjacency() {
	for i := range g.cells {
		if g.cells[i].Mine {
			g.cells[i].Adjacent = MineMarker
			continue
		}
		var n int8
		g.eachNeighbour(i, func(j int) {
			if g.cells[j].Mine {
				n++
			}
		})
		g.cells[i].Adjacent = n
	}
}
