package session

import (
	"fmt"
	"strings"

	"github.com/vancomm/minesweeper/internal/mines"
)

// View is a full snapshot of what the player may see.
type View struct {
	ID             string             `json:"id"`
	Difficulty     mines.Difficulty   `json:"difficulty"`
	Rows           int                `json:"rows"`
	Cols           int                `json:"cols"`
	Mines          int                `json:"mines"`
	State          State              `json:"state"`
	Elapsed        int                `json:"elapsed"`
	MinesRemaining int                `json:"mines_remaining"`
	Revealed       int                `json:"revealed"`
	Grid           []mines.CellStatus `json:"grid"` // row-major
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ID:             s.id,
		Difficulty:     s.difficulty,
		Rows:           s.grid.Rows(),
		Cols:           s.grid.Cols(),
		Mines:          s.grid.Mines(),
		State:          s.state,
		Elapsed:        s.elapsed,
		MinesRemaining: s.grid.MinesRemaining(),
		Revealed:       s.grid.Revealed(),
		Grid:           s.grid.Statuses(),
	}
}

func (v View) Status(row, col int) mines.CellStatus {
	return v.Grid[row*v.Cols+col]
}

// String renders the counters and the board with row and column numbers.
func (v View) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  mines %03d  time %03d  %s\n",
		v.Difficulty, v.MinesRemaining, v.Elapsed, v.State)

	b.WriteString("   ")
	for col := range v.Cols {
		fmt.Fprintf(&b, "%3d", col)
	}
	b.WriteByte('\n')
	for row := range v.Rows {
		fmt.Fprintf(&b, "%3d", row)
		for col := range v.Cols {
			fmt.Fprintf(&b, "%3s", v.Status(row, col))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
