package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		params Params
		err    bool
	}{
		{"square", "*..\n...\n..*", Params{3, 3, 2}, false},
		{"indented", "\n\t\t*.\n\t\t..\n", Params{2, 2, 1}, false},
		{"ragged", "*..\n..\n", Params{}, true},
		{"no mines", "...\n...", Params{}, true},
		{"all mines", "**\n**", Params{}, true},
		{"bad char", "*x.\n...", Params{}, true},
		{"empty", "\n\n", Params{}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g, err := ParseLayout(test.layout)
			if test.err {
				assert.ErrorIs(t, err, ErrInvalidLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.params, g.Params())
			assert.True(t, g.Populated())
		})
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g, err := NewGrid(Params{Rows: 16, Cols: 16, Mines: 40})
	require.NoError(t, err)
	require.NoError(t, g.PlaceMines(8, 8, r))

	h, err := ParseLayout(g.Layout())
	require.NoError(t, err)
	assert.Equal(t, g.cells, h.cells)
}

func TestSnapshotRestoresProgress(t *testing.T) {
	g := mustLayout(t, `
		*....
		.....
		.....
		...*.
		.....
	`)
	g.OpenCell(0, 4)
	g.FlagCell(3, 3)
	g.FlagCell(4, 0)

	data, err := g.Snapshot().Marshal()
	require.NoError(t, err)

	s, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	h, err := s.Grid()
	require.NoError(t, err)

	assert.Equal(t, g.Statuses(), h.Statuses())
	assert.Equal(t, g.Revealed(), h.Revealed())
	assert.Equal(t, g.Flags(), h.Flags())
	assert.Equal(t, g.Finished(), h.Finished())

	// Both grids keep playing identically.
	assert.Equal(t, g.OpenCell(4, 4), h.OpenCell(4, 4))
}

func TestSnapshotOutcome(t *testing.T) {
	layout := "*..\n...\n..*\n"

	lost := Snapshot{Params: "3:3:2", Layout: layout, Player: "o##\n###\n###\n"}
	g, err := lost.Grid()
	require.NoError(t, err)
	assert.True(t, g.Exploded())
	v, _ := g.View(2, 2)
	assert.Equal(t, UnflaggedMine, v.Status)

	won := Snapshot{Params: "3:3:2", Layout: layout, Player: "#oo\nooo\noo#\n"}
	g, err = won.Grid()
	require.NoError(t, err)
	assert.True(t, g.Cleared())
}

func TestSnapshotUnpopulated(t *testing.T) {
	g, err := NewGrid(Params{Rows: 9, Cols: 9, Mines: 10})
	require.NoError(t, err)
	g.FlagCell(0, 0)

	s := g.Snapshot()
	assert.Empty(t, s.Layout)

	h, err := s.Grid()
	require.NoError(t, err)
	assert.False(t, h.Populated())
	assert.Equal(t, 1, h.Flags())

	bad := Snapshot{Params: "9:9:10", Player: s.Player[:10] + "o" + s.Player[11:]}
	_, err = bad.Grid()
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestUnmarshalSnapshotRejectsGarbage(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte("params: [unterminated"))
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams("16:30:99")
	require.NoError(t, err)
	assert.Equal(t, Params{16, 30, 99}, p)
	assert.Equal(t, "16:30:99", p.String())

	_, err = ParseParams("16:30")
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = ParseParams("3:3:9")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestDifficulty(t *testing.T) {
	for _, d := range Difficulties() {
		p, ok := d.Params()
		require.True(t, ok)
		assert.NoError(t, p.Validate(), "%s", d)

		parsed, err := ParseDifficulty(" " + string(d) + " ")
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	d, err := ParseDifficulty("Expert")
	require.NoError(t, err)
	p, _ := d.Params()
	assert.Equal(t, Params{Rows: 16, Cols: 30, Mines: 99}, p)

	_, err = ParseDifficulty("nightmare")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
	_, ok := Difficulty("nightmare").Params()
	assert.False(t, ok)
}

func TestGridString(t *testing.T) {
	g := mustLayout(t, `
		*..
		...
		..*
	`)
	g.OpenCell(1, 1)
	g.FlagCell(0, 0)
	assert.Equal(t, "f # #\n# 2 #\n# # #\n", g.String())
}
