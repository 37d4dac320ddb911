package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper/internal/mines"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("invalid arguments")
)

// Maps known commands to the number of arguments they take. "n" takes an
// optional difficulty.
var commandNargs = map[string][2]int{
	"g": {0, 0},
	"o": {2, 2},
	"f": {2, 2},
	"c": {2, 2},
	"n": {0, 1},
}

type Command struct {
	Name       string
	Row, Col   int
	Difficulty mines.Difficulty
}

func parseRowCol(two []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(two[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: row must be an int", ErrBadArguments)
	}
	if col, err = strconv.Atoi(two[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: column must be an int", ErrBadArguments)
	}
	return row, col, nil
}

// ParseCommand reads one line command: "o r c" opens, "f r c" flags,
// "c r c" chords, "n [difficulty]" starts a new game and "g" only asks for
// the current view.
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}
	args := parts[1:]
	if len(args) < nargs[0] || len(args) > nargs[1] {
		return Command{}, fmt.Errorf("%w: %q takes %d to %d arguments",
			ErrBadArguments, parts[0], nargs[0], nargs[1])
	}

	cmd := Command{Name: parts[0]}
	switch cmd.Name {
	case "o", "f", "c":
		row, col, err := parseRowCol(args)
		if err != nil {
			return Command{}, err
		}
		cmd.Row, cmd.Col = row, col
	case "n":
		if len(args) == 1 {
			d, err := mines.ParseDifficulty(args[0])
			if err != nil {
				return Command{}, err
			}
			cmd.Difficulty = d
		}
	}
	return cmd, nil
}

// Execute applies cmd. Coordinates off the board are reported as
// [mines.ErrOutOfBounds] rather than ignored.
func (s *Session) Execute(cmd Command) (mines.Result, error) {
	switch cmd.Name {
	case "g":
		return s.result(), nil
	case "o", "f", "c":
		if _, ok := s.Cell(cmd.Row, cmd.Col); !ok {
			return mines.Result{}, fmt.Errorf("%w: (%d, %d)",
				mines.ErrOutOfBounds, cmd.Row, cmd.Col)
		}
		switch cmd.Name {
		case "o":
			return s.Open(cmd.Row, cmd.Col), nil
		case "f":
			return s.ToggleFlag(cmd.Row, cmd.Col), nil
		default:
			return s.Chord(cmd.Row, cmd.Col), nil
		}
	case "n":
		d := cmd.Difficulty
		if d == "" {
			d = s.Difficulty()
		}
		if err := s.Start(d); err != nil {
			return mines.Result{}, err
		}
		return s.result(), nil
	}
	return mines.Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
}

// ExecuteLine parses and applies a line command.
func (s *Session) ExecuteLine(line string) (mines.Result, error) {
	cmd, err := ParseCommand(line)
	if err != nil {
		return mines.Result{}, err
	}
	return s.Execute(cmd)
}

func (s *Session) result() mines.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noopLocked()
}
