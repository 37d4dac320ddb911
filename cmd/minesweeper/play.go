package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/session"
)

const playHelp = `commands:
  o ROW COL   open a cell
  f ROW COL   flag or unflag a cell
  c ROW COL   open the neighbours of a satisfied number
  n [DIFF]    new game: beginner, intermediate or expert
  g           redraw the board
  h           this help
  q           quit
`

var playFlags struct {
	difficulty string
	name       string
	dump       bool
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := mines.ParseDifficulty(playFlags.difficulty)
		if err != nil {
			return err
		}
		if conf.Production() {
			log.SetLevel(logrus.WarnLevel)
		}

		board, err := openBoard(cmd.Context())
		if err != nil {
			return err
		}
		defer board.Close()

		s, err := session.New(d,
			session.WithLeaderboard(board),
			session.WithPlayer(playFlags.name),
			session.WithLogger(log),
			session.WithTickInterval(conf.Session.TickInterval.Duration),
		)
		if err != nil {
			return err
		}
		defer s.Dispose()

		return play(s, cmd.InOrStdin(), cmd.OutOrStdout(), playFlags.dump)
	},
}

func init() {
	playCmd.Flags().StringVarP(&playFlags.difficulty, "difficulty", "d", string(mines.Beginner),
		"beginner, intermediate or expert")
	playCmd.Flags().StringVarP(&playFlags.name, "name", "n", "", "name recorded on the leaderboard")
	playCmd.Flags().BoolVar(&playFlags.dump, "dump", false,
		"print the YAML snapshot of the board when a game ends")
}

// play reads line commands from in until it is exhausted or the player quits.
func play(s *session.Session, in io.Reader, out io.Writer, dump bool) error {
	var notes []string
	cancel := s.Subscribe(func(e session.Event) {
		switch e := e.(type) {
		case session.GameWon:
			if e.Rank > 0 {
				notes = append(notes, fmt.Sprintf("you won in %ds, #%d on the %s leaderboard",
					e.Elapsed, e.Rank, s.Difficulty()))
			} else {
				notes = append(notes, fmt.Sprintf("you won in %ds", e.Elapsed))
			}
		case session.GameLost:
			notes = append(notes, fmt.Sprintf("boom at (%d, %d)", e.At.Row, e.At.Col))
		}
	})
	defer cancel()

	fmt.Fprint(out, s.View())
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit":
			return nil
		case "h", "help", "?":
			fmt.Fprint(out, playHelp)
			continue
		}

		res, err := s.ExecuteLine(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprint(out, s.View())
		for _, note := range notes {
			fmt.Fprintln(out, note)
		}
		notes = notes[:0]

		if dump && res.Terminal() {
			b, err := s.Snapshot().Marshal()
			if err != nil {
				return err
			}
			out.Write(b)
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
