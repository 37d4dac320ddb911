package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/mines"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show or clear the best times",
}

var leaderboardShowCmd = &cobra.Command{
	Use:   "show [difficulty...]",
	Short: "Show the best times, for every difficulty by default",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := parseDifficulties(args)
		if err != nil {
			return err
		}
		board, err := openBoard(cmd.Context())
		if err != nil {
			return err
		}
		defer board.Close()

		for _, d := range ds {
			list, err := board.Load(cmd.Context(), d)
			if err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), d, list)
		}
		return nil
	},
}

var leaderboardClearCmd = &cobra.Command{
	Use:   "clear <difficulty>",
	Short: "Remove every time recorded for a difficulty",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := mines.ParseDifficulty(args[0])
		if err != nil {
			return err
		}
		board, err := openBoard(cmd.Context())
		if err != nil {
			return err
		}
		defer board.Close()

		if err := board.Clear(cmd.Context(), d); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", d)
		return nil
	},
}

func init() {
	leaderboardCmd.AddCommand(leaderboardShowCmd, leaderboardClearCmd)
}

func parseDifficulties(args []string) ([]mines.Difficulty, error) {
	if len(args) == 0 {
		return mines.Difficulties(), nil
	}
	ds := make([]mines.Difficulty, 0, len(args))
	for _, arg := range args {
		d, err := mines.ParseDifficulty(arg)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}

func printList(w io.Writer, d mines.Difficulty, list leaderboard.List) {
	fmt.Fprintf(w, "%s\n", d)
	if len(list) == 0 {
		fmt.Fprintln(w, "  no times yet")
		return
	}
	for i, e := range list {
		fmt.Fprintf(w, "  %d. %s\n", i+1, e)
	}
}
