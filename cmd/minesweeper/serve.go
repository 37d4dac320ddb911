package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and WebSocket API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(
			context.Background(),
			os.Interrupt, syscall.SIGTERM,
		)
		defer stop()

		log.Info("starting up, mode = ", conf.Mode)

		board, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := board.Close(); err != nil {
				log.WithError(err).Warn("unable to close leaderboard")
			}
		}()

		srv, err := server.New(conf, log, board)
		if err != nil {
			return err
		}
		if err := srv.Run(ctx); err != nil {
			log.WithError(err).Error("server stopped")
			return err
		}
		log.Info("shut down gracefully")
		return nil
	},
}
