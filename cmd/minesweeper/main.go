package main

import "os"

func main() {
	rootCmd.AddCommand(serveCmd, playCmd, leaderboardCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
