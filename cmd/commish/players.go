package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/omarshaarawi/commish/internal/api/sleeper"
	"github.com/omarshaarawi/commish/internal/players"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage the Sleeper player directory",
}

var playersSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the NFL player directory from Sleeper into PLAYERS_FILE",
	Long: `Download the NFL player directory from Sleeper and keep only the names
the recap needs. Sleeper asks that this be done at most once a day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		api := sleeper.NewAPI(sleeper.NewClient(cfg.SleeperAPI.BaseURL, 2*time.Minute), cfg.Server.PlayersFile)
		dir, err := api.FetchPlayers(ctx)
		if err != nil {
			return err
		}
		if err := players.Save(cfg.Server.PlayersFile, dir); err != nil {
			return fmt.Errorf("saving player directory: %w", err)
		}
		slog.Info("Saved player directory", "path", cfg.Server.PlayersFile, "players", len(dir))
		return nil
	},
}

func init() {
	playersCmd.AddCommand(playersSyncCmd)
}
