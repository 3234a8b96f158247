package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/omarshaarawi/commish/internal/config"
)

var version = "dev"

var (
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "commish",
	Short: "Weekly fantasy football recaps for ESPN, Yahoo and Sleeper leagues",
	Long: `commish computes a weekly recap for a fantasy football league: top team,
standings, player awards, blowout, closest game and hottest streak, optionally
narrated by an LLM in the voice of a character you pick.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Error("Error loading .env file", "error", err)
		}

		c, err := config.New()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = c

		level := c.Server.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		return setupLogging(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd, recapCmd, playersCmd)
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}
