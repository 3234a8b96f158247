package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/omarshaarawi/commish/internal/bot"
	"github.com/omarshaarawi/commish/internal/mcpserver"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/notify"
	"github.com/omarshaarawi/commish/internal/scheduler"
	"github.com/omarshaarawi/commish/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web form, MCP endpoint, Telegram bot and weekly scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	league, err := cfg.DefaultLeague()
	if err != nil {
		slog.Warn("No default league configured, bot and scheduled recaps are disabled", "error", err)
		league = models.LeagueRequest{}
	}
	persona := cfg.Persona()

	var senders []scheduler.Sender
	if cfg.Slack.WebhookURL != "" {
		senders = append(senders, notify.NewSlack(cfg.Slack.WebhookURL, cfg.Slack.Username))
	}

	if cfg.TelegramBot.Enabled() && league.LeagueID != "" {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, bot.NewHandler(a.recaps, league, persona))
		if err != nil {
			return err
		}
		senders = append(senders, telegramBot)

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	}

	sched, err := scheduler.NewScheduler(a.recaps, league, persona, senders...)
	if err != nil {
		return err
	}
	sched.PurgeCache(a.repo, cfg.Server.SnapshotTTL)
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	var yahooAuth web.AuthURLer
	if a.yahoo != nil {
		yahooAuth = a.yahoo
	}
	mux := web.NewHandlers(a.recaps, yahooAuth).Routes()
	mux.Handle("/mcp", mcpserver.Handler(mcpserver.NewServer(a.recaps, version), cfg.Server.MCPAPIKey))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           web.WithRequestID(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", srv.Addr, "narration", a.recaps.CanNarrate(), "yahoo", a.yahoo != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errs:
		return err
	}
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
