package main

import (
	"context"
	"strings"

	"github.com/omarshaarawi/commish/internal/api/espn"
	"github.com/omarshaarawi/commish/internal/api/fantasy"
	"github.com/omarshaarawi/commish/internal/api/sleeper"
	"github.com/omarshaarawi/commish/internal/api/yahoo"
	"github.com/omarshaarawi/commish/internal/config"
	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/repository/memory"
	"github.com/omarshaarawi/commish/internal/service"
)

type app struct {
	recaps  *service.RecapService
	repo    *memory.Repository
	sleeper *sleeper.API
	// yahoo is nil unless a Yahoo app is configured.
	yahoo *yahoo.API
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	espnAPI := espn.NewAPI(espn.NewClient(cfg.ESPNAPI.BaseURL, cfg.ESPNAPI.Timeout))
	sleeperAPI := sleeper.NewAPI(sleeper.NewClient(cfg.SleeperAPI.BaseURL, cfg.SleeperAPI.Timeout), cfg.Server.PlayersFile)

	loaders := map[models.Platform]fantasy.Loader{
		models.PlatformESPN:    espnAPI,
		models.PlatformSleeper: sleeperAPI,
	}

	var yahooAPI *yahoo.API
	if cfg.YahooAPI.Enabled() {
		yahooAPI = yahoo.NewAPI(yahoo.NewClient(yahoo.Config{
			ClientID:     cfg.YahooAPI.ClientID,
			ClientSecret: cfg.YahooAPI.ClientSecret,
			RedirectURL:  cfg.YahooAPI.RedirectURL,
			Timeout:      cfg.YahooAPI.Timeout,
		}))
		loaders[models.PlatformYahoo] = yahooAPI
	}

	repo := memory.NewRepository(cfg.Server.SnapshotTTL)

	opts, err := narratorOptions(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	return &app{
		recaps:  service.NewRecapService(fantasy.NewAPI(loaders), repo, opts...),
		repo:    repo,
		sleeper: sleeperAPI,
		yahoo:   yahooAPI,
	}, nil
}

// narratorOptions picks the streaming model. OpenAI moderation screens the
// character whenever an OpenAI key is present, even when Gemini narrates.
func narratorOptions(ctx context.Context, c config.LLM) ([]service.Option, error) {
	var moderator llm.Moderator
	var openai *llm.OpenAIClient
	if c.OpenAIKey != "" {
		openai = llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:     c.OpenAIKey,
			BaseURL:    c.OpenAIURL,
			Model:      c.OpenAIModel,
			Timeout:    c.Timeout,
			MaxRetries: c.MaxRetries,
			Backoff:    c.RetryBackoff,
		})
		moderator = openai
	}

	switch strings.ToLower(c.Provider) {
	case "openai":
		return []service.Option{service.WithNarrator(openai, moderator)}, nil
	case "gemini":
		gemini, err := llm.NewGeminiClient(ctx, c.GeminiKey, c.GeminiModel)
		if err != nil {
			return nil, err
		}
		return []service.Option{service.WithNarrator(gemini, moderator)}, nil
	default:
		return nil, nil
	}
}
