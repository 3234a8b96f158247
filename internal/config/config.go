package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
)

type Config struct {
	Server      Server
	League      League
	ESPNAPI     ESPNAPI
	SleeperAPI  SleeperAPI
	YahooAPI    YahooAPI
	LLM         LLM
	TelegramBot TelegramBot
	Slack       Slack
}

type Server struct {
	Addr        string        `envconfig:"ADDR" default:":8080"`
	SnapshotTTL time.Duration `envconfig:"SNAPSHOT_TTL" default:"10m"`
	PlayersFile string        `envconfig:"PLAYERS_FILE" default:"data/players.json"`
	MCPAPIKey   string        `envconfig:"MCP_API_KEY"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
}

// League is the default league used by the bot, the scheduler and the CLI.
type League struct {
	Platform  string `envconfig:"LEAGUE_PLATFORM" default:"espn"`
	LeagueID  string `envconfig:"LEAGUE_ID"`
	Year      int    `envconfig:"YEAR"`
	Character string `envconfig:"CHARACTER"`
	TrashTalk int    `envconfig:"TRASH_TALK" default:"5"`
}

type ESPNAPI struct {
	BaseURL string        `envconfig:"ESPN_BASE_URL" default:"https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"`
	Timeout time.Duration `envconfig:"ESPN_TIMEOUT" default:"15s"`
	SWID    string        `envconfig:"SWID"`
	ESPNS2  string        `envconfig:"ESPN_S2"`
}

type SleeperAPI struct {
	BaseURL string        `envconfig:"SLEEPER_BASE_URL" default:"https://api.sleeper.app/v1"`
	Timeout time.Duration `envconfig:"SLEEPER_TIMEOUT" default:"15s"`
}

type YahooAPI struct {
	ClientID     string        `envconfig:"YAHOO_CLIENT_ID"`
	ClientSecret string        `envconfig:"YAHOO_CLIENT_SECRET"`
	RedirectURL  string        `envconfig:"YAHOO_REDIRECT_URL" default:"oob"`
	Timeout      time.Duration `envconfig:"YAHOO_TIMEOUT" default:"20s"`
}

func (y YahooAPI) Enabled() bool {
	return y.ClientID != "" && y.ClientSecret != ""
}

type LLM struct {
	// Provider is openai, gemini or empty to skip narration.
	Provider     string        `envconfig:"LLM_PROVIDER"`
	OpenAIKey    string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIURL    string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	GeminiKey    string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	Timeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"2m"`
	MaxRetries   int           `envconfig:"LLM_MAX_RETRIES" default:"3"`
	RetryBackoff time.Duration `envconfig:"LLM_RETRY_BACKOFF" default:"1s"`
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

func (t TelegramBot) Enabled() bool {
	return t.Token != ""
}

type Slack struct {
	WebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
	Username   string `envconfig:"SLACK_USERNAME" default:"Commish"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LLM.Provider) {
	case "":
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.TelegramBot.Enabled() && c.TelegramBot.ChatID == 0 {
		return fmt.Errorf("CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	return nil
}

// DefaultLeague builds the request for the configured league. Week is left
// at zero so the safest week is chosen at call time.
func (c *Config) DefaultLeague() (models.LeagueRequest, error) {
	if c.League.LeagueID == "" {
		return models.LeagueRequest{}, fmt.Errorf("LEAGUE_ID is not set")
	}
	platform, err := models.ParsePlatform(c.League.Platform)
	if err != nil {
		return models.LeagueRequest{}, err
	}
	return models.LeagueRequest{
		Platform: platform,
		LeagueID: c.League.LeagueID,
		Season:   c.League.Year,
		Credentials: models.Credentials{
			SWID:   c.ESPNAPI.SWID,
			ESPNS2: c.ESPNAPI.ESPNS2,
		},
	}, nil
}

func (c *Config) Persona() llm.Persona {
	return llm.Persona{Character: c.League.Character, TrashTalk: c.League.TrashTalk}.Normalized()
}
