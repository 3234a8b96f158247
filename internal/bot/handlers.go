package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/notify"
	"github.com/omarshaarawi/commish/internal/service"
	"github.com/omarshaarawi/commish/internal/week"
)

const helpText = "Available commands:\n" +
	"/recap [week] - Weekly recap for the league\n" +
	"/standings - Get league standings\n" +
	"/team <team> - How a team did this week\n" +
	"/week - Current NFL week and recap window\n" +
	"/help - This message"

type Handler struct {
	recaps  *service.RecapService
	league  models.LeagueRequest
	persona llm.Persona
	now     func() time.Time
}

// NewHandler answers commands about the configured league.
func NewHandler(recaps *service.RecapService, league models.LeagueRequest, persona llm.Persona) *Handler {
	return &Handler{recaps: recaps, league: league, persona: persona, now: time.Now}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to Commish! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "recap":
		h.handleRecap(ctx, &msg, args)
	case "standings":
		h.handleStandings(ctx, &msg)
	case "team":
		h.handleTeam(ctx, &msg, args)
	case "week":
		msg.Text = service.FormatWeek(week.Describe(h.now()))
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleRecap(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	req := h.league
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 || n > week.RegularSeasonWeeks {
			msg.Text = fmt.Sprintf("Please provide a week between 1 and %d. Usage: /recap [week]", week.RegularSeasonWeeks)
			return
		}
		req.Week = n
	}

	var text string
	if h.recaps.CanNarrate() {
		var sb strings.Builder
		if err := h.recaps.Narrate(ctx, req, h.persona, &sb); err != nil {
			msg.Text = fmt.Sprintf("Error generating recap: %v", err)
			return
		}
		text = sb.String()
	} else {
		_, summary, err := h.recaps.Summary(ctx, req)
		if err != nil {
			msg.Text = fmt.Sprintf("Error generating recap: %v", err)
			return
		}
		text = summary
	}
	msg.Text = notify.Mrkdwn(text)
}

func (h *Handler) handleStandings(ctx context.Context, msg *tgbotapi.MessageConfig) {
	standings, err := h.recaps.Standings(ctx, h.league)
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching standings: %v", err)
	} else {
		msg.Text = standings
	}
}

func (h *Handler) handleTeam(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a team name. Usage: /team <team name>"
		return
	}
	result, err := h.recaps.TeamLine(ctx, h.league, args)
	if err != nil {
		msg.Text = fmt.Sprintf("Error getting team: %v", err)
	} else {
		msg.Text = result
	}
}
