package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/repository/memory"
	"github.com/omarshaarawi/commish/internal/service"
	"github.com/omarshaarawi/commish/internal/week"
)

type stubLoader struct {
	weeks []int
}

func (s *stubLoader) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	s.weeks = append(s.weeks, req.Week)
	return &models.LeagueSnapshot{
		Platform: req.Platform,
		LeagueID: req.LeagueID,
		Week:     req.Week,
		Rosters:  []models.Roster{{RosterID: "1", OwnerID: "U1"}, {RosterID: "2", OwnerID: "U2"}},
		Users:    []models.User{{UserID: "U1", TeamName: "Gridiron Gurus"}, {UserID: "U2", TeamName: "Fumble Kings"}},
		Matchups: []models.TeamWeekResult{
			{RosterID: "1", MatchupID: 1, TotalPoints: 130.25},
			{RosterID: "2", MatchupID: 1, TotalPoints: 88},
		},
		Standings: []models.StandingsRow{{TeamName: "Gridiron Gurus", Wins: 6, Losses: 0, SeasonPoints: 800}},
	}, nil
}

var fixedNow = time.Date(2025, time.October, 14, 12, 0, 0, 0, week.Eastern())

func newHandler(loader *stubLoader) *Handler {
	recaps := service.NewRecapService(loader, memory.NewRepository(time.Minute),
		service.WithClock(func() time.Time { return fixedNow }))
	h := NewHandler(recaps, models.LeagueRequest{Platform: models.PlatformSleeper, LeagueID: "784512"}, llm.Persona{})
	h.now = func() time.Time { return fixedNow }
	return h
}

func command(text string) tgbotapi.Update {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"help", "/help", "/team <team> - How a team did this week"},
		{"recap", "/recap", "*Highest Scoring Team:* Gridiron Gurus (130.25 points)"},
		{"recap week", "/recap 3", "*Week 3*"},
		{"recap bad week", "/recap 30", "Please provide a week between 1 and 18."},
		{"standings", "/standings", "1. *Gridiron Gurus*\n   Record: 6-0"},
		{"team", "/team fumble", "Lost to *Gridiron Gurus* 88.00 - 130.25"},
		{"team missing", "/team", "Please provide a team name."},
		{"week", "/week", "2025 Season, Week 6"},
		{"unknown", "/scores", "Unknown command."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := newHandler(&stubLoader{}).HandleCommand(context.Background(), command(tt.text))

			assert.Equal(t, int64(42), msg.ChatID)
			assert.Equal(t, "Markdown", msg.ParseMode)
			assert.Contains(t, msg.Text, tt.want)
		})
	}
}

func TestHandleCommand_UsesSafestWeekByDefault(t *testing.T) {
	loader := &stubLoader{}
	h := newHandler(loader)

	h.HandleCommand(context.Background(), command("/recap"))
	h.HandleCommand(context.Background(), command("/standings"))

	// Second command is served from the snapshot cache.
	assert.Equal(t, []int{5}, loader.weeks)
}
