package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/repository/memory"
	"github.com/omarshaarawi/commish/internal/service"
	"github.com/omarshaarawi/commish/internal/week"
)

const jobTimeout = 5 * time.Minute

// Sender delivers a finished message to one channel.
type Sender interface {
	Send(ctx context.Context, text string) error
}

type Scheduler struct {
	s       gocron.Scheduler
	recaps  *service.RecapService
	league  models.LeagueRequest
	persona llm.Persona
	senders []Sender
	repo    *memory.Repository
	every   time.Duration
}

func NewScheduler(recaps *service.RecapService, league models.LeagueRequest, persona llm.Persona, senders ...Sender) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(week.Eastern()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:       s,
		recaps:  recaps,
		league:  league,
		persona: persona,
		senders: senders,
	}, nil
}

// PurgeCache drops expired snapshots from repo on the given interval.
func (s *Scheduler) PurgeCache(repo *memory.Repository, every time.Duration) {
	s.repo = repo
	s.every = every
}

func (s *Scheduler) Start() error {
	if s.repo != nil && s.every > 0 {
		_, err := s.s.NewJob(
			gocron.DurationJob(s.every),
			gocron.NewTask(s.purge),
		)
		if err != nil {
			return fmt.Errorf("failed to create cache purge job: %w", err)
		}
	}

	if len(s.senders) == 0 || s.league.LeagueID == "" {
		slog.Info("No league or delivery channel configured, skipping weekly jobs")
		s.s.Start()
		return nil
	}

	// Weekly recap - Tuesday 7:30 ET, after Monday night is final
	_, err := s.s.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Tuesday), gocron.NewAtTimes(gocron.NewAtTime(7, 30, 0))),
		gocron.NewTask(s.sendRecap),
	)
	if err != nil {
		return fmt.Errorf("failed to create recap job: %w", err)
	}

	// Current standings - Wednesday 7:30 ET
	_, err = s.s.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Wednesday), gocron.NewAtTimes(gocron.NewAtTime(7, 30, 0))),
		gocron.NewTask(s.sendStandings),
	)
	if err != nil {
		return fmt.Errorf("failed to create standings job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) purge() {
	if n := s.repo.Purge(time.Now()); n > 0 {
		slog.Debug("Purged expired snapshots", "count", n)
	}
}

func (s *Scheduler) sendRecap() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	text, err := s.Recap(ctx)
	if err != nil {
		slog.Error("Failed to build weekly recap", "league", s.league.LeagueID, "error", err)
		return
	}
	s.broadcast(ctx, text)
}

func (s *Scheduler) sendStandings() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	standings, err := s.recaps.Standings(ctx, s.league)
	if err != nil {
		slog.Error("Failed to get standings", "league", s.league.LeagueID, "error", err)
		return
	}
	s.broadcast(ctx, standings)
}

// Recap builds the scheduled recap for the last completed week, narrated when
// a model is configured.
func (s *Scheduler) Recap(ctx context.Context) (string, error) {
	if !s.recaps.CanNarrate() {
		_, summary, err := s.recaps.Summary(ctx, s.league)
		return summary, err
	}
	var sb strings.Builder
	if err := s.recaps.Narrate(ctx, s.league, s.persona, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (s *Scheduler) broadcast(ctx context.Context, text string) {
	for _, sender := range s.senders {
		if err := sender.Send(ctx, text); err != nil {
			slog.Error("Failed to deliver message", "sender", fmt.Sprintf("%T", sender), "error", err)
		}
	}
}
