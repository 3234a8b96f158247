package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/repository/memory"
	"github.com/omarshaarawi/commish/internal/service"
)

type stubLoader struct{}

func (stubLoader) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	return &models.LeagueSnapshot{
		Week:      req.Week,
		Standings: []models.StandingsRow{{TeamName: "Gridiron Gurus", Wins: 6, SeasonPoints: 800}},
	}, nil
}

type recordingSender struct {
	messages []string
	err      error
}

func (r *recordingSender) Send(ctx context.Context, text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

func newScheduler(t *testing.T, senders ...Sender) *Scheduler {
	t.Helper()
	recaps := service.NewRecapService(stubLoader{}, memory.NewRepository(time.Minute))
	s, err := NewScheduler(recaps, models.LeagueRequest{Platform: models.PlatformSleeper, LeagueID: "1", Week: 4}, llm.Persona{}, senders...)
	require.NoError(t, err)
	return s
}

func TestScheduler_Recap(t *testing.T) {
	text, err := newScheduler(t).Recap(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "**Week 4**")
	assert.Contains(t, text, "  1. Gridiron Gurus - 800.00 points (6W-0L)")
}

func TestScheduler_BroadcastsToEverySender(t *testing.T) {
	failing := &recordingSender{err: errors.New("slack down")}
	ok := &recordingSender{}
	s := newScheduler(t, failing, ok)

	s.sendStandings()

	require.Len(t, ok.messages, 1)
	assert.Contains(t, ok.messages[0], "🏆 *Current Standings*")
	assert.Len(t, failing.messages, 1)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newScheduler(t, &recordingSender{})
	s.PurgeCache(memory.NewRepository(time.Minute), time.Minute)
	require.NoError(t, s.Start())
	assert.Len(t, s.s.Jobs(), 3)
	require.NoError(t, s.Stop())
}

func TestScheduler_SkipsWeeklyJobsWithoutSenders(t *testing.T) {
	s := newScheduler(t)
	require.NoError(t, s.Start())
	assert.Empty(t, s.s.Jobs())
	require.NoError(t, s.Stop())
}
