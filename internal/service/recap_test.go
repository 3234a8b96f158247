package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/recap"
	"github.com/omarshaarawi/commish/internal/repository/memory"
	"github.com/omarshaarawi/commish/internal/week"
)

type countingLoader struct {
	snapshot *models.LeagueSnapshot
	err      error
	requests []models.LeagueRequest
}

func (l *countingLoader) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	l.requests = append(l.requests, req)
	if l.err != nil {
		return nil, l.err
	}
	return l.snapshot, nil
}

type fakeStreamer struct {
	chunks       []string
	system, user string
}

func (f *fakeStreamer) Stream(ctx context.Context, system, user string) (<-chan string, <-chan error) {
	f.system, f.user = system, user
	content := make(chan string, len(f.chunks))
	errs := make(chan error)
	for _, c := range f.chunks {
		content <- c
	}
	close(content)
	close(errs)
	return content, errs
}

type fakeModerator struct {
	flagged bool
	err     error
	calls   int
}

func (f *fakeModerator) Moderate(ctx context.Context, text string) (bool, error) {
	f.calls++
	return f.flagged, f.err
}

func leagueSnapshot() *models.LeagueSnapshot {
	return &models.LeagueSnapshot{
		Platform: models.PlatformSleeper,
		LeagueID: "42",
		Week:     5,
		Rosters: []models.Roster{
			{RosterID: "1", OwnerID: "U1", Streak: models.Streak{Direction: models.StreakWin, Length: 2}},
			{RosterID: "2", OwnerID: "U2", Streak: models.Streak{Direction: models.StreakLoss, Length: 2}},
		},
		Users: []models.User{
			{UserID: "U1", DisplayName: "alice", TeamName: "Alpha Wolves"},
			{UserID: "U2", DisplayName: "Bench Warmers"},
		},
		Matchups: []models.TeamWeekResult{
			{
				RosterID:        "1",
				MatchupID:       1,
				TotalPoints:     120.5,
				StarterIDs:      []string{"P1", "P2"},
				RosterPlayerIDs: []string{"P1", "P2", "P3"},
				PlayerPoints:    map[string]float64{"P1": 80.2, "P2": 40.3, "P3": 15.0},
			},
			{
				RosterID:        "2",
				MatchupID:       1,
				TotalPoints:     95.0,
				StarterIDs:      []string{"P4"},
				RosterPlayerIDs: []string{"P4"},
				PlayerPoints:    map[string]float64{"P4": 95.0},
			},
		},
		Standings: []models.StandingsRow{
			{TeamName: "Alpha Wolves", Wins: 4, Losses: 1, SeasonPoints: 601.2},
			{TeamName: "Bench Warmers", Wins: 1, Losses: 4, SeasonPoints: 480.9},
		},
		Players: models.PlayerDirectory{
			"P1": {FirstName: "Josh", LastName: "Allen"},
			"P2": {FirstName: "Tony", LastName: "Pollard"},
			"P3": {FirstName: "Jaylen", LastName: "Waddle"},
			"P4": {LastName: "Ravens"},
		},
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(loader *countingLoader, opts ...Option) (*RecapService, *clock) {
	c := &clock{t: time.Date(2025, time.October, 14, 12, 0, 0, 0, week.Eastern())}
	opts = append([]Option{WithClock(c.now)}, opts...)
	return NewRecapService(loader, memory.NewRepository(10*time.Minute), opts...), c
}

func sleeperRequest() models.LeagueRequest {
	return models.LeagueRequest{Platform: models.PlatformSleeper, LeagueID: "42"}
}

func TestRecapService_ResolveFillsWeekAndSeason(t *testing.T) {
	svc, _ := newService(&countingLoader{})

	req := svc.Resolve(sleeperRequest())
	assert.Equal(t, 5, req.Week)
	assert.Equal(t, 2025, req.Season)

	explicit := svc.Resolve(models.LeagueRequest{Week: 2, Season: 2024})
	assert.Equal(t, 2, explicit.Week)
	assert.Equal(t, 2024, explicit.Season)
}

func TestRecapService_CachesSnapshots(t *testing.T) {
	loader := &countingLoader{snapshot: leagueSnapshot()}
	svc, c := newService(loader)
	ctx := context.Background()

	_, err := svc.Stats(ctx, sleeperRequest())
	require.NoError(t, err)
	_, err = svc.Stats(ctx, sleeperRequest())
	require.NoError(t, err)
	assert.Len(t, loader.requests, 1)

	c.t = c.t.Add(11 * time.Minute)
	_, err = svc.Stats(ctx, sleeperRequest())
	require.NoError(t, err)
	assert.Len(t, loader.requests, 2)
}

type privateLeagueLoader struct {
	swid, s2 string
	calls    int
}

func (l *privateLeagueLoader) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	l.calls++
	if req.Credentials.SWID != l.swid || req.Credentials.ESPNS2 != l.s2 {
		return nil, models.ErrMissingCredentials
	}
	return leagueSnapshot(), nil
}

func TestRecapService_CacheRespectsCredentials(t *testing.T) {
	loader := &privateLeagueLoader{swid: "{owner}", s2: "owner-s2"}
	svc := NewRecapService(loader, memory.NewRepository(10*time.Minute))
	ctx := context.Background()
	owner := models.LeagueRequest{
		Platform:    models.PlatformESPN,
		LeagueID:    "777",
		Week:        5,
		Credentials: models.Credentials{SWID: "{owner}", ESPNS2: "owner-s2"},
	}

	_, err := svc.Snapshot(ctx, owner)
	require.NoError(t, err)

	anonymous := owner
	anonymous.Credentials = models.Credentials{}
	snapshot, err := svc.Snapshot(ctx, anonymous)
	assert.ErrorIs(t, err, models.ErrMissingCredentials)
	assert.Nil(t, snapshot)

	_, err = svc.Snapshot(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls, "owner's second request is a cache hit")
}

func TestRecapService_YahooSkipsCache(t *testing.T) {
	loader := &countingLoader{snapshot: leagueSnapshot()}
	svc, _ := newService(loader)
	req := models.LeagueRequest{
		Platform:    models.PlatformYahoo,
		LeagueID:    "9",
		Week:        5,
		Credentials: models.Credentials{YahooCode: "code"},
	}

	for range 2 {
		_, err := svc.Snapshot(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Len(t, loader.requests, 2)
}

func TestRecapService_LoaderErrorNotCached(t *testing.T) {
	boom := errors.New("sleeper down")
	loader := &countingLoader{err: boom}
	svc, _ := newService(loader)

	_, _, err := svc.Summary(context.Background(), sleeperRequest())
	assert.ErrorIs(t, err, boom)

	loader.err = nil
	loader.snapshot = leagueSnapshot()
	_, _, err = svc.Summary(context.Background(), sleeperRequest())
	assert.NoError(t, err)
}

func TestRenderSummary(t *testing.T) {
	summary := RenderSummary(recap.Build(leagueSnapshot()))

	for _, line := range []string{
		"### Weekly Highlights\n**Week 5**\n",
		"**Highest Scoring Team:** Alpha Wolves (120.50 points)\n",
		"  1. Alpha Wolves - 601.20 points (4W-1L)\n",
		"  2. Bench Warmers - 480.90 points (1W-4L)\n",
		"**Highest Scoring Player:** Ravens (Bench Warmers) - 95.00 points\n",
		"**Lowest Scoring Starter:** Tony Pollard (Alpha Wolves) - 40.30 points\n",
		"**Highest Scoring Benched Player:** Jaylen Waddle (Alpha Wolves) - 15.00 points\n",
		"**Biggest Blowout:** Alpha Wolves (120.5) vs Bench Warmers (95.0) (Point Differential: **25.50**)\n",
		"**Closest Game:** Alpha Wolves (120.5) vs Bench Warmers (95.0) (Point Differential: **25.50**)\n",
		"**Alpha Wolves** has won 2 in a row.\n",
	} {
		assert.Contains(t, summary, line)
	}
	assert.NotContains(t, summary, "raw stats were unavailable")
}

func TestRenderSummary_Empty(t *testing.T) {
	summary := RenderSummary(recap.Build(&models.LeagueSnapshot{}))

	assert.Contains(t, summary, "**Highest Scoring Team:** No data this week")
	assert.Contains(t, summary, "### Top 3 Standings\nNo data this week\n")
	assert.Contains(t, summary, "**Lowest Scoring Starter:** No data this week")
	assert.Contains(t, summary, "**Closest Game:** No data this week")
	assert.Contains(t, summary, "No team is on a winning streak.")
	assert.NotContains(t, summary, "**Week")
}

func TestRenderSummary_TeamNamedUnknown(t *testing.T) {
	snap := leagueSnapshot()
	snap.Users[0].TeamName = "Unknown"

	summary := RenderSummary(recap.Build(snap))
	assert.Contains(t, summary, "**Highest Scoring Team:** Unknown (120.50 points)")
}

func TestRenderSummary_NotesDegradedPlayers(t *testing.T) {
	snap := leagueSnapshot()
	snap.Degraded = []string{"P1", "P4"}

	summary := RenderSummary(recap.Build(snap))
	assert.Contains(t, summary, "_2 player scores used the platform's own totals")
}

func TestRecapService_Narrate(t *testing.T) {
	loader := &countingLoader{snapshot: leagueSnapshot()}
	streamer := &fakeStreamer{chunks: []string{"Bears ", "still ", "stink."}}
	moderator := &fakeModerator{}
	svc, _ := newService(loader, WithNarrator(streamer, moderator))

	var out strings.Builder
	err := svc.Narrate(context.Background(), sleeperRequest(), llm.Persona{Character: "Dwight Schrute", TrashTalk: 8}, &out)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), "## Stat Summary\n\n### Weekly Highlights"))
	assert.True(t, strings.HasSuffix(out.String(), "## Weekly Recap\n\nBears still stink."))
	assert.Equal(t, 1, moderator.calls)
	assert.Contains(t, streamer.system, "You are Dwight Schrute.")
	assert.Contains(t, streamer.user, "**Highest Scoring Team:** Alpha Wolves")
}

func TestRecapService_NarrateRejectsPersonaBeforeLoading(t *testing.T) {
	loader := &countingLoader{snapshot: leagueSnapshot()}
	svc, _ := newService(loader, WithNarrator(&fakeStreamer{}, &fakeModerator{flagged: true}))

	var out strings.Builder
	err := svc.Narrate(context.Background(), sleeperRequest(), llm.Persona{Character: "something awful"}, &out)

	assert.ErrorIs(t, err, llm.ErrPersonaRejected)
	assert.Empty(t, loader.requests)
	assert.Empty(t, out.String())
}

func TestRecapService_NarrateWithoutStreamer(t *testing.T) {
	svc, _ := newService(&countingLoader{snapshot: leagueSnapshot()})

	assert.False(t, svc.CanNarrate())
	err := svc.Narrate(context.Background(), sleeperRequest(), llm.Persona{}, &strings.Builder{})
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestRecapService_Standings(t *testing.T) {
	svc, _ := newService(&countingLoader{snapshot: leagueSnapshot()})

	text, err := svc.Standings(context.Background(), sleeperRequest())
	require.NoError(t, err)
	assert.Contains(t, text, "1. *Alpha Wolves*\n   Record: 4-1\n   Points For: 601.20")
	assert.Contains(t, text, "2. *Bench Warmers*")
}

func TestRecapService_TeamLine(t *testing.T) {
	svc, _ := newService(&countingLoader{snapshot: leagueSnapshot()})
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"substring", "alpha", "📋 *Alpha Wolves* - Week 5\nScored 120.50 points\nBeat *Bench Warmers* 120.50 - 95.00\nTop starter: Josh Allen (80.20)\n"},
		{"misspelled", "Bnch Warmrs", "📋 *Bench Warmers* - Week 5\nScored 95.00 points\nLost to *Alpha Wolves* 95.00 - 120.50\nTop starter: Ravens (95.00)\n"},
		{"initials", "bw", "📋 *Bench Warmers* - Week 5\n"},
		{"no match", "zzz", "🔍 No team found matching 'zzz'."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.TeamLine(ctx, sleeperRequest(), tt.query)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, tt.want), got)
		})
	}
}

func TestFormatWeek(t *testing.T) {
	open := FormatWeek(week.Describe(time.Date(2025, time.October, 14, 12, 0, 0, 0, week.Eastern())))
	assert.Contains(t, open, "2025 Season, Week 6")
	assert.Contains(t, open, "Recap will cover week 5")
	assert.Contains(t, open, "Today is Tuesday.")

	closed := FormatWeek(week.Describe(time.Date(2025, time.October, 19, 12, 0, 0, 0, week.Eastern())))
	assert.Contains(t, closed, "Recaps are best generated between")
}
