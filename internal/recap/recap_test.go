package recap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/commish/internal/models"
)

// twoTeamSnapshot is Team A (roster 1) against Team B (roster 2) in matchup 1.
func twoTeamSnapshot() *models.LeagueSnapshot {
	return &models.LeagueSnapshot{
		Platform: models.PlatformSleeper,
		LeagueID: "42",
		Week:     5,
		Rosters: []models.Roster{
			{RosterID: "1", OwnerID: "U1", Streak: models.Streak{Direction: models.StreakWin, Length: 2}},
			{RosterID: "2", OwnerID: "U2", Streak: models.Streak{Direction: models.StreakLoss, Length: 2}},
		},
		Users: []models.User{
			{UserID: "U1", DisplayName: "alice", TeamName: "Team A"},
			{UserID: "U2", DisplayName: "Team B"},
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
			{TeamName: "Team A", Wins: 4, Losses: 1, SeasonPoints: 601.2},
			{TeamName: "Team B", Wins: 1, Losses: 4, SeasonPoints: 480.9},
		},
		Players: models.PlayerDirectory{
			"P1": {FirstName: "Josh", LastName: "Allen"},
			"P2": {FirstName: "Tony", LastName: "Pollard"},
			"P3": {FirstName: "Jaylen", LastName: "Waddle"},
			"P4": {FirstName: "", LastName: "Ravens"},
		},
	}
}

func TestBuild_TwoTeamScenario(t *testing.T) {
	got := Build(twoTeamSnapshot())

	game := GameStat{
		Teams:        [2]TeamScore{{Team: "Team A", Points: 120.5}, {Team: "Team B", Points: 95.0}},
		Differential: 25.5,
	}
	want := WeeklyStats{
		Platform:              models.PlatformSleeper,
		LeagueID:              "42",
		Week:                  5,
		HighestScoringTeam:    TeamScore{Team: "Team A", Points: 120.5},
		TopStandings:          twoTeamSnapshot().Standings,
		// P4's 95.0 beats P1's 80.2.
		HighestScoringPlayer:  PlayerStat{Player: "Ravens", Points: 95.0, Team: "Team B"},
		LowestScoringStarter:  PlayerStat{Player: "Tony Pollard", Points: 40.3, Team: "Team A"},
		HighestScoringBenched: PlayerStat{Player: "Jaylen Waddle", Points: 15.0, Team: "Team A"},
		BiggestBlowout:        game,
		ClosestGame:           game,
		HottestStreak:         StreakStat{Team: "Team A", Length: 2},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EmptySnapshots(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *models.LeagueSnapshot
	}{
		{name: "nil snapshot", snapshot: nil},
		{name: "zero everything", snapshot: &models.LeagueSnapshot{}},
		{
			name: "rosters but no matchups",
			snapshot: &models.LeagueSnapshot{
				Rosters: []models.Roster{{RosterID: "1", OwnerID: "U1"}},
				Users:   []models.User{{UserID: "U1", DisplayName: "alice"}},
			},
		},
		{
			name: "matchups with no paired games",
			snapshot: &models.LeagueSnapshot{
				Matchups: []models.TeamWeekResult{{RosterID: "1", MatchupID: 3, TotalPoints: 88}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got WeeklyStats
			require.NotPanics(t, func() { got = Build(tt.snapshot) })

			assert.Equal(t, NoMatch, got.BiggestBlowout.Teams[0].Team)
			assert.Equal(t, NoMatch, got.ClosestGame.Teams[1].Team)
			assert.Zero(t, got.BiggestBlowout.Differential)
			assert.Zero(t, got.ClosestGame.Differential)
			assert.True(t, got.BiggestBlowout.NoData)
			assert.Equal(t, StreakStat{Team: NoValue}, got.HottestStreak)
			assert.NotNil(t, got.TopStandings)
			assert.Empty(t, got.TopStandings)
		})
	}
}

func TestBuild_CountsDegradedAndExcluded(t *testing.T) {
	s := twoTeamSnapshot()
	s.Matchups = append(s.Matchups, models.TeamWeekResult{RosterID: "3", MatchupID: 2, TotalPoints: 70})
	s.Degraded = []string{"P3"}

	got := Build(s)

	assert.Equal(t, 1, got.ExcludedGroups)
	assert.Equal(t, 1, got.DegradedPlayers)
	assert.Equal(t, UnknownTeam, HighestScoringTeam(s.Matchups[2:], TeamNames(s)).Team)
}
