package models

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformESPN    Platform = "espn"
	PlatformYahoo   Platform = "yahoo"
	PlatformSleeper Platform = "sleeper"
)

// ParsePlatform accepts the form values "ESPN", "Yahoo" and "Sleeper" in any case.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformESPN, PlatformYahoo, PlatformSleeper:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported league type %q", s)
	}
}

// Credentials carries user supplied tokens through to the platform APIs.
// Nothing here is stored beyond the request.
type Credentials struct {
	SWID      string
	ESPNS2    string
	YahooCode string
}

type LeagueRequest struct {
	Platform    Platform
	LeagueID    string
	Season      int
	Week        int
	Credentials Credentials
}

type StreakDirection int

const (
	StreakLoss StreakDirection = iota
	StreakWin
)

func (d StreakDirection) String() string {
	if d == StreakWin {
		return "W"
	}
	return "L"
}

type Streak struct {
	Direction StreakDirection
	Length    int
}

// ParseStreak reads streaks in the "W3" / "L2" form. Anything else is a zero-length losing streak.
func ParseStreak(s string) Streak {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Streak{}
	}
	var n int
	if _, err := fmt.Sscanf(s[1:], "%d", &n); err != nil || n < 0 {
		return Streak{}
	}
	switch s[0] {
	case 'W':
		return Streak{Direction: StreakWin, Length: n}
	case 'L':
		return Streak{Direction: StreakLoss, Length: n}
	}
	return Streak{}
}

type Roster struct {
	RosterID string
	// OwnerID is empty when the roster has no owner.
	OwnerID string
	Streak  Streak
}

type User struct {
	UserID      string
	DisplayName string
	TeamName    string
}

func (u User) EffectiveTeamName() string {
	if strings.TrimSpace(u.TeamName) != "" {
		return u.TeamName
	}
	return u.DisplayName
}

// TeamWeekResult is one roster's result for the snapshot week.
type TeamWeekResult struct {
	RosterID string
	// MatchupID groups the two sides of a head-to-head game. Zero means no opponent.
	MatchupID       int
	TotalPoints     float64
	StarterIDs      []string
	RosterPlayerIDs []string
	PlayerPoints    map[string]float64
}

type StandingsRow struct {
	TeamName     string  `json:"team_name"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	SeasonPoints float64 `json:"season_points"`
}

type PlayerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type PlayerDirectory map[string]PlayerInfo

// LeagueSnapshot is everything the recap needs for one league week. It is built
// once per request and only read afterwards.
type LeagueSnapshot struct {
	Platform  Platform
	LeagueID  string
	Season    int
	Week      int
	Rosters   []Roster
	Users     []User
	Matchups  []TeamWeekResult
	Standings []StandingsRow
	// ScoringRules maps canonical stat codes to points per unit.
	ScoringRules map[string]float64
	Players      PlayerDirectory
	// Degraded lists player IDs scored from an upstream total because raw stats were missing.
	Degraded []string
}
