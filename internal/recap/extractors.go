package recap

import (
	"math"
	"sort"

	"github.com/omarshaarawi/commish/internal/models"
)

// Sentinel labels for statistics with no qualifying input.
const (
	NoTeam  = "Unknown"
	NoValue = "N/A"
	NoMatch = "No match"
)

type TeamScore struct {
	Team   string  `json:"team"`
	Points float64 `json:"points"`
	NoData bool    `json:"no_data,omitempty"`
}

type PlayerStat struct {
	Player string  `json:"player"`
	Points float64 `json:"points"`
	Team   string  `json:"team"`
	NoData bool    `json:"no_data,omitempty"`
}

type GameStat struct {
	Teams        [2]TeamScore `json:"teams"`
	Differential float64      `json:"differential"`
	NoData       bool         `json:"no_data,omitempty"`
}

type StreakStat struct {
	Team   string `json:"team"`
	Length int    `json:"length"`
}

// HighestScoringTeam includes every result, byes too. Ties keep the earlier result.
func HighestScoringTeam(results []models.TeamWeekResult, names map[string]string) TeamScore {
	if len(results) == 0 {
		return TeamScore{Team: NoTeam, NoData: true}
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.TotalPoints > best.TotalPoints {
			best = r
		}
	}
	return TeamScore{Team: teamName(names, best.RosterID), Points: best.TotalPoints}
}

// TopStandings returns the first n rows as given; standings arrive sorted.
func TopStandings(standings []models.StandingsRow, n int) []models.StandingsRow {
	if n <= 0 || len(standings) == 0 {
		return []models.StandingsRow{}
	}
	if n > len(standings) {
		n = len(standings)
	}
	top := make([]models.StandingsRow, n)
	copy(top, standings[:n])
	return top
}

// scoredPlayers lists the IDs of a result that have a points entry, roster
// order first, then any leftovers sorted so the order never depends on map iteration.
func scoredPlayers(r models.TeamWeekResult) []string {
	ids := make([]string, 0, len(r.PlayerPoints))
	seen := make(map[string]bool, len(r.PlayerPoints))
	for _, id := range r.RosterPlayerIDs {
		if _, ok := r.PlayerPoints[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	var rest []string
	for id := range r.PlayerPoints {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// HighestScoringPlayer scans starters and bench alike.
func HighestScoringPlayer(results []models.TeamWeekResult, names map[string]string, directory models.PlayerDirectory) PlayerStat {
	found := false
	var bestID, bestRoster string
	var best float64
	for _, r := range results {
		for _, id := range scoredPlayers(r) {
			points := r.PlayerPoints[id]
			if !found || points > best {
				found = true
				best, bestID, bestRoster = points, id, r.RosterID
			}
		}
	}
	if !found {
		return PlayerStat{Player: NoValue, Points: -1, Team: NoValue, NoData: true}
	}
	return PlayerStat{Player: PlayerName(bestID, directory), Points: best, Team: teamName(names, bestRoster)}
}

// LowestScoringStarter only looks at starters. A starter without a points
// entry scored zero. With no starters at all the score is 0 and NoData is set.
func LowestScoringStarter(results []models.TeamWeekResult, names map[string]string, directory models.PlayerDirectory) PlayerStat {
	found := false
	var worstID, worstRoster string
	var worst float64
	for _, r := range results {
		for _, id := range r.StarterIDs {
			points := r.PlayerPoints[id]
			if !found || points < worst {
				found = true
				worst, worstID, worstRoster = points, id, r.RosterID
			}
		}
	}
	if !found {
		return PlayerStat{Player: NoValue, Points: 0, Team: NoValue, NoData: true}
	}
	return PlayerStat{Player: PlayerName(worstID, directory), Points: worst, Team: teamName(names, worstRoster)}
}

// HighestScoringBenched scans roster players minus starters.
func HighestScoringBenched(results []models.TeamWeekResult, names map[string]string, directory models.PlayerDirectory) PlayerStat {
	found := false
	var bestID, bestRoster string
	var best float64
	for _, r := range results {
		starters := make(map[string]bool, len(r.StarterIDs))
		for _, id := range r.StarterIDs {
			starters[id] = true
		}
		seen := make(map[string]bool, len(r.RosterPlayerIDs))
		for _, id := range r.RosterPlayerIDs {
			if starters[id] || seen[id] {
				continue
			}
			seen[id] = true
			points := r.PlayerPoints[id]
			if !found || points > best {
				found = true
				best, bestID, bestRoster = points, id, r.RosterID
			}
		}
	}
	if !found {
		return PlayerStat{Player: NoValue, Points: -1, Team: NoValue, NoData: true}
	}
	return PlayerStat{Player: PlayerName(bestID, directory), Points: best, Team: teamName(names, bestRoster)}
}

func noGame() GameStat {
	return GameStat{
		Teams:  [2]TeamScore{{Team: NoMatch}, {Team: NoMatch}},
		NoData: true,
	}
}

func gameStat(p MatchupPair, names map[string]string) GameStat {
	return GameStat{
		Teams: [2]TeamScore{
			{Team: teamName(names, p.A.RosterID), Points: p.A.TotalPoints},
			{Team: teamName(names, p.B.RosterID), Points: p.B.TotalPoints},
		},
		Differential: math.Abs(p.A.TotalPoints - p.B.TotalPoints),
	}
}

func BiggestBlowout(pairs []MatchupPair, names map[string]string) GameStat {
	if len(pairs) == 0 {
		return noGame()
	}
	best := gameStat(pairs[0], names)
	for _, p := range pairs[1:] {
		if g := gameStat(p, names); g.Differential > best.Differential {
			best = g
		}
	}
	return best
}

func ClosestGame(pairs []MatchupPair, names map[string]string) GameStat {
	if len(pairs) == 0 {
		return noGame()
	}
	best := gameStat(pairs[0], names)
	for _, p := range pairs[1:] {
		if g := gameStat(p, names); g.Differential < best.Differential {
			best = g
		}
	}
	return best
}

// HottestStreak picks the longest winning streak. Losing and zero-length
// streaks are never selected.
func HottestStreak(rosters []models.Roster, names map[string]string) StreakStat {
	hottest := StreakStat{Team: NoValue}
	for _, r := range rosters {
		if r.Streak.Direction != models.StreakWin || r.Streak.Length <= 0 {
			continue
		}
		if r.Streak.Length > hottest.Length {
			hottest = StreakStat{Team: teamName(names, r.RosterID), Length: r.Streak.Length}
		}
	}
	return hottest
}
