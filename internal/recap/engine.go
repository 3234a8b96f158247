// Package recap computes the weekly league statistics shown in a recap. Every
// function here is pure and total: an empty or partial snapshot produces
// sentinel values, never an error.
package recap

import (
	"log/slog"

	"github.com/omarshaarawi/commish/internal/models"
)

const TopStandingsCount = 3

// WeeklyStats is the fixed-shape result handed to renderers.
type WeeklyStats struct {
	Platform              models.Platform       `json:"platform"`
	LeagueID              string                `json:"league_id"`
	Week                  int                   `json:"week"`
	HighestScoringTeam    TeamScore             `json:"highest_scoring_team"`
	TopStandings          []models.StandingsRow `json:"top_standings"`
	HighestScoringPlayer  PlayerStat            `json:"highest_scoring_player"`
	LowestScoringStarter  PlayerStat            `json:"lowest_scoring_starter"`
	HighestScoringBenched PlayerStat            `json:"highest_scoring_benched"`
	BiggestBlowout        GameStat              `json:"biggest_blowout"`
	ClosestGame           GameStat              `json:"closest_game"`
	HottestStreak         StreakStat            `json:"hottest_streak"`
	// ExcludedGroups counts matchup groups that were not a clean pair.
	ExcludedGroups  int `json:"excluded_groups"`
	DegradedPlayers int `json:"degraded_players"`
}

// Build runs every extractor over the snapshot.
func Build(s *models.LeagueSnapshot) WeeklyStats {
	if s == nil {
		s = &models.LeagueSnapshot{}
	}

	names := TeamNames(s)
	pairs, excluded := PairMatchups(s.Matchups)
	if excluded > 0 {
		slog.Warn("Excluded unpaired matchup groups", "league", s.LeagueID, "week", s.Week, "excluded", excluded)
	}

	return WeeklyStats{
		Platform:              s.Platform,
		LeagueID:              s.LeagueID,
		Week:                  s.Week,
		HighestScoringTeam:    HighestScoringTeam(s.Matchups, names),
		TopStandings:          TopStandings(s.Standings, TopStandingsCount),
		HighestScoringPlayer:  HighestScoringPlayer(s.Matchups, names, s.Players),
		LowestScoringStarter:  LowestScoringStarter(s.Matchups, names, s.Players),
		HighestScoringBenched: HighestScoringBenched(s.Matchups, names, s.Players),
		BiggestBlowout:        BiggestBlowout(pairs, names),
		ClosestGame:           ClosestGame(pairs, names),
		HottestStreak:         HottestStreak(s.Rosters, names),
		ExcludedGroups:        excluded,
		DegradedPlayers:       len(s.Degraded),
	}
}
