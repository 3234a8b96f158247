package sleeper

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/players"
	"github.com/omarshaarawi/commish/internal/recap"
	"github.com/omarshaarawi/commish/internal/scoring"
)

// emptySlot is what Sleeper puts in starters for an unfilled lineup slot.
const emptySlot = "0"

type API struct {
	client        *Client
	directoryPath string

	mu        sync.Mutex
	directory models.PlayerDirectory
}

func NewAPI(client *Client, directoryPath string) *API {
	return &API{client: client, directoryPath: directoryPath}
}

// LoadSnapshot fetches everything needed to recap one Sleeper league week.
func (a *API) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	directory, err := a.playerDirectory()
	if err != nil {
		return nil, err
	}

	var (
		league   models.SleeperLeague
		users    []models.SleeperUser
		rosters  []models.SleeperRoster
		matchups []models.SleeperMatchup
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.client.Get(gctx, fmt.Sprintf("/league/%s", req.LeagueID), &league); err != nil {
			return fmt.Errorf("fetching league: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.client.Get(gctx, fmt.Sprintf("/league/%s/users", req.LeagueID), &users); err != nil {
			return fmt.Errorf("fetching users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.client.Get(gctx, fmt.Sprintf("/league/%s/rosters", req.LeagueID), &rosters); err != nil {
			return fmt.Errorf("fetching rosters: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.client.Get(gctx, fmt.Sprintf("/league/%s/matchups/%d", req.LeagueID, req.Week), &matchups); err != nil {
			return fmt.Errorf("fetching matchups: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	season := req.Season
	if season == 0 {
		season, _ = strconv.Atoi(league.Season)
	}

	// Missing weekly stats only degrade scoring to Sleeper's own totals.
	var stats models.SleeperWeeklyStats
	if err := a.client.Get(ctx, fmt.Sprintf("/stats/nfl/%d/%d", season, req.Week), &stats); err != nil {
		slog.Warn("Weekly stats unavailable, using upstream player points", "league", req.LeagueID, "week", req.Week, "error", err)
		stats = nil
	}

	snapshot := &models.LeagueSnapshot{
		Platform:     models.PlatformSleeper,
		LeagueID:     req.LeagueID,
		Season:       season,
		Week:         req.Week,
		Users:        convertUsers(users),
		Rosters:      convertRosters(rosters),
		ScoringRules: league.ScoringSettings,
		Players:      directory,
	}
	snapshot.Matchups, snapshot.Degraded = convertMatchups(matchups, stats, league.ScoringSettings)
	snapshot.Standings = buildStandings(rosters, snapshot.Rosters, snapshot.Users)

	slog.Info("Loaded Sleeper snapshot",
		"league", req.LeagueID,
		"week", req.Week,
		"rosters", len(snapshot.Rosters),
		"matchups", len(snapshot.Matchups),
		"degraded", len(snapshot.Degraded),
	)
	return snapshot, nil
}

// FetchPlayers downloads the full NFL player directory. Sleeper asks callers to
// do this at most once a day.
func (a *API) FetchPlayers(ctx context.Context) (models.PlayerDirectory, error) {
	var dir models.PlayerDirectory
	if err := a.client.Get(ctx, "/players/nfl", &dir); err != nil {
		return nil, fmt.Errorf("fetching players: %w", err)
	}
	return dir, nil
}

func (a *API) playerDirectory() (models.PlayerDirectory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.directory != nil {
		return a.directory, nil
	}
	dir, err := players.LoadFile(a.directoryPath)
	if err != nil {
		return nil, err
	}
	a.directory = dir
	return dir, nil
}

func convertUsers(in []models.SleeperUser) []models.User {
	out := make([]models.User, 0, len(in))
	for _, u := range in {
		out = append(out, models.User{
			UserID:      u.UserID,
			DisplayName: u.DisplayName,
			TeamName:    u.Metadata.TeamName,
		})
	}
	return out
}

func convertRosters(in []models.SleeperRoster) []models.Roster {
	out := make([]models.Roster, 0, len(in))
	for _, r := range in {
		owner := ""
		if r.OwnerID != nil {
			owner = *r.OwnerID
		}
		out = append(out, models.Roster{
			RosterID: strconv.Itoa(r.RosterID),
			OwnerID:  owner,
			Streak:   models.ParseStreak(r.Metadata.Streak),
		})
	}
	return out
}

func convertMatchups(in []models.SleeperMatchup, stats models.SleeperWeeklyStats, rules map[string]float64) ([]models.TeamWeekResult, []string) {
	results := make([]models.TeamWeekResult, 0, len(in))
	var degraded []string
	seenDegraded := make(map[string]bool)

	for _, m := range in {
		result := models.TeamWeekResult{
			RosterID:        strconv.Itoa(m.RosterID),
			StarterIDs:      make([]string, 0, len(m.Starters)),
			RosterPlayerIDs: dedupe(m.Players),
			PlayerPoints:    make(map[string]float64, len(m.Players)),
		}
		if m.MatchupID != nil {
			result.MatchupID = *m.MatchupID
		}
		for _, id := range m.Starters {
			if id != emptySlot && id != "" {
				result.StarterIDs = append(result.StarterIDs, id)
			}
		}

		score := func(id string) {
			if _, done := result.PlayerPoints[id]; done {
				return
			}
			raw, hasRaw := stats[id]
			points, fellBack := scoring.PlayerPoints(raw, hasRaw, m.PlayersPoints[id], rules, scoring.SleeperAliases)
			result.PlayerPoints[id] = points
			if fellBack && !seenDegraded[id] {
				seenDegraded[id] = true
				degraded = append(degraded, id)
			}
		}
		for _, id := range result.RosterPlayerIDs {
			score(id)
		}
		for _, id := range result.StarterIDs {
			score(id)
		}

		total := 0.0
		for _, id := range result.StarterIDs {
			total += result.PlayerPoints[id]
		}
		result.TotalPoints = scoring.Round2(total)

		results = append(results, result)
	}
	return results, degraded
}

func buildStandings(raw []models.SleeperRoster, rosters []models.Roster, users []models.User) []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, models.StandingsRow{
			TeamName:     recap.ResolveTeamName(strconv.Itoa(r.RosterID), rosters, users),
			Wins:         r.Settings.Wins,
			Losses:       r.Settings.Losses,
			SeasonPoints: float64(r.Settings.Fpts) + float64(r.Settings.FptsDecimal)/100,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SeasonPoints > rows[j].SeasonPoints
	})
	return rows
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
