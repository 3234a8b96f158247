package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/scoring"
)

// maxRosterFetches bounds concurrent per-team roster requests.
const maxRosterFetches = 4

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) AuthCodeURL(state string) string {
	return a.client.AuthCodeURL(state)
}

func leagueKey(leagueID string) string {
	if strings.Contains(leagueID, ".l.") {
		return leagueID
	}
	return "nfl.l." + leagueID
}

// LoadSnapshot exchanges the request's authorization code and reads settings,
// standings, the week's scoreboard and every team's weekly roster.
func (a *API) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	if strings.TrimSpace(req.Credentials.YahooCode) == "" {
		return nil, fmt.Errorf("yahoo authorization code: %w", models.ErrMissingCredentials)
	}

	httpClient, err := a.client.Exchange(ctx, strings.TrimSpace(req.Credentials.YahooCode))
	if err != nil {
		return nil, err
	}

	key := leagueKey(req.LeagueID)
	var settings, standings, scoreboard models.YahooContent

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.client.Get(gctx, httpClient, fmt.Sprintf("/league/%s/settings", key), &settings); err != nil {
			return fmt.Errorf("fetching settings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.client.Get(gctx, httpClient, fmt.Sprintf("/league/%s/standings", key), &standings); err != nil {
			return fmt.Errorf("fetching standings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.client.Get(gctx, httpClient, fmt.Sprintf("/league/%s/scoreboard;week=%d", key, req.Week), &scoreboard); err != nil {
			return fmt.Errorf("fetching scoreboard: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rosters, err := a.fetchRosters(ctx, httpClient, scoreboard.League.Scoreboard.Matchups, req.Week)
	if err != nil {
		return nil, err
	}

	season := req.Season
	if season == 0 {
		season = settings.League.Season
	}

	snapshot := &models.LeagueSnapshot{
		Platform:     models.PlatformYahoo,
		LeagueID:     req.LeagueID,
		Season:       season,
		Week:         req.Week,
		Users:        convertUsers(standings.League.Standings),
		Rosters:      convertRosters(standings.League.Standings),
		Standings:    buildStandings(standings.League.Standings),
		ScoringRules: statValues(settings.League.Settings.StatModifiers),
		Players:      models.PlayerDirectory{},
	}

	for i, matchup := range scoreboard.League.Scoreboard.Matchups {
		matchupID := i + 1
		if len(matchup.Teams) != 2 {
			matchupID = 0
		}
		for _, team := range matchup.Teams {
			roster := rosters[team.TeamKey]
			result, degraded := teamResult(team.TeamKey, matchupID, roster, snapshot.ScoringRules)
			snapshot.Matchups = append(snapshot.Matchups, result)
			snapshot.Degraded = append(snapshot.Degraded, degraded...)
			for _, p := range roster {
				snapshot.Players[p.PlayerID] = models.PlayerInfo{FirstName: p.FirstName, LastName: p.LastName}
			}
		}
	}

	slog.Info("Loaded Yahoo snapshot",
		"league", key,
		"week", req.Week,
		"matchups", len(snapshot.Matchups),
		"degraded", len(snapshot.Degraded),
	)
	return snapshot, nil
}

func (a *API) fetchRosters(ctx context.Context, httpClient *http.Client, matchups []models.YahooMatchup, week int) (map[string][]models.YahooPlayer, error) {
	var (
		mu      sync.Mutex
		rosters = make(map[string][]models.YahooPlayer)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRosterFetches)
	for _, matchup := range matchups {
		for _, team := range matchup.Teams {
			teamKey := team.TeamKey
			g.Go(func() error {
				var content models.YahooContent
				endpoint := fmt.Sprintf("/team/%s/roster;week=%d/players/stats;type=week;week=%d", teamKey, week, week)
				if err := a.client.Get(gctx, httpClient, endpoint, &content); err != nil {
					return fmt.Errorf("fetching roster for %s: %w", teamKey, err)
				}
				mu.Lock()
				rosters[teamKey] = content.Team.Players
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rosters, nil
}

func teamResult(teamKey string, matchupID int, roster []models.YahooPlayer, rules map[string]float64) (models.TeamWeekResult, []string) {
	result := models.TeamWeekResult{
		RosterID:     teamKey,
		MatchupID:    matchupID,
		PlayerPoints: make(map[string]float64, len(roster)),
	}

	var degraded []string
	for _, p := range roster {
		if _, dup := result.PlayerPoints[p.PlayerID]; dup {
			continue
		}
		raw := statValues(p.Stats)
		points, fellBack := scoring.PlayerPoints(raw, len(raw) > 0, p.PlayerPoints.Total, rules, scoring.YahooAliases)
		if fellBack {
			degraded = append(degraded, p.PlayerID)
		}

		result.PlayerPoints[p.PlayerID] = points
		result.RosterPlayerIDs = append(result.RosterPlayerIDs, p.PlayerID)
		if isStarter(p.SelectedPosition) {
			result.StarterIDs = append(result.StarterIDs, p.PlayerID)
			result.TotalPoints += points
		}
	}
	result.TotalPoints = scoring.Round2(result.TotalPoints)
	return result, degraded
}

func isStarter(position string) bool {
	switch position {
	case "BN", "IR", "IR+", "":
		return false
	}
	return true
}

// statValues skips non-numeric values such as "-".
func statValues(stats []models.YahooStat) map[string]float64 {
	values := make(map[string]float64, len(stats))
	for _, s := range stats {
		v, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
		if err != nil {
			continue
		}
		values[s.StatID] = v
	}
	return values
}

func managerID(team models.YahooTeam) string {
	if len(team.Managers) == 0 {
		return ""
	}
	return team.Managers[0].GUID
}

func convertUsers(teams []models.YahooTeam) []models.User {
	users := make([]models.User, 0, len(teams))
	seen := make(map[string]bool, len(teams))
	for _, team := range teams {
		if len(team.Managers) == 0 {
			continue
		}
		m := team.Managers[0]
		if m.GUID == "" || seen[m.GUID] {
			continue
		}
		seen[m.GUID] = true
		users = append(users, models.User{UserID: m.GUID, DisplayName: m.Nickname, TeamName: team.Name})
	}
	return users
}

func convertRosters(teams []models.YahooTeam) []models.Roster {
	rosters := make([]models.Roster, 0, len(teams))
	for _, team := range teams {
		st := team.TeamStandings
		streak := models.Streak{Direction: models.StreakLoss, Length: st.StreakValue}
		if strings.EqualFold(st.StreakType, "win") {
			streak.Direction = models.StreakWin
		}
		rosters = append(rosters, models.Roster{
			RosterID: team.TeamKey,
			OwnerID:  managerID(team),
			Streak:   streak,
		})
	}
	return rosters
}

func buildStandings(teams []models.YahooTeam) []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, len(teams))
	for _, team := range teams {
		rows = append(rows, models.StandingsRow{
			TeamName:     team.Name,
			Wins:         team.TeamStandings.Wins,
			Losses:       team.TeamStandings.Losses,
			SeasonPoints: scoring.Round2(team.TeamStandings.PointsFor),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SeasonPoints > rows[j].SeasonPoints
	})
	return rows
}
