package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/scoring"
)

const (
	slotBench = 20
	slotIR    = 21

	// statSourceActual marks real stats, as opposed to projections (1).
	statSourceActual = 0
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

// LoadSnapshot reads teams, rosters, scoring settings and the week's schedule
// in a single league request.
func (a *API) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	var leagueResponse models.LeagueResponse
	endpoint := fmt.Sprintf("/seasons/%d/segments/0/leagues/%s", req.Season, req.LeagueID)
	params := map[string]string{
		"view":            "mTeam,mMatchupScore,mRoster,mSettings",
		"scoringPeriodId": strconv.Itoa(req.Week),
	}

	filters := map[string]any{
		"schedule": map[string]any{
			"filterMatchupPeriodIds": map[string]any{
				"value": []int{req.Week},
			},
		},
	}

	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("error marshalling filters: %w", err)
	}

	headers := map[string]string{
		"x-fantasy-filter": string(filtersJSON),
	}

	if err := a.client.Get(ctx, req.Credentials, endpoint, params, headers, &leagueResponse); err != nil {
		return nil, fmt.Errorf("fetching league: %w", err)
	}

	snapshot := &models.LeagueSnapshot{
		Platform:     models.PlatformESPN,
		LeagueID:     req.LeagueID,
		Season:       req.Season,
		Week:         req.Week,
		Users:        convertUsers(leagueResponse.Members, leagueResponse.Teams),
		Rosters:      convertRosters(leagueResponse.Teams),
		Standings:    buildStandings(leagueResponse.Teams),
		ScoringRules: scoringRules(leagueResponse.Settings.ScoringSettings),
		Players:      models.PlayerDirectory{},
	}

	rules := newSlotRules(leagueResponse.Settings.ScoringSettings, snapshot.ScoringRules)
	teams := make(map[int]models.Team, len(leagueResponse.Teams))
	for _, team := range leagueResponse.Teams {
		teams[team.ID] = team
		for _, entry := range team.Roster.Entries {
			snapshot.Players[strconv.Itoa(entry.PlayerID)] = playerInfo(entry.PlayerPoolEntry.Player)
		}
	}

	for _, match := range leagueResponse.Schedule {
		if match.MatchupPeriodID != 0 && match.MatchupPeriodID != req.Week {
			continue
		}
		matchupID := match.ID
		if match.Away == nil || match.Home == nil {
			matchupID = 0
		}
		for _, side := range []*models.TeamScore{match.Home, match.Away} {
			if side == nil {
				continue
			}
			result, degraded := teamResult(teams[side.TeamID], matchupID, req.Week, rules)
			snapshot.Matchups = append(snapshot.Matchups, result)
			snapshot.Degraded = append(snapshot.Degraded, degraded...)
		}
	}

	slog.Info("Loaded ESPN snapshot",
		"league", req.LeagueID,
		"week", req.Week,
		"teams", len(leagueResponse.Teams),
		"matchups", len(snapshot.Matchups),
		"degraded", len(snapshot.Degraded),
	)
	return snapshot, nil
}

func teamResult(team models.Team, matchupID, week int, rules slotRules) (models.TeamWeekResult, []string) {
	result := models.TeamWeekResult{
		RosterID:     strconv.Itoa(team.ID),
		MatchupID:    matchupID,
		PlayerPoints: make(map[string]float64, len(team.Roster.Entries)),
	}

	var degraded []string
	for _, entry := range team.Roster.Entries {
		id := strconv.Itoa(entry.PlayerID)
		if _, dup := result.PlayerPoints[id]; dup {
			continue
		}

		var points float64
		if stat, played := weekStats(entry.PlayerPoolEntry.Player, week); played {
			var fellBack bool
			points, fellBack = scoring.PlayerPoints(stat.Stats, len(stat.Stats) > 0, stat.AppliedTotal,
				rules.forSlot(entry.LineupSlotID), scoring.ESPNAliases)
			if fellBack {
				degraded = append(degraded, id)
			}
		}

		result.PlayerPoints[id] = points
		result.RosterPlayerIDs = append(result.RosterPlayerIDs, id)
		if isStarter(entry.LineupSlotID) {
			result.StarterIDs = append(result.StarterIDs, id)
			result.TotalPoints += points
		}
	}
	result.TotalPoints = scoring.Round2(result.TotalPoints)
	return result, degraded
}

// weekStats returns the actual stat line for the scoring period. Players on
// a bye or inactive have none and score zero.
func weekStats(player models.Player, week int) (models.Stat, bool) {
	for _, stat := range player.Stats {
		if stat.ScoringPeriodID == week && stat.StatSourceID == statSourceActual {
			return stat, true
		}
	}
	return models.Stat{}, false
}

func isStarter(slotID int) bool {
	return slotID != slotBench && slotID != slotIR
}

func scoringRules(settings models.ScoringSettings) map[string]float64 {
	rules := make(map[string]float64, len(settings.ScoringItems))
	for _, item := range settings.ScoringItems {
		rules[strconv.Itoa(item.StatID)] = item.Points
	}
	return rules
}

// slotRules holds the league's base scoring plus per lineup slot overrides.
type slotRules struct {
	base   map[string]float64
	bySlot map[int]map[string]float64
}

func newSlotRules(settings models.ScoringSettings, base map[string]float64) slotRules {
	r := slotRules{base: base, bySlot: map[int]map[string]float64{}}
	for _, item := range settings.ScoringItems {
		for slot, points := range item.PointsOverrides {
			slotID, err := strconv.Atoi(slot)
			if err != nil {
				continue
			}
			rules, ok := r.bySlot[slotID]
			if !ok {
				rules = make(map[string]float64, len(base))
				for stat, v := range base {
					rules[stat] = v
				}
				r.bySlot[slotID] = rules
			}
			rules[strconv.Itoa(item.StatID)] = points
		}
	}
	return r
}

func (r slotRules) forSlot(slotID int) map[string]float64 {
	if rules, ok := r.bySlot[slotID]; ok {
		return rules
	}
	return r.base
}

func teamName(team models.Team) string {
	if name := strings.TrimSpace(team.Name); name != "" {
		return name
	}
	return strings.TrimSpace(team.Location + " " + team.Nickname)
}

func ownerID(team models.Team) string {
	if team.PrimaryOwner != "" {
		return team.PrimaryOwner
	}
	if len(team.Owners) > 0 {
		return team.Owners[0]
	}
	return ""
}

// convertUsers gives every member the name of the team they own. ESPN keys
// teams by owner, so an owner without a member record still gets a user.
func convertUsers(members []models.Member, teams []models.Team) []models.User {
	teamByOwner := make(map[string]string, len(teams))
	for _, team := range teams {
		if owner := ownerID(team); owner != "" {
			if _, ok := teamByOwner[owner]; !ok {
				teamByOwner[owner] = teamName(team)
			}
		}
	}

	users := make([]models.User, 0, len(members))
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		display := m.DisplayName
		if display == "" {
			display = strings.TrimSpace(m.FirstName + " " + m.LastName)
		}
		users = append(users, models.User{UserID: m.ID, DisplayName: display, TeamName: teamByOwner[m.ID]})
		seen[m.ID] = true
	}
	for _, team := range teams {
		owner := ownerID(team)
		if owner != "" && !seen[owner] {
			users = append(users, models.User{UserID: owner, TeamName: teamByOwner[owner]})
			seen[owner] = true
		}
	}
	return users
}

func convertRosters(teams []models.Team) []models.Roster {
	rosters := make([]models.Roster, 0, len(teams))
	for _, team := range teams {
		overall := team.Record.Overall
		streak := models.Streak{Direction: models.StreakLoss, Length: overall.StreakLength}
		if overall.StreakType == "WIN" {
			streak.Direction = models.StreakWin
		}
		rosters = append(rosters, models.Roster{
			RosterID: strconv.Itoa(team.ID),
			OwnerID:  ownerID(team),
			Streak:   streak,
		})
	}
	return rosters
}

func buildStandings(teams []models.Team) []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, len(teams))
	for _, team := range teams {
		rows = append(rows, models.StandingsRow{
			TeamName:     teamName(team),
			Wins:         team.Record.Overall.Wins,
			Losses:       team.Record.Overall.Losses,
			SeasonPoints: scoring.Round2(team.Record.Overall.PointsFor),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SeasonPoints > rows[j].SeasonPoints
	})
	return rows
}

func playerInfo(p models.Player) models.PlayerInfo {
	if p.FirstName != "" || p.LastName != "" {
		return models.PlayerInfo{FirstName: p.FirstName, LastName: p.LastName}
	}
	first, last, _ := strings.Cut(p.FullName, " ")
	return models.PlayerInfo{FirstName: first, LastName: last}
}
