package service

import (
	"fmt"
	"strings"

	"github.com/omarshaarawi/commish/internal/recap"
	"github.com/omarshaarawi/commish/internal/week"
)

const noData = "No data this week"

// RenderSummary formats the weekly stats as the markdown stat summary that
// is shown to users and handed to the persona prompt.
func RenderSummary(stats recap.WeeklyStats) string {
	var sb strings.Builder

	sb.WriteString("### Weekly Highlights\n")
	if stats.Week > 0 {
		sb.WriteString(fmt.Sprintf("**Week %d**\n", stats.Week))
	}
	if stats.HighestScoringTeam.NoData {
		sb.WriteString(fmt.Sprintf("**Highest Scoring Team:** %s\n", noData))
	} else {
		sb.WriteString(fmt.Sprintf("**Highest Scoring Team:** %s (%.2f points)\n",
			stats.HighestScoringTeam.Team, stats.HighestScoringTeam.Points))
	}

	sb.WriteString("\n### Top 3 Standings\n")
	if len(stats.TopStandings) == 0 {
		sb.WriteString(noData + "\n")
	}
	for i, row := range stats.TopStandings {
		sb.WriteString(fmt.Sprintf("  %d. %s - %.2f points (%dW-%dL)\n", i+1, row.TeamName, row.SeasonPoints, row.Wins, row.Losses))
	}

	sb.WriteString("\n### Player Awards\n")
	sb.WriteString(playerLine("Highest Scoring Player", stats.HighestScoringPlayer))
	sb.WriteString(playerLine("Lowest Scoring Starter", stats.LowestScoringStarter))
	sb.WriteString(playerLine("Highest Scoring Benched Player", stats.HighestScoringBenched))

	sb.WriteString("\n### Matchup Highlights\n")
	sb.WriteString(gameLine("Biggest Blowout", stats.BiggestBlowout))
	sb.WriteString(gameLine("Closest Game", stats.ClosestGame))

	sb.WriteString("\n### Hottest Streak\n")
	if stats.HottestStreak.Length == 0 {
		sb.WriteString("No team is on a winning streak.\n")
	} else {
		sb.WriteString(fmt.Sprintf("**%s** has won %d in a row.\n", stats.HottestStreak.Team, stats.HottestStreak.Length))
	}

	if stats.DegradedPlayers > 0 {
		sb.WriteString(fmt.Sprintf("\n_%d player scores used the platform's own totals because raw stats were unavailable._\n", stats.DegradedPlayers))
	}

	return sb.String()
}

func playerLine(label string, p recap.PlayerStat) string {
	if p.NoData {
		return fmt.Sprintf("**%s:** %s\n", label, noData)
	}
	return fmt.Sprintf("**%s:** %s (%s) - %.2f points\n", label, p.Player, p.Team, p.Points)
}

func gameLine(label string, g recap.GameStat) string {
	if g.NoData {
		return fmt.Sprintf("**%s:** %s\n", label, noData)
	}
	a, b := g.Teams[0], g.Teams[1]
	return fmt.Sprintf("**%s:** %s (%.1f) vs %s (%.1f) (Point Differential: **%.2f**)\n",
		label, a.Team, a.Points, b.Team, b.Points, g.Differential)
}

// FormatWeek renders the week selection for chat surfaces.
func FormatWeek(sel week.Selection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 *%d Season, Week %d*\n\n", sel.Season, sel.CurrentWeek))
	sb.WriteString(fmt.Sprintf("Last completed week: %d\n", sel.LastCompletedWeek))
	sb.WriteString(fmt.Sprintf("Recap will cover week %d\n", sel.SafestWeek))
	if sel.Open {
		sb.WriteString(fmt.Sprintf("Today is %s. The most recent week is completed and a recap is available.", sel.Weekday))
	} else {
		sb.WriteString("Recaps are best generated between Tuesday 4am and Thursday 7pm Eastern.")
	}
	return sb.String()
}
