package models

import "encoding/xml"

type YahooContent struct {
	XMLName xml.Name    `xml:"fantasy_content"`
	League  YahooLeague `xml:"league"`
	Team    YahooTeam   `xml:"team"`
}

type YahooLeague struct {
	LeagueKey  string          `xml:"league_key"`
	Name       string          `xml:"name"`
	Season     int             `xml:"season"`
	Settings   YahooSettings   `xml:"settings"`
	Standings  []YahooTeam     `xml:"standings>teams>team"`
	Scoreboard YahooScoreboard `xml:"scoreboard"`
}

type YahooSettings struct {
	StatModifiers []YahooStat `xml:"stat_modifiers>stats>stat"`
}

type YahooStat struct {
	StatID string `xml:"stat_id"`
	Value  string `xml:"value"`
}

type YahooScoreboard struct {
	Week     int            `xml:"week"`
	Matchups []YahooMatchup `xml:"matchups>matchup"`
}

type YahooMatchup struct {
	Week  int         `xml:"week"`
	Teams []YahooTeam `xml:"teams>team"`
}

type YahooManager struct {
	GUID     string `xml:"guid"`
	Nickname string `xml:"nickname"`
}

type YahooTeam struct {
	TeamKey       string             `xml:"team_key"`
	TeamID        string             `xml:"team_id"`
	Name          string             `xml:"name"`
	Managers      []YahooManager     `xml:"managers>manager"`
	TeamPoints    YahooPoints        `xml:"team_points"`
	TeamStandings YahooTeamStandings `xml:"team_standings"`
	Players       []YahooPlayer      `xml:"roster>players>player"`
}

type YahooPoints struct {
	Total float64 `xml:"total"`
}

type YahooTeamStandings struct {
	Rank        int     `xml:"rank"`
	Wins        int     `xml:"outcome_totals>wins"`
	Losses      int     `xml:"outcome_totals>losses"`
	Ties        int     `xml:"outcome_totals>ties"`
	StreakType  string  `xml:"streak>type"`
	StreakValue int     `xml:"streak>value"`
	PointsFor   float64 `xml:"points_for"`
}

type YahooPlayer struct {
	PlayerKey        string      `xml:"player_key"`
	PlayerID         string      `xml:"player_id"`
	FirstName        string      `xml:"name>first"`
	LastName         string      `xml:"name>last"`
	SelectedPosition string      `xml:"selected_position>position"`
	Stats            []YahooStat `xml:"player_stats>stats>stat"`
	PlayerPoints     YahooPoints `xml:"player_points"`
}
