package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/week"
)

type formError struct {
	msg string
}

func (e formError) Error() string { return e.msg }

// parseRecapForm reads the recap form. Required fields depend on the league type.
func parseRecapForm(r *http.Request) (models.LeagueRequest, llm.Persona, error) {
	var req models.LeagueRequest
	var persona llm.Persona

	if err := r.ParseForm(); err != nil {
		return req, persona, formError{"Could not read the form."}
	}
	value := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }

	leagueType := value("league_type")
	if leagueType == "" || strings.EqualFold(leagueType, "select") {
		return req, persona, formError{"Select a league type."}
	}
	platform, err := models.ParsePlatform(leagueType)
	if err != nil {
		return req, persona, formError{fmt.Sprintf("Unsupported league type %q.", leagueType)}
	}
	req.Platform = platform
	req.LeagueID = value("league_id")
	req.Credentials = models.Credentials{
		SWID:      value("swid"),
		ESPNS2:    value("espn_s2"),
		YahooCode: value("yahoo_code"),
	}

	required := []struct{ label, value string }{{"LeagueID", req.LeagueID}}
	switch platform {
	case models.PlatformESPN:
		required = append(required,
			struct{ label, value string }{"SWID", req.Credentials.SWID},
			struct{ label, value string }{"ESPN_S2", req.Credentials.ESPNS2},
		)
	case models.PlatformYahoo:
		required = append(required, struct{ label, value string }{"Yahoo authorization code", req.Credentials.YahooCode})
	}
	for _, f := range required {
		if f.value == "" {
			return req, persona, formError{f.label + " is required."}
		}
	}

	if raw := value("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > week.RegularSeasonWeeks {
			return req, persona, formError{fmt.Sprintf("Week must be between 1 and %d.", week.RegularSeasonWeeks)}
		}
		req.Week = n
	}

	persona.Character = value("character")
	persona.TrashTalk = llm.DefaultTrashTalk
	if raw := value("trash_talk"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, persona, formError{"Trash Talk Level must be a number."}
		}
		persona.TrashTalk = n
	}
	return req, persona.Normalized(), nil
}

type formPage struct {
	Weeks       []int
	SafestWeek  int
	Open        bool
	YahooAuth   bool
	DefaultTalk int
	MinTalk     int
	MaxTalk     int
	Placeholder string
}

var formTemplate = template.Must(template.New("form").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Commish: Fantasy Football Recaps</title>
</head>
<body>
<h1>Commish</h1>
<p>Generate a weekly recap for your ESPN, Yahoo or Sleeper league.</p>
{{if not .Open}}<p><em>Recaps are best generated between Tuesday 4am and Thursday 7pm Eastern, once the week is final.</em></p>{{end}}
<form method="post" action="/recap">
  <label>League Type
    <select name="league_type">
      <option>Select</option>
      <option>ESPN</option>
      <option>Yahoo</option>
      <option>Sleeper</option>
    </select>
  </label><br>
  <label>LeagueID <input name="league_id"></label><br>
  <fieldset>
    <legend>ESPN private leagues</legend>
    <label>SWID <input name="swid"></label><br>
    <label>ESPN_S2 <input name="espn_s2"></label>
  </fieldset>
  <fieldset>
    <legend>Yahoo</legend>
    {{if .YahooAuth}}<a href="/yahoo/auth" target="_blank">Authorize with Yahoo</a>, then paste the code:{{else}}Yahoo is not configured on this server.{{end}}
    <input name="yahoo_code">
  </fieldset>
  <label>Week
    <select name="week">
      {{range .Weeks}}<option{{if eq . $.SafestWeek}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label><br>
  <label>Character Description <input name="character" placeholder="{{.Placeholder}}"></label><br>
  <label>Trash Talk Level <input type="range" name="trash_talk" min="{{.MinTalk}}" max="{{.MaxTalk}}" value="{{.DefaultTalk}}"></label><br>
  <button type="submit">Generate Recap</button>
</form>
</body>
</html>
`))
