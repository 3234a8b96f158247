// Package week picks which NFL week a recap should cover.
//
// The heuristics are deliberately conservative: a week only counts as
// completed once scoring corrections have had time to land.
package week

import (
	"time"
	_ "time/tzdata"
)

const RegularSeasonWeeks = 18

var eastern = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Eastern returns the time zone the NFL schedule runs on.
func Eastern() *time.Location { return eastern }

// SeasonYear returns the season a date belongs to. January through August
// belong to the previous year's season.
func SeasonYear(t time.Time) int {
	et := t.In(eastern)
	if et.Month() >= time.September {
		return et.Year()
	}
	return et.Year() - 1
}

// Week1Start is the Wednesday before the first Thursday of September.
func Week1Start(season int) time.Time {
	first := time.Date(season, time.September, 1, 0, 0, 0, 0, eastern)
	offset := (int(time.Thursday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset-1)
}

// CurrentWeek is the schedule week t falls in, not necessarily completed.
func CurrentWeek(t time.Time) int {
	start := Week1Start(SeasonYear(t))
	et := t.In(eastern)
	for w := RegularSeasonWeeks; w >= 1; w-- {
		if !et.Before(start.AddDate(0, 0, 7*(w-1))) {
			return w
		}
	}
	return 1
}

// LastCompletedWeek returns the newest week with final scoring. Before
// Tuesday 06:00 ET the previous week may still be settling, so it steps back
// one more.
func LastCompletedWeek(t time.Time) int {
	et := t.In(eastern)
	current := CurrentWeek(t)

	var w int
	switch day := et.Weekday(); {
	case day >= time.Wednesday:
		w = current - 1
	case day == time.Tuesday && et.Hour() >= 6:
		w = current - 1
	default:
		w = current - 2
	}
	return max(1, w)
}

// AvailableWeeks lists every week from 1 through the last completed one.
func AvailableWeeks(t time.Time) []int {
	last := LastCompletedWeek(t)
	weeks := make([]int, 0, last)
	for w := 1; w <= last; w++ {
		weeks = append(weeks, w)
	}
	return weeks
}

func SafestWeek(t time.Time) int {
	weeks := AvailableWeeks(t)
	if len(weeks) == 0 {
		return 1
	}
	return weeks[len(weeks)-1]
}

// Availability reports whether t falls in the recap window, Tuesday 04:00
// through Thursday 19:00 Eastern, along with the Eastern weekday name.
func Availability(t time.Time) (bool, string) {
	et := t.In(eastern)
	day := et.Weekday()
	switch {
	case day == time.Tuesday && et.Hour() >= 4:
		return true, day.String()
	case day == time.Wednesday:
		return true, day.String()
	case day == time.Thursday && et.Hour() < 19:
		return true, day.String()
	default:
		return false, day.String()
	}
}

type Selection struct {
	Now               time.Time `json:"now"`
	Season            int       `json:"season"`
	CurrentWeek       int       `json:"current_week"`
	LastCompletedWeek int       `json:"last_completed_week"`
	SafestWeek        int       `json:"safest_week"`
	AvailableWeeks    []int     `json:"available_weeks"`
	Open              bool      `json:"open"`
	Weekday           string    `json:"weekday"`
}

// Describe collects every week decision for t.
func Describe(t time.Time) Selection {
	open, day := Availability(t)
	return Selection{
		Now:               t.In(eastern),
		Season:            SeasonYear(t),
		CurrentWeek:       CurrentWeek(t),
		LastCompletedWeek: LastCompletedWeek(t),
		SafestWeek:        SafestWeek(t),
		AvailableWeeks:    AvailableWeeks(t),
		Open:              open,
		Weekday:           day,
	}
}
