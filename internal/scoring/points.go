// Package scoring turns raw player stat counters into fantasy points using a
// league's scoring rules.
package scoring

import (
	"math"
	"sort"
)

// AliasTable maps a provider stat code to the scoring-rule key it counts toward.
type AliasTable map[string]string

// SleeperAliases covers the weekly stats feed codes that differ from the keys
// used in Sleeper league scoring_settings.
var SleeperAliases = AliasTable{
	"def_sack":      "sack",
	"def_int":       "int",
	"def_fum_rec":   "fum_rec",
	"def_safe":      "safe",
	"def_ff":        "ff",
	"def_blk_kick":  "blk_kick",
	"idp_sack":      "sack",
	"idp_int":       "int",
	"idp_ff":        "ff",
	"idp_safe":      "safe",
	"kr_td":         "st_td",
	"pr_td":         "st_td",
	"def_pts_allow": "pts_allow",
	"def_yds_allow": "yds_allow",
}

// ESPNAliases is empty: ESPN stat IDs are the keys of its scoring items.
var ESPNAliases = AliasTable{}

// YahooAliases is empty: Yahoo stat modifiers are keyed by stat_id.
var YahooAliases = AliasTable{}

// Compute returns the fantasy points for one player's raw counters. Codes
// without a rule, and rules without a counter, contribute nothing. An aliased
// code is skipped when the counters already carry its canonical key. The
// result is not rounded.
func Compute(raw, rules map[string]float64, aliases AliasTable) float64 {
	if len(raw) == 0 || len(rules) == 0 {
		return 0
	}

	// Sorted so repeated calls add in the same order and return identical floats.
	codes := make([]string, 0, len(raw))
	for code := range raw {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	total := 0.0
	for _, code := range codes {
		value := raw[code]
		key := code
		if canonical, ok := aliases[code]; ok && canonical != code {
			if _, direct := raw[canonical]; direct {
				continue
			}
			key = canonical
		}
		if points, ok := rules[key]; ok {
			total += value * points
		}
	}
	return total
}

// PlayerPoints recomputes a player's week from raw counters when they exist,
// otherwise falls back to the upstream total and reports degraded = true.
func PlayerPoints(raw map[string]float64, hasRaw bool, upstream float64, rules map[string]float64, aliases AliasTable) (points float64, degraded bool) {
	if hasRaw {
		return Round2(Compute(raw, rules, aliases)), false
	}
	return Round2(upstream), true
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
