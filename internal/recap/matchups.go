package recap

import "github.com/omarshaarawi/commish/internal/models"

// MatchupPair is one head-to-head game, sides in feed order.
type MatchupPair struct {
	A models.TeamWeekResult
	B models.TeamWeekResult
}

// PairMatchups groups results by matchup ID in first-seen order and keeps the
// groups of exactly two. Byes, unscheduled results and oversized groups are
// dropped; excluded counts the dropped groups.
func PairMatchups(results []models.TeamWeekResult) (pairs []MatchupPair, excluded int) {
	var order []int
	groups := make(map[int][]models.TeamWeekResult)
	for _, r := range results {
		if r.MatchupID == 0 {
			excluded++
			continue
		}
		if _, ok := groups[r.MatchupID]; !ok {
			order = append(order, r.MatchupID)
		}
		groups[r.MatchupID] = append(groups[r.MatchupID], r)
	}

	pairs = make([]MatchupPair, 0, len(order))
	for _, id := range order {
		g := groups[id]
		if len(g) != 2 {
			excluded++
			continue
		}
		pairs = append(pairs, MatchupPair{A: g[0], B: g[1]})
	}
	return pairs, excluded
}
