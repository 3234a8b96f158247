package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]float64
		rules    map[string]float64
		aliases  AliasTable
		expected float64
	}{
		{
			name:     "matching codes are multiplied and summed",
			raw:      map[string]float64{"pass_yd": 300, "pass_td": 2, "rush_yd": 12},
			rules:    map[string]float64{"pass_yd": 0.04, "pass_td": 4, "rush_yd": 0.1},
			expected: 12 + 8 + 1.2,
		},
		{
			name:     "codes present on one side only are ignored",
			raw:      map[string]float64{"pass_yd": 100, "gp": 1},
			rules:    map[string]float64{"pass_yd": 0.04, "rec": 1},
			expected: 4,
		},
		{
			name:     "disjoint code sets score zero",
			raw:      map[string]float64{"gp": 1, "gs": 1},
			rules:    map[string]float64{"rec": 1},
			expected: 0,
		},
		{
			name:     "empty counters",
			raw:      nil,
			rules:    map[string]float64{"rec": 1},
			expected: 0,
		},
		{
			name:     "empty rules",
			raw:      map[string]float64{"rec": 5},
			rules:    map[string]float64{},
			expected: 0,
		},
		{
			name:     "aliased code counts toward canonical rule",
			raw:      map[string]float64{"def_sack": 3},
			rules:    map[string]float64{"sack": 1},
			aliases:  SleeperAliases,
			expected: 3,
		},
		{
			name:     "aliased duplicate of a canonical counter is not double counted",
			raw:      map[string]float64{"def_sack": 3, "sack": 3},
			rules:    map[string]float64{"sack": 1},
			aliases:  SleeperAliases,
			expected: 3,
		},
		{
			name:     "negative rules subtract",
			raw:      map[string]float64{"pass_int": 2, "pass_td": 1},
			rules:    map[string]float64{"pass_int": -2, "pass_td": 4},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Compute(tt.raw, tt.rules, tt.aliases), 1e-9)
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	raw := map[string]float64{}
	rules := map[string]float64{}
	for i, code := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		raw[code] = 0.1 * float64(i+1)
		rules[code] = 0.3 / float64(i+1)
	}

	first := Compute(raw, rules, nil)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Compute(raw, rules, nil))
	}
}

func TestCompute_AliasCoverage(t *testing.T) {
	tables := map[string]AliasTable{
		"sleeper": SleeperAliases,
		"espn":    ESPNAliases,
		"yahoo":   YahooAliases,
	}
	for name, table := range tables {
		for code, canonical := range table {
			got := Compute(map[string]float64{code: 1}, map[string]float64{canonical: 2.5}, table)
			assert.Equal(t, 2.5, got, "%s alias %s -> %s", name, code, canonical)
		}
	}
}

func TestPlayerPoints(t *testing.T) {
	rules := map[string]float64{"rec": 1, "rec_yd": 0.1}

	points, degraded := PlayerPoints(map[string]float64{"rec": 6, "rec_yd": 87.4}, true, 0, rules, nil)
	assert.Equal(t, 14.74, points)
	assert.False(t, degraded)

	points, degraded = PlayerPoints(nil, false, 11.456, rules, nil)
	assert.Equal(t, 11.46, points)
	assert.True(t, degraded)

	// Raw stats present but empty is a real zero, not a fallback.
	points, degraded = PlayerPoints(map[string]float64{}, true, 9, rules, nil)
	assert.Equal(t, 0.0, points)
	assert.False(t, degraded)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 80.2, Round2(80.2000001))
	assert.Equal(t, 12.35, Round2(12.346))
	assert.Equal(t, -3.1, Round2(-3.1))
}
