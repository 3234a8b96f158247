package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/repository/memory"
	"github.com/omarshaarawi/commish/internal/service"
)

type stubLoader struct{}

func (stubLoader) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	return &models.LeagueSnapshot{
		Platform: req.Platform,
		LeagueID: req.LeagueID,
		Week:     req.Week,
		Rosters:  []models.Roster{{RosterID: "1", OwnerID: "U1"}, {RosterID: "2", OwnerID: "U2"}},
		Users:    []models.User{{UserID: "U1", TeamName: "Gridiron Gurus"}, {UserID: "U2", TeamName: "Fumble Kings"}},
		Matchups: []models.TeamWeekResult{
			{RosterID: "1", MatchupID: 1, TotalPoints: 101.4},
			{RosterID: "2", MatchupID: 1, TotalPoints: 99.9},
		},
	}, nil
}

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := NewServer(service.NewRecapService(stubLoader{}, memory.NewRepository(0)), "test")

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestWeeklyRecapTool(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "weekly_recap",
		Arguments: map[string]any{"platform": "sleeper", "league_id": "784512", "week": 7},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out struct {
		Stats struct {
			Week        int `json:"week"`
			ClosestGame struct {
				Differential float64 `json:"differential"`
			} `json:"closest_game"`
		} `json:"stats"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, 7, out.Stats.Week)
	assert.InDelta(t, 1.5, out.Stats.ClosestGame.Differential, 0.001)
	assert.Contains(t, out.Summary, "(Point Differential: **1.50**)")
}

func TestWeeklyRecapTool_BadArguments(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "weekly_recap",
		Arguments: map[string]any{"platform": "cbs", "league_id": "1"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "unsupported league type")

	res, err = session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "weekly_recap",
		Arguments: map[string]any{"platform": "sleeper", "league_id": " "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "league_id is required")
}

func TestNFLWeekTool(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "nfl_week", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"current_week"`)
}

func TestHandler_RequiresAPIKey(t *testing.T) {
	server := NewServer(service.NewRecapService(stubLoader{}, memory.NewRepository(0)), "test")
	handler := Handler(server, "secret")

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}
