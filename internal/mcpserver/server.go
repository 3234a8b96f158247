package mcpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/service"
	"github.com/omarshaarawi/commish/internal/week"
)

type WeeklyRecapArgs struct {
	Platform  string `json:"platform" jsonschema:"League platform: espn, yahoo or sleeper"`
	LeagueID  string `json:"league_id" jsonschema:"League id on the platform"`
	Week      int    `json:"week,omitempty" jsonschema:"NFL week 1-18 (0 = most recent completed week)"`
	Season    int    `json:"season,omitempty" jsonschema:"Season year (0 = current season)"`
	SWID      string `json:"swid,omitempty" jsonschema:"ESPN SWID cookie for private leagues"`
	ESPNS2    string `json:"espn_s2,omitempty" jsonschema:"ESPN espn_s2 cookie for private leagues"`
	YahooCode string `json:"yahoo_code,omitempty" jsonschema:"Yahoo OAuth authorization code"`
}

type NFLWeekArgs struct{}

// NewServer exposes the recap engine as MCP tools.
func NewServer(recaps *service.RecapService, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "commish",
			Version: version,
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "weekly_recap",
		Description: "Computes a fantasy football league's weekly stats (top team, standings, player awards, blowout, closest game, hottest streak) and the markdown stat summary",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args WeeklyRecapArgs) (*mcp.CallToolResult, any, error) {
		platform, err := models.ParsePlatform(args.Platform)
		if err != nil {
			return toolError(err), nil, nil
		}
		if strings.TrimSpace(args.LeagueID) == "" {
			return toolError(fmt.Errorf("league_id is required")), nil, nil
		}

		stats, summary, err := recaps.Summary(ctx, models.LeagueRequest{
			Platform: platform,
			LeagueID: strings.TrimSpace(args.LeagueID),
			Week:     args.Week,
			Season:   args.Season,
			Credentials: models.Credentials{
				SWID:      args.SWID,
				ESPNS2:    args.ESPNS2,
				YahooCode: args.YahooCode,
			},
		})
		if err != nil {
			return toolError(err), nil, nil
		}

		return toolJSON(map[string]any{
			"stats":            stats,
			"summary":          summary,
			"generated_at_utc": time.Now().UTC().Format(time.RFC3339),
		}), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "nfl_week",
		Description: "Returns the current NFL season and week, the last completed week and whether the recap window is open",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NFLWeekArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(week.Describe(time.Now())), nil, nil
	})

	return server
}

// Handler serves the MCP server over streamable HTTP. A non-empty apiKey is
// required in X-API-Key or as a bearer token.
func Handler(server *mcp.Server, apiKey string) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey != "" {
			key := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
		}
		handler.ServeHTTP(w, r)
	})
}

func toolJSON(v any) *mcp.CallToolResult {
	b, _ := json.MarshalIndent(v, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
