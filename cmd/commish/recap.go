package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/omarshaarawi/commish/internal/models"
)

var recapFlags struct {
	platform  string
	leagueID  string
	week      int
	season    int
	swid      string
	espnS2    string
	yahooCode string
	narrate   bool
	character string
	trashTalk int
	raw       bool
	asJSON    bool
}

var recapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Print the weekly recap for a league",
	Long: `Print the weekly stat summary for a league, rendered for the terminal.

League flags default to the configured league. With --narrate the summary is
followed by the LLM recap, streamed as it is written.`,
	RunE: runRecap,
}

func init() {
	f := recapCmd.Flags()
	f.StringVar(&recapFlags.platform, "platform", "", "League platform: espn, yahoo or sleeper")
	f.StringVar(&recapFlags.leagueID, "league", "", "League id")
	f.IntVar(&recapFlags.week, "week", 0, "NFL week (default: most recent completed week)")
	f.IntVar(&recapFlags.season, "season", 0, "Season year (default: current season)")
	f.StringVar(&recapFlags.swid, "swid", "", "ESPN SWID cookie")
	f.StringVar(&recapFlags.espnS2, "espn-s2", "", "ESPN espn_s2 cookie")
	f.StringVar(&recapFlags.yahooCode, "yahoo-code", "", "Yahoo OAuth authorization code")
	f.BoolVar(&recapFlags.narrate, "narrate", false, "Stream an LLM recap after the summary")
	f.StringVar(&recapFlags.character, "character", "", "Character the narrator plays")
	f.IntVar(&recapFlags.trashTalk, "trash-talk", 0, "Trash talk level 1-10")
	f.BoolVar(&recapFlags.raw, "raw", false, "Print markdown without terminal rendering")
	f.BoolVar(&recapFlags.asJSON, "json", false, "Print the computed stats as JSON")
	recapCmd.MarkFlagsMutuallyExclusive("json", "narrate")
}

func runRecap(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	req, err := recapRequest()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if recapFlags.asJSON {
		stats, err := a.recaps.Stats(ctx, req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	if recapFlags.narrate {
		persona := cfg.Persona()
		if recapFlags.character != "" {
			persona.Character = recapFlags.character
		}
		if recapFlags.trashTalk != 0 {
			persona.TrashTalk = recapFlags.trashTalk
		}
		if err := a.recaps.Narrate(ctx, req, persona.Normalized(), out); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out)
		return err
	}

	_, summary, err := a.recaps.Summary(ctx, req)
	if err != nil {
		return err
	}
	return printMarkdown(out, "## Stat Summary\n\n"+summary, recapFlags.raw)
}

// recapRequest overlays the command flags on the configured league.
func recapRequest() (models.LeagueRequest, error) {
	req, _ := cfg.DefaultLeague()
	if recapFlags.platform != "" {
		p, err := models.ParsePlatform(recapFlags.platform)
		if err != nil {
			return req, err
		}
		req.Platform = p
	}
	if recapFlags.leagueID != "" {
		req.LeagueID = recapFlags.leagueID
	}
	if req.LeagueID == "" || req.Platform == "" {
		return req, fmt.Errorf("a league is required: pass --platform and --league or set LEAGUE_PLATFORM and LEAGUE_ID")
	}
	if recapFlags.week != 0 {
		req.Week = recapFlags.week
	}
	if recapFlags.season != 0 {
		req.Season = recapFlags.season
	}
	if recapFlags.swid != "" {
		req.Credentials.SWID = recapFlags.swid
	}
	if recapFlags.espnS2 != "" {
		req.Credentials.ESPNS2 = recapFlags.espnS2
	}
	req.Credentials.YahooCode = recapFlags.yahooCode
	return req, nil
}

func printMarkdown(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}
