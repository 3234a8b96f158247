package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/omarshaarawi/commish/internal/llm"
	"github.com/omarshaarawi/commish/internal/models"
	"github.com/omarshaarawi/commish/internal/recap"
	"github.com/omarshaarawi/commish/internal/repository/memory"
	"github.com/omarshaarawi/commish/internal/week"
)

// teamMatchThreshold is the minimum normalized similarity for /team lookups.
const teamMatchThreshold = 0.6

type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error)
}

type RecapService struct {
	api       SnapshotLoader
	repo      *memory.Repository
	streamer  llm.Streamer
	moderator llm.Moderator
	now       func() time.Time
}

type Option func(*RecapService)

// WithNarrator enables persona narration. moderator may be nil.
func WithNarrator(streamer llm.Streamer, moderator llm.Moderator) Option {
	return func(s *RecapService) {
		s.streamer = streamer
		s.moderator = moderator
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *RecapService) { s.now = now }
}

func NewRecapService(api SnapshotLoader, repo *memory.Repository, opts ...Option) *RecapService {
	s := &RecapService{api: api, repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RecapService) CanNarrate() bool {
	return s.streamer != nil
}

// Resolve fills the week and season a request leaves at zero.
func (s *RecapService) Resolve(req models.LeagueRequest) models.LeagueRequest {
	now := s.now()
	if req.Week <= 0 {
		req.Week = week.SafestWeek(now)
	}
	if req.Season <= 0 {
		req.Season = week.SeasonYear(now)
	}
	return req
}

func (s *RecapService) Snapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	req = s.Resolve(req)
	key, cacheable := memory.KeyFor(req)
	cacheable = cacheable && s.repo != nil

	if cacheable {
		if snapshot, ok := s.repo.GetSnapshot(key, s.now()); ok {
			slog.Debug("Snapshot cache hit", "platform", req.Platform, "league", req.LeagueID, "week", req.Week)
			return snapshot, nil
		}
	}

	snapshot, err := s.api.LoadSnapshot(ctx, req)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.repo.SaveSnapshot(key, snapshot, s.now())
	}
	return snapshot, nil
}

func (s *RecapService) Stats(ctx context.Context, req models.LeagueRequest) (recap.WeeklyStats, error) {
	snapshot, err := s.Snapshot(ctx, req)
	if err != nil {
		return recap.WeeklyStats{}, err
	}
	return recap.Build(snapshot), nil
}

// Summary returns the stats together with their markdown rendering.
func (s *RecapService) Summary(ctx context.Context, req models.LeagueRequest) (recap.WeeklyStats, string, error) {
	stats, err := s.Stats(ctx, req)
	if err != nil {
		return recap.WeeklyStats{}, "", err
	}
	return stats, RenderSummary(stats), nil
}

// ScreenPersona runs the character description past moderation.
func (s *RecapService) ScreenPersona(ctx context.Context, persona llm.Persona) error {
	character := strings.TrimSpace(persona.Character)
	if s.moderator == nil || character == "" {
		return nil
	}
	flagged, err := s.moderator.Moderate(ctx, character)
	if err != nil {
		return fmt.Errorf("moderating character description: %w", err)
	}
	if flagged {
		return llm.ErrPersonaRejected
	}
	return nil
}

// Narrate writes the stat summary followed by the persona's recap to w as it
// streams. The persona is screened before any league data is fetched.
func (s *RecapService) Narrate(ctx context.Context, req models.LeagueRequest, persona llm.Persona, w io.Writer) error {
	if s.streamer == nil {
		return llm.ErrNotConfigured
	}
	if err := s.ScreenPersona(ctx, persona); err != nil {
		return err
	}

	stats, summary, err := s.Summary(ctx, req)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "## Stat Summary\n\n"+summary+"\n## Weekly Recap\n\n"); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	system, user, err := llm.BuildPrompt(persona, stats.Week, summary)
	if err != nil {
		return err
	}

	start := time.Now()
	content, errs := s.streamer.Stream(ctx, system, user)
	if err := llm.Drain(ctx, content, errs, w); err != nil {
		return fmt.Errorf("streaming recap: %w", err)
	}
	slog.Info("Recap narrated",
		"platform", stats.Platform,
		"league", stats.LeagueID,
		"week", stats.Week,
		"trash_talk", persona.Normalized().TrashTalk,
		"elapsed", time.Since(start),
	)
	return nil
}

func (s *RecapService) Standings(ctx context.Context, req models.LeagueRequest) (string, error) {
	snapshot, err := s.Snapshot(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error fetching standings: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("🏆 *Current Standings*\n\n")
	if len(snapshot.Standings) == 0 {
		sb.WriteString(noData)
	}
	for i, row := range snapshot.Standings {
		sb.WriteString(fmt.Sprintf("%d. *%s*\n", i+1, row.TeamName))
		sb.WriteString(fmt.Sprintf("   Record: %d-%d\n", row.Wins, row.Losses))
		sb.WriteString(fmt.Sprintf("   Points For: %.2f\n\n", row.SeasonPoints))
	}
	return sb.String(), nil
}

// TeamLine reports one team's week, found by approximate name.
func (s *RecapService) TeamLine(ctx context.Context, req models.LeagueRequest, teamName string) (string, error) {
	snapshot, err := s.Snapshot(ctx, req)
	if err != nil {
		return "", err
	}

	names := recap.TeamNames(snapshot)
	rosterID, ok := matchTeam(teamName, names)
	if !ok {
		return fmt.Sprintf("🔍 No team found matching '%s'.", teamName), nil
	}
	name := names[rosterID]

	var mine *models.TeamWeekResult
	for i := range snapshot.Matchups {
		if snapshot.Matchups[i].RosterID == rosterID {
			mine = &snapshot.Matchups[i]
			break
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *%s* - Week %d\n", name, snapshot.Week))
	if mine == nil {
		sb.WriteString("No result this week.")
		return sb.String(), nil
	}
	sb.WriteString(fmt.Sprintf("Scored %.2f points\n", mine.TotalPoints))

	pairs, _ := recap.PairMatchups(snapshot.Matchups)
	for _, p := range pairs {
		var opp *models.TeamWeekResult
		switch rosterID {
		case p.A.RosterID:
			opp = &p.B
		case p.B.RosterID:
			opp = &p.A
		}
		if opp == nil {
			continue
		}
		outcome := "Tied"
		if mine.TotalPoints > opp.TotalPoints {
			outcome = "Beat"
		} else if mine.TotalPoints < opp.TotalPoints {
			outcome = "Lost to"
		}
		sb.WriteString(fmt.Sprintf("%s *%s* %.2f - %.2f\n", outcome, names[opp.RosterID], mine.TotalPoints, opp.TotalPoints))
		break
	}

	best, bestPts := "", -1.0
	for _, id := range mine.StarterIDs {
		if pts := mine.PlayerPoints[id]; pts > bestPts {
			best, bestPts = id, pts
		}
	}
	if best != "" {
		sb.WriteString(fmt.Sprintf("Top starter: %s (%.2f)\n", recap.PlayerName(best, snapshot.Players), bestPts))
	}
	return sb.String(), nil
}

// matchTeam tries a case-insensitive substring, then Levenshtein similarity
// above teamMatchThreshold, then an in-order character match such as "bnch".
func matchTeam(query string, names map[string]string) (string, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return "", false
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if strings.Contains(strings.ToLower(names[id]), query) {
			return id, true
		}
	}

	bestID := ""
	bestScore := teamMatchThreshold
	for _, id := range ids {
		candidate := strings.ToLower(names[id])
		distance := fuzzy.LevenshteinDistance(query, candidate)
		maxLen := float64(max(len(query), len(candidate)))
		similarity := 1 - float64(distance)/maxLen
		if similarity > bestScore {
			bestScore = similarity
			bestID = id
		}
	}
	if bestID != "" {
		return bestID, true
	}

	targets := make([]string, len(ids))
	for i, id := range ids {
		targets[i] = names[id]
	}
	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Stable(ranks)
	return ids[ranks[0].OriginalIndex], true
}
