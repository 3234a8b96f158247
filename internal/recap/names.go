package recap

import (
	"strings"

	"github.com/omarshaarawi/commish/internal/models"
)

const (
	UnknownTeam   = "Unknown Team"
	UnknownPlayer = "Unknown Player"
)

// ResolveTeamName follows roster -> owner -> user and returns the user's
// effective team name, or UnknownTeam when any link is missing.
func ResolveTeamName(rosterID string, rosters []models.Roster, users []models.User) string {
	ownerID := ""
	found := false
	for _, r := range rosters {
		if r.RosterID == rosterID {
			ownerID = r.OwnerID
			found = true
			break
		}
	}
	if !found || ownerID == "" {
		return UnknownTeam
	}

	for _, u := range users {
		if u.UserID == ownerID {
			if name := u.EffectiveTeamName(); name != "" {
				return name
			}
			return UnknownTeam
		}
	}
	return UnknownTeam
}

// TeamNames resolves every roster referenced by the snapshot once, keyed by roster ID.
func TeamNames(s *models.LeagueSnapshot) map[string]string {
	names := make(map[string]string, len(s.Rosters))
	for _, r := range s.Rosters {
		if _, ok := names[r.RosterID]; !ok {
			names[r.RosterID] = ResolveTeamName(r.RosterID, s.Rosters, s.Users)
		}
	}
	for _, m := range s.Matchups {
		if _, ok := names[m.RosterID]; !ok {
			names[m.RosterID] = ResolveTeamName(m.RosterID, s.Rosters, s.Users)
		}
	}
	return names
}

func teamName(names map[string]string, rosterID string) string {
	if name, ok := names[rosterID]; ok {
		return name
	}
	return UnknownTeam
}

// PlayerName returns "First Last" from the directory, or UnknownPlayer.
func PlayerName(playerID string, directory models.PlayerDirectory) string {
	info, ok := directory[playerID]
	if !ok {
		return UnknownPlayer
	}
	return strings.TrimSpace(info.FirstName + " " + info.LastName)
}
