package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/omarshaarawi/commish/internal/models"
)

// Key identifies a cached snapshot. Auth is a fingerprint of the request's
// credentials, so a private league is only served back to the same cookies.
type Key struct {
	Platform models.Platform
	LeagueID string
	Week     int
	Auth     string
}

// KeyFor builds the cache key for req. Yahoo requests are not cacheable:
// their authorization codes are single use, so no later request could prove
// access to the cached league.
func KeyFor(req models.LeagueRequest) (Key, bool) {
	if req.Platform == models.PlatformYahoo {
		return Key{}, false
	}
	return Key{
		Platform: req.Platform,
		LeagueID: req.LeagueID,
		Week:     req.Week,
		Auth:     fingerprint(req.Credentials),
	}, true
}

func fingerprint(c models.Credentials) string {
	if c.SWID == "" && c.ESPNS2 == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.SWID + "\x00" + c.ESPNS2))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	snapshot  *models.LeagueSnapshot
	expiresAt time.Time
}

// Repository caches league snapshots for a fixed TTL.
type Repository struct {
	ttl       time.Duration
	snapshots map[Key]entry
	mu        sync.RWMutex
}

func NewRepository(ttl time.Duration) *Repository {
	return &Repository{
		ttl:       ttl,
		snapshots: make(map[Key]entry),
	}
}

func (r *Repository) SaveSnapshot(key Key, snapshot *models.LeagueSnapshot, now time.Time) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[key] = entry{snapshot: snapshot, expiresAt: now.Add(r.ttl)}
}

// GetSnapshot returns the cached snapshot if it has not expired at now.
func (r *Repository) GetSnapshot(key Key, now time.Time) (*models.LeagueSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.snapshots[key]
	if !ok || !now.Before(e.expiresAt) {
		return nil, false
	}
	return e.snapshot, true
}

// Purge drops expired entries and reports how many were removed.
func (r *Repository) Purge(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for k, e := range r.snapshots {
		if !now.Before(e.expiresAt) {
			delete(r.snapshots, k)
			removed++
		}
	}
	return removed
}

func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots)
}
