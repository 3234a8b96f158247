// Package players loads the static player-name directory used for Sleeper leagues.
package players

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/omarshaarawi/commish/internal/models"
)

// ErrDirectoryUnavailable means the directory file itself could not be read.
// It is distinct from a single player being absent, which only degrades that
// player's name to "Unknown Player".
var ErrDirectoryUnavailable = errors.New("player directory unavailable")

// LoadFile reads a directory in the Sleeper players/nfl format.
func LoadFile(path string) (models.PlayerDirectory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	var dir models.PlayerDirectory
	if err := json.Unmarshal(b, &dir); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrDirectoryUnavailable, path, err)
	}
	if dir == nil {
		dir = models.PlayerDirectory{}
	}
	return dir, nil
}

// Save writes the directory keeping only the fields the recap uses.
func Save(path string, dir models.PlayerDirectory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	b, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("encoding player directory: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
