package fantasy

import (
	"context"
	"errors"
	"fmt"

	"github.com/omarshaarawi/commish/internal/models"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Loader fetches one league week and normalizes it into a snapshot.
type Loader interface {
	LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error)
}

type API struct {
	loaders map[models.Platform]Loader
}

func NewAPI(loaders map[models.Platform]Loader) *API {
	return &API{loaders: loaders}
}

func (a *API) LoadSnapshot(ctx context.Context, req models.LeagueRequest) (*models.LeagueSnapshot, error) {
	loader, ok := a.loaders[req.Platform]
	if !ok || loader == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, req.Platform)
	}

	snapshot, err := loader.LoadSnapshot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("loading %s league %s week %d: %w", req.Platform, req.LeagueID, req.Week, err)
	}
	return snapshot, nil
}

func (a *API) Supports(p models.Platform) bool {
	_, ok := a.loaders[p]
	return ok
}
