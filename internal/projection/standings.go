package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// StandingsSnapshot is a cached season table. Standings stay recomputable
// from finished matches; the snapshot only spares repeated recomputation
// between clock advances.
type StandingsSnapshot struct {
	SeasonID   uuid.UUID         `json:"season_id"`
	Table      []domain.Standing `json:"table"`
	ComputedAt time.Time         `json:"computed_at"`
}

const standingsTTL = 30 * time.Second

func standingsKey(seasonID uuid.UUID) string {
	return fmt.Sprintf("projection:standings:%s", seasonID)
}

// CacheStandings stores a freshly computed table for the season.
func CacheStandings(ctx context.Context, store Store, seasonID uuid.UUID, table []domain.Standing) error {
	snap := StandingsSnapshot{SeasonID: seasonID, Table: table, ComputedAt: time.Now().UTC()}
	return setJSON(ctx, store, standingsKey(seasonID), snap, standingsTTL)
}

// LookupStandings returns the cached table for a season, or ErrMiss.
func LookupStandings(ctx context.Context, store Store, seasonID uuid.UUID) (*StandingsSnapshot, error) {
	var snap StandingsSnapshot
	if err := getJSON(ctx, store, standingsKey(seasonID), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// InvalidateStandings drops the cached table, forcing a recompute on the
// next read. Called after the clock advances past finished matches.
func InvalidateStandings(ctx context.Context, store Store, seasonID uuid.UUID) error {
	return store.Delete(ctx, standingsKey(seasonID))
}
