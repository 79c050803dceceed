package settlement

import (
	"context"
	"fmt"

	"github.com/pitchside/league/internal/domain"
)

// ResolvePendingCombined rescans every open multi-leg wager and attempts
// resolution. Wagers with legs on unfinished matches simply stay pending;
// callers run this after each match resolution or on a schedule so a
// combination whose last match just finished settles promptly.
func (e *Engine) ResolvePendingCombined(ctx context.Context) ([]domain.SettlementOutcome, error) {
	open, err := e.wagers.ListOpenMultiLeg(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open multi-leg wagers: %w", err)
	}

	var outcomes []domain.SettlementOutcome
	for i := range open {
		outcome, err := e.settleWager(ctx, &open[i])
		if err != nil {
			e.logger.Error("combined wager settlement failed", "wager_id", open[i].ID, "error", err)
			continue
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}
	return outcomes, nil
}
