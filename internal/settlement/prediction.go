package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/pitchside/league/internal/domain"
)

// basePredictionPoints is the award for a correct call at full
// confidence; lower confidence scales the award down proportionally.
const basePredictionPoints = 100

// settlePrediction settles one pending prediction against a match in a
// terminal state. A finished match grades the call correct or incorrect,
// with points awarded only on correct outcomes, weighted by the stated
// confidence. A cancelled or postponed match voids the call outright.
func (e *Engine) settlePrediction(ctx context.Context, p *domain.Prediction, m *domain.Match) (*domain.SettlementOutcome, error) {
	if p.Status != domain.PredictionPending {
		return nil, nil
	}

	now := time.Now()
	p.SettledAt = &now
	p.PointsAwarded = 0

	if m.Status != domain.MatchFinished {
		p.Status = domain.PredictionVoid
	} else {
		winner := m.Winner()
		correct := false
		switch {
		case p.WinnerID == nil && winner == nil:
			correct = true
		case p.WinnerID != nil && winner != nil && *p.WinnerID == *winner:
			correct = true
		}
		if correct {
			p.Status = domain.PredictionCorrect
			p.PointsAwarded = basePredictionPoints * p.Confidence / 100
		} else {
			p.Status = domain.PredictionIncorrect
		}
	}

	if err := e.predictions.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update prediction: %w", err)
	}
	if err := e.outbox.Insert(ctx, domain.NewPredictionSettledEvent(p)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return &domain.SettlementOutcome{
		Kind:   "prediction",
		ID:     p.ID,
		Status: string(p.Status),
		Points: p.PointsAwarded,
	}, nil
}
