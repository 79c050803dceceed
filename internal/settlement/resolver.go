package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/ledger"
	"github.com/pitchside/league/internal/repository"
)

// Engine settles wagers and predictions against finished match results.
// Settlement is structurally idempotent: wager and prediction status
// transitions are one-way, the open-item queries exclude settled rows,
// and ledger postings carry idempotency references.
type Engine struct {
	matches     repository.MatchRepository
	wagers      repository.WagerRepository
	predictions repository.PredictionRepository
	ledger      *ledger.Engine
	outbox      repository.OutboxRepository
	logger      *slog.Logger
}

// NewEngine creates a settlement engine.
func NewEngine(
	matches repository.MatchRepository,
	wagers repository.WagerRepository,
	predictions repository.PredictionRepository,
	ledgerEngine *ledger.Engine,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		matches:     matches,
		wagers:      wagers,
		predictions: predictions,
		ledger:      ledgerEngine,
		outbox:      outbox,
		logger:      logger,
	}
}

// ResolveMatch evaluates every open wager and prediction referencing the
// finished match. Per-item failures are logged and skipped so one bad
// record cannot abort the batch. Re-invoking on an already-settled match
// changes nothing: the open-item queries come back empty.
func (e *Engine) ResolveMatch(ctx context.Context, matchID uuid.UUID) ([]domain.SettlementOutcome, error) {
	m, err := e.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}
	switch m.Status {
	case domain.MatchFinished:
		if !m.ScoreConsistent() {
			e.logger.Warn("finished match scores do not match event log, skipping settlement",
				"match_id", matchID, "home_score", m.HomeScore, "away_score", m.AwayScore)
			return nil, nil
		}
	case domain.MatchCancelled, domain.MatchPostponed:
		// Absorbing states: nothing here will ever be graded, so open
		// wagers void and pending predictions settle without points.
	default:
		e.logger.Warn("match result unavailable, cannot resolve yet",
			"match_id", matchID, "status", m.Status)
		return nil, nil
	}

	var outcomes []domain.SettlementOutcome

	open, err := e.wagers.ListOpenByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list open wagers: %w", err)
	}
	for i := range open {
		outcome, err := e.settleWager(ctx, &open[i])
		if err != nil {
			e.logger.Error("wager settlement failed", "wager_id", open[i].ID, "error", err)
			continue
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}

	pending, err := e.predictions.ListPendingByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list pending predictions: %w", err)
	}
	for i := range pending {
		outcome, err := e.settlePrediction(ctx, &pending[i], m)
		if err != nil {
			e.logger.Error("prediction settlement failed", "prediction_id", pending[i].ID, "error", err)
			continue
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}

	return outcomes, nil
}

// settleWager evaluates one wager. Legs on unfinished matches keep the
// wager pending; a single failing leg on a finished match loses the
// whole wager immediately. The wager wins only when every leg's match is
// finished and every leg's condition holds.
func (e *Engine) settleWager(ctx context.Context, w *domain.Wager) (*domain.SettlementOutcome, error) {
	if w.Status.Settled() {
		return nil, nil
	}

	pending := false
	voided := false
	for i := range w.Legs {
		leg := &w.Legs[i]
		m, err := e.matches.FindByID(ctx, leg.MatchID)
		if err != nil {
			return nil, fmt.Errorf("load leg match: %w", err)
		}
		if m == nil {
			e.logger.Warn("wager leg references missing match",
				"wager_id", w.ID, "match_id", leg.MatchID)
			return nil, nil
		}

		switch m.Status {
		case domain.MatchFinished:
			result, reason := EvaluateLeg(leg.Condition, m)
			leg.Result, leg.Reason = result, reason
			if result == domain.LegLost {
				return e.finalizeLost(ctx, w, reason)
			}
		case domain.MatchCancelled, domain.MatchPostponed:
			voided = true
		default:
			pending = true
		}
	}

	if voided {
		return e.finalizeVoid(ctx, w)
	}
	if pending {
		return nil, nil
	}
	return e.finalizeWon(ctx, w)
}

func (e *Engine) finalizeWon(ctx context.Context, w *domain.Wager) (*domain.SettlementOutcome, error) {
	now := time.Now()
	w.Status = domain.WagerWon
	w.SettledAt = &now
	if err := e.wagers.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update wager: %w", err)
	}

	payout := w.Payout()
	meta, _ := json.Marshal(map[string]string{"settlement": "wager_won", "wager_id": w.ID.String()})
	if _, err := e.ledger.CreditPayout(ctx, w.AccountID, payout, fmt.Sprintf("wager-payout-%s", w.ID), meta); err != nil {
		return nil, fmt.Errorf("credit payout: %w", err)
	}
	if err := e.outbox.Insert(ctx, domain.NewWagerSettledEvent(w)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return &domain.SettlementOutcome{Kind: "wager", ID: w.ID, Status: string(domain.WagerWon), Payout: payout}, nil
}

func (e *Engine) finalizeLost(ctx context.Context, w *domain.Wager, reason string) (*domain.SettlementOutcome, error) {
	now := time.Now()
	w.Status = domain.WagerLost
	w.FailReason = reason
	w.SettledAt = &now
	if err := e.wagers.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update wager: %w", err)
	}

	meta, _ := json.Marshal(map[string]string{"settlement": "wager_lost", "reason": reason})
	if _, err := e.ledger.RecordLoss(ctx, w.AccountID, fmt.Sprintf("wager-loss-%s", w.ID), meta); err != nil {
		return nil, fmt.Errorf("record loss: %w", err)
	}
	if err := e.outbox.Insert(ctx, domain.NewWagerSettledEvent(w)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return &domain.SettlementOutcome{Kind: "wager", ID: w.ID, Status: string(domain.WagerLost), Reason: reason}, nil
}

// finalizeVoid returns the stake when a referenced match was cancelled or
// postponed; those states are absorbing, so the wager can never complete.
func (e *Engine) finalizeVoid(ctx context.Context, w *domain.Wager) (*domain.SettlementOutcome, error) {
	now := time.Now()
	w.Status = domain.WagerVoid
	w.SettledAt = &now
	if err := e.wagers.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update wager: %w", err)
	}

	meta, _ := json.Marshal(map[string]string{"settlement": "wager_void"})
	if _, err := e.ledger.RefundStake(ctx, w.AccountID, w.Stake, fmt.Sprintf("wager-void-%s", w.ID), meta); err != nil {
		return nil, fmt.Errorf("refund stake: %w", err)
	}
	if err := e.outbox.Insert(ctx, domain.NewWagerSettledEvent(w)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return &domain.SettlementOutcome{Kind: "wager", ID: w.ID, Status: string(domain.WagerVoid), Payout: w.Stake}, nil
}
