package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/ledger"
	"github.com/pitchside/league/internal/policy"
	"github.com/pitchside/league/internal/repository"
)

// WagerService accepts wagers and predictions against upcoming matches.
type WagerService struct {
	accounts    repository.AccountRepository
	matches     repository.MatchRepository
	wagers      repository.WagerRepository
	predictions repository.PredictionRepository
	entries     repository.EntryRepository
	engine      *ledger.Engine
	outbox      repository.OutboxRepository
	limits      policy.StakePolicy
	logger      *slog.Logger
}

// NewWagerService creates a WagerService.
func NewWagerService(
	accounts repository.AccountRepository,
	matches repository.MatchRepository,
	wagers repository.WagerRepository,
	predictions repository.PredictionRepository,
	entries repository.EntryRepository,
	engine *ledger.Engine,
	outbox repository.OutboxRepository,
	limits policy.StakePolicy,
	logger *slog.Logger,
) *WagerService {
	return &WagerService{
		accounts:    accounts,
		matches:     matches,
		wagers:      wagers,
		predictions: predictions,
		entries:     entries,
		engine:      engine,
		outbox:      outbox,
		limits:      limits,
		logger:      logger,
	}
}

// PlaceWagerLegInput is one leg of a wager placement request.
type PlaceWagerLegInput struct {
	MatchID   uuid.UUID           `json:"match_id"`
	Condition domain.LegCondition `json:"condition"`
}

// PlaceWagerInput holds the wager placement request.
type PlaceWagerInput struct {
	AccountID uuid.UUID            `json:"account_id"`
	Stake     int64                `json:"stake"`
	Odds      float64              `json:"odds"`
	Legs      []PlaceWagerLegInput `json:"legs"`
}

// PlaceWager validates every leg, debits the stake through the ledger
// and records the wager as active. The stake debit carries the wager id
// as its idempotency reference, so a retried placement with the same id
// cannot double-charge.
func (s *WagerService) PlaceWager(ctx context.Context, input PlaceWagerInput) (*domain.Wager, error) {
	if input.Stake <= 0 {
		return nil, domain.ErrValidation("stake must be positive")
	}
	if input.Odds < 1 {
		return nil, domain.ErrValidation("odds must be at least 1.0")
	}
	if len(input.Legs) == 0 {
		return nil, domain.ErrValidation("a wager needs at least one leg")
	}

	account, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, domain.ErrInternal("load account", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", input.AccountID.String())
	}

	dailyStaked, err := s.stakedToday(ctx, input.AccountID)
	if err != nil {
		return nil, domain.ErrInternal("load stake history", err)
	}
	if ev := policy.EvaluateStake(s.limits, input.Stake, dailyStaked); !ev.Allowed {
		return nil, domain.ErrPrecondition(
			fmt.Sprintf("%s limit exceeded: %d requested against limit %d", ev.BreachedLimit, ev.RequestedAmt, ev.LimitValue))
	}

	wagerID := uuid.New()
	legs := make([]domain.WagerLeg, 0, len(input.Legs))
	for i, legInput := range input.Legs {
		if err := domain.ValidateLegCondition(legInput.Condition); err != nil {
			return nil, domain.ErrValidation(fmt.Sprintf("leg %d: %v", i+1, err))
		}
		m, err := s.matches.FindByID(ctx, legInput.MatchID)
		if err != nil {
			return nil, domain.ErrInternal("load match", err)
		}
		if m == nil {
			return nil, domain.ErrNotFound("match", legInput.MatchID.String())
		}
		if m.Status.Terminal() {
			return nil, domain.ErrPrecondition(fmt.Sprintf("match %s is already %s", m.ID, m.Status))
		}
		legs = append(legs, domain.WagerLeg{
			ID:        uuid.New(),
			WagerID:   wagerID,
			MatchID:   legInput.MatchID,
			Condition: legInput.Condition,
			Result:    domain.LegPending,
		})
	}

	wager := &domain.Wager{
		ID:        wagerID,
		AccountID: input.AccountID,
		Stake:     input.Stake,
		Odds:      input.Odds,
		Status:    domain.WagerActive,
		Legs:      legs,
		PlacedAt:  time.Now(),
	}

	reference := fmt.Sprintf("wager-stake-%s", wagerID)
	meta, _ := json.Marshal(map[string]string{"wager_id": wagerID.String()})
	if _, err := s.engine.DebitStake(ctx, input.AccountID, input.Stake, reference, meta); err != nil {
		return nil, err
	}

	if err := s.wagers.Create(ctx, wager); err != nil {
		// The stake is already gone; put it back rather than strand it.
		refundRef := fmt.Sprintf("wager-abort-%s", wagerID)
		if _, refundErr := s.engine.RefundStake(ctx, input.AccountID, input.Stake, refundRef, meta); refundErr != nil {
			s.logger.Error("stake refund after failed wager insert", "wager_id", wagerID, "error", refundErr)
		}
		return nil, err
	}

	if err := s.outbox.Insert(ctx, domain.NewWagerPlacedEvent(wager)); err != nil {
		s.logger.Error("outbox write failed", "wager_id", wagerID, "error", err)
	}

	s.logger.Info("wager placed",
		"wager_id", wagerID, "account_id", input.AccountID,
		"stake", input.Stake, "odds", input.Odds, "legs", len(legs))
	return wager, nil
}

// stakedToday sums today's stake debits for an account, in UTC days.
func (s *WagerService) stakedToday(ctx context.Context, accountID uuid.UUID) (int64, error) {
	entries, err := s.entries.ListByAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	var total int64
	for _, e := range entries {
		if e.Type == domain.EntryStake && !e.CreatedAt.UTC().Before(dayStart) {
			total += -e.Amount
		}
	}
	return total, nil
}

// GetWager returns one wager with its legs.
func (s *WagerService) GetWager(ctx context.Context, id uuid.UUID) (*domain.Wager, error) {
	w, err := s.wagers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound("wager", id.String())
	}
	return w, nil
}

// PlacePredictionInput holds a prediction request. A nil winner predicts
// a draw.
type PlacePredictionInput struct {
	AccountID  uuid.UUID  `json:"account_id"`
	MatchID    uuid.UUID  `json:"match_id"`
	WinnerID   *uuid.UUID `json:"winner_id,omitempty"`
	Confidence int        `json:"confidence"`
}

// PlacePrediction records a winner call for an upcoming match. Predictions
// are free; they cost no stake and award points on correct calls.
func (s *WagerService) PlacePrediction(ctx context.Context, input PlacePredictionInput) (*domain.Prediction, error) {
	if input.Confidence < 1 || input.Confidence > 100 {
		return nil, domain.ErrValidation("confidence must be between 1 and 100")
	}

	account, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, domain.ErrInternal("load account", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", input.AccountID.String())
	}

	m, err := s.matches.FindByID(ctx, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", input.MatchID.String())
	}
	if m.Status != domain.MatchScheduled {
		return nil, domain.ErrPrecondition(fmt.Sprintf("predictions close once a match is %s", m.Status))
	}
	if input.WinnerID != nil && *input.WinnerID != m.HomeTeamID && *input.WinnerID != m.AwayTeamID {
		return nil, domain.ErrValidation("predicted winner is not playing in this match")
	}

	p := &domain.Prediction{
		ID:         uuid.New(),
		AccountID:  input.AccountID,
		MatchID:    input.MatchID,
		WinnerID:   input.WinnerID,
		Confidence: input.Confidence,
		Status:     domain.PredictionPending,
		CreatedAt:  time.Now(),
	}
	if err := s.predictions.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("prediction placed", "prediction_id", p.ID, "match_id", input.MatchID, "confidence", input.Confidence)
	return p, nil
}
