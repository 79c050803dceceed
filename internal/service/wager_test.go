package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/ledger"
	"github.com/pitchside/league/internal/policy"
	"github.com/pitchside/league/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wagerFixture struct {
	svc     *WagerService
	store   *repository.MemoryStore
	account uuid.UUID
	match   *domain.Match
	home    uuid.UUID
	away    uuid.UUID
}

func newWagerFixture(t *testing.T) *wagerFixture {
	// Zero-valued policy disables stake limits; the limit tests build
	// their own service.
	return newWagerFixtureWithPolicy(t, policy.StakePolicy{})
}

func newWagerFixtureWithPolicy(t *testing.T, limits policy.StakePolicy) *wagerFixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := ledger.NewEngine(store.Accounts(), store.Entries(), store.Outbox())
	svc := NewWagerService(store.Accounts(), store.Matches(), store.Wagers(),
		store.Predictions(), store.Entries(), engine, store.Outbox(), limits, logger)

	account := &domain.Account{ID: uuid.New(), Name: "punter", Balance: 10_000}
	require.NoError(t, store.Accounts().Create(ctx, account))

	home, away := uuid.New(), uuid.New()
	match := &domain.Match{
		ID:          uuid.New(),
		SeasonID:    uuid.New(),
		HomeTeamID:  home,
		AwayTeamID:  away,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Status:      domain.MatchScheduled,
	}
	require.NoError(t, store.Matches().Create(ctx, match))

	return &wagerFixture{svc: svc, store: store, account: account.ID, match: match, home: home, away: away}
}

func TestPlaceWager_DebitsStake(t *testing.T) {
	f := newWagerFixture(t)
	ctx := context.Background()

	w, err := f.svc.PlaceWager(ctx, PlaceWagerInput{
		AccountID: f.account,
		Stake:     1_500,
		Odds:      2.2,
		Legs: []PlaceWagerLegInput{{
			MatchID:   f.match.ID,
			Condition: domain.LegCondition{Kind: domain.LegWinner, TeamID: &f.home},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WagerActive, w.Status)
	require.Len(t, w.Legs, 1)
	assert.Equal(t, domain.LegPending, w.Legs[0].Result)

	account, err := f.store.Accounts().FindByID(ctx, f.account)
	require.NoError(t, err)
	assert.Equal(t, int64(8_500), account.Balance)

	entries, err := f.store.Entries().ListByAccount(ctx, f.account)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryStake, entries[0].Type)
}

func TestPlaceWager_InsufficientBalance(t *testing.T) {
	f := newWagerFixture(t)

	_, err := f.svc.PlaceWager(context.Background(), PlaceWagerInput{
		AccountID: f.account,
		Stake:     50_000,
		Odds:      2.0,
		Legs: []PlaceWagerLegInput{{
			MatchID:   f.match.ID,
			Condition: domain.LegCondition{Kind: domain.LegWinner, TeamID: &f.home},
		}},
	})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INSUFFICIENT_BALANCE", appErr.Code)

	account, err := f.store.Accounts().FindByID(context.Background(), f.account)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), account.Balance)
}

func TestPlaceWager_RejectsMalformedLeg(t *testing.T) {
	f := newWagerFixture(t)

	_, err := f.svc.PlaceWager(context.Background(), PlaceWagerInput{
		AccountID: f.account,
		Stake:     1_000,
		Odds:      3.0,
		Legs: []PlaceWagerLegInput{{
			MatchID:   f.match.ID,
			Condition: domain.LegCondition{Kind: domain.LegSnitch}, // missing team
		}},
	})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestPlaceWager_RejectsFinishedMatch(t *testing.T) {
	f := newWagerFixture(t)
	ctx := context.Background()
	f.match.Status = domain.MatchFinished
	require.NoError(t, f.store.Matches().Update(ctx, f.match))

	_, err := f.svc.PlaceWager(ctx, PlaceWagerInput{
		AccountID: f.account,
		Stake:     1_000,
		Odds:      2.0,
		Legs: []PlaceWagerLegInput{{
			MatchID:   f.match.ID,
			Condition: domain.LegCondition{Kind: domain.LegWinner, TeamID: &f.home},
		}},
	})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestPlaceWager_SingleStakeLimit(t *testing.T) {
	f := newWagerFixtureWithPolicy(t, policy.StakePolicy{SingleWagerMax: 2_000})

	_, err := f.svc.PlaceWager(context.Background(), PlaceWagerInput{
		AccountID: f.account,
		Stake:     2_500,
		Odds:      2.0,
		Legs: []PlaceWagerLegInput{{
			MatchID:   f.match.ID,
			Condition: domain.LegCondition{Kind: domain.LegWinner, TeamID: &f.home},
		}},
	})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
	assert.Contains(t, appErr.Message, "single_wager")
}

func TestPlaceWager_DailyStakeLimit(t *testing.T) {
	f := newWagerFixtureWithPolicy(t, policy.StakePolicy{DailyStakeMax: 3_000})
	ctx := context.Background()

	place := func(stake int64) error {
		_, err := f.svc.PlaceWager(ctx, PlaceWagerInput{
			AccountID: f.account,
			Stake:     stake,
			Odds:      2.0,
			Legs: []PlaceWagerLegInput{{
				MatchID:   f.match.ID,
				Condition: domain.LegCondition{Kind: domain.LegWinner, TeamID: &f.home},
			}},
		})
		return err
	}

	require.NoError(t, place(2_000))
	err := place(1_500)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
	assert.Contains(t, appErr.Message, "daily_stake")
}

func TestPlacePrediction_Succeeds(t *testing.T) {
	f := newWagerFixture(t)

	p, err := f.svc.PlacePrediction(context.Background(), PlacePredictionInput{
		AccountID:  f.account,
		MatchID:    f.match.ID,
		WinnerID:   &f.away,
		Confidence: 70,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PredictionPending, p.Status)
	assert.Equal(t, 70, p.Confidence)
}

func TestPlacePrediction_RejectsOutsider(t *testing.T) {
	f := newWagerFixture(t)
	outsider := uuid.New()

	_, err := f.svc.PlacePrediction(context.Background(), PlacePredictionInput{
		AccountID:  f.account,
		MatchID:    f.match.ID,
		WinnerID:   &outsider,
		Confidence: 50,
	})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestPlacePrediction_ClosesOnLiveMatch(t *testing.T) {
	f := newWagerFixture(t)
	ctx := context.Background()
	f.match.Status = domain.MatchLive
	require.NoError(t, f.store.Matches().Update(ctx, f.match))

	_, err := f.svc.PlacePrediction(ctx, PlacePredictionInput{
		AccountID:  f.account,
		MatchID:    f.match.ID,
		Confidence: 50,
	})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}
