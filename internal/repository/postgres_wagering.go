package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/league/internal/domain"
)

type pgWagers struct{ pool *pgxpool.Pool }

const wagerColumns = `id, account_id, stake, odds, status, fail_reason, placed_at, settled_at`

func (r *pgWagers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Wager, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1`, id)
	w, err := scanWager(row)
	if err != nil || w == nil {
		return w, err
	}
	if err := r.loadLegs(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *pgWagers) ListOpenByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Wager, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT w.id, w.account_id, w.stake, w.odds, w.status, w.fail_reason, w.placed_at, w.settled_at
		FROM wagers w
		JOIN wager_legs l ON l.wager_id = w.id
		WHERE l.match_id = $1 AND w.status NOT IN ('won', 'lost', 'void')
		ORDER BY w.placed_at ASC, w.id ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query open wagers: %w", err)
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

func (r *pgWagers) ListOpenMultiLeg(ctx context.Context) ([]domain.Wager, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+wagerColumns+` FROM wagers w
		WHERE w.status NOT IN ('won', 'lost', 'void')
		  AND (SELECT count(*) FROM wager_legs l WHERE l.wager_id = w.id) > 1
		ORDER BY w.placed_at ASC, w.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query open multi-leg wagers: %w", err)
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

func (r *pgWagers) Create(ctx context.Context, wager *domain.Wager) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO wagers (id, account_id, stake, odds, status, fail_reason, placed_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		wager.ID, wager.AccountID, int64ToNumeric(wager.Stake), wager.Odds,
		string(wager.Status), wager.FailReason, wager.PlacedAt, wager.SettledAt)
	if err != nil {
		return fmt.Errorf("insert wager: %w", err)
	}
	for i := range wager.Legs {
		if err := insertLeg(ctx, tx, &wager.Legs[i]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *pgWagers) Update(ctx context.Context, wager *domain.Wager) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE wagers
		SET status = $2, fail_reason = $3, settled_at = $4
		WHERE id = $1`,
		wager.ID, string(wager.Status), wager.FailReason, wager.SettledAt)
	if err != nil {
		return fmt.Errorf("update wager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("wager", wager.ID.String())
	}
	for i := range wager.Legs {
		leg := &wager.Legs[i]
		_, err := tx.Exec(ctx, `
			UPDATE wager_legs SET result = $2, reason = $3 WHERE id = $1`,
			leg.ID, string(leg.Result), leg.Reason)
		if err != nil {
			return fmt.Errorf("update wager leg: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func insertLeg(ctx context.Context, tx pgx.Tx, leg *domain.WagerLeg) error {
	cond, err := json.Marshal(leg.Condition)
	if err != nil {
		return fmt.Errorf("marshal leg condition: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO wager_legs (id, wager_id, match_id, condition, result, reason)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		leg.ID, leg.WagerID, leg.MatchID, cond, string(leg.Result), leg.Reason)
	if err != nil {
		return fmt.Errorf("insert wager leg: %w", err)
	}
	return nil
}

func (r *pgWagers) collect(ctx context.Context, rows pgx.Rows) ([]domain.Wager, error) {
	var wagers []domain.Wager
	for rows.Next() {
		w, err := scanWagerValues(rows)
		if err != nil {
			return nil, err
		}
		wagers = append(wagers, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range wagers {
		if err := r.loadLegs(ctx, &wagers[i]); err != nil {
			return nil, err
		}
	}
	return wagers, nil
}

func (r *pgWagers) loadLegs(ctx context.Context, w *domain.Wager) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, wager_id, match_id, condition, result, reason
		FROM wager_legs
		WHERE wager_id = $1
		ORDER BY id ASC`, w.ID)
	if err != nil {
		return fmt.Errorf("query wager legs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var leg domain.WagerLeg
		var cond []byte
		if err := rows.Scan(&leg.ID, &leg.WagerID, &leg.MatchID, &cond, &leg.Result, &leg.Reason); err != nil {
			return fmt.Errorf("scan wager leg: %w", err)
		}
		if err := json.Unmarshal(cond, &leg.Condition); err != nil {
			return fmt.Errorf("unmarshal leg condition: %w", err)
		}
		w.Legs = append(w.Legs, leg)
	}
	return rows.Err()
}

func scanWager(row pgx.Row) (*domain.Wager, error) {
	w, err := scanWagerValues(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func scanWagerValues(row pgx.Row) (*domain.Wager, error) {
	var w domain.Wager
	var stake pgtype.Numeric
	err := row.Scan(&w.ID, &w.AccountID, &stake, &w.Odds,
		&w.Status, &w.FailReason, &w.PlacedAt, &w.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan wager: %w", err)
	}
	w.Stake, err = numericToInt64(stake)
	if err != nil {
		return nil, fmt.Errorf("convert stake: %w", err)
	}
	return &w, nil
}

// --- PredictionRepository ---

type pgPredictions struct{ pool *pgxpool.Pool }

const predictionColumns = `id, account_id, match_id, winner_id, confidence, status, points_awarded, created_at, settled_at`

func (r *pgPredictions) FindByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+predictionColumns+` FROM predictions WHERE id = $1`, id)
	return scanPrediction(row)
}

func (r *pgPredictions) ListPendingByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Prediction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+predictionColumns+` FROM predictions
		WHERE match_id = $1 AND status = $2
		ORDER BY id ASC`, matchID, string(domain.PredictionPending))
	if err != nil {
		return nil, fmt.Errorf("query pending predictions: %w", err)
	}
	defer rows.Close()

	var predictions []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		err := rows.Scan(&p.ID, &p.AccountID, &p.MatchID, &p.WinnerID,
			&p.Confidence, &p.Status, &p.PointsAwarded, &p.CreatedAt, &p.SettledAt)
		if err != nil {
			return nil, fmt.Errorf("scan prediction row: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *pgPredictions) Create(ctx context.Context, prediction *domain.Prediction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO predictions (id, account_id, match_id, winner_id, confidence, status, points_awarded)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		prediction.ID, prediction.AccountID, prediction.MatchID, prediction.WinnerID,
		prediction.Confidence, string(prediction.Status), prediction.PointsAwarded)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *pgPredictions) Update(ctx context.Context, prediction *domain.Prediction) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE predictions
		SET status = $2, points_awarded = $3, settled_at = $4
		WHERE id = $1`,
		prediction.ID, string(prediction.Status), prediction.PointsAwarded, prediction.SettledAt)
	if err != nil {
		return fmt.Errorf("update prediction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("prediction", prediction.ID.String())
	}
	return nil
}

func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	var p domain.Prediction
	err := row.Scan(&p.ID, &p.AccountID, &p.MatchID, &p.WinnerID,
		&p.Confidence, &p.Status, &p.PointsAwarded, &p.CreatedAt, &p.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	return &p, nil
}
