package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/league/internal/domain"
)

type pgMatches struct{ pool *pgxpool.Pool }

const matchColumns = `id, season_id, home_team_id, away_team_id, round, venue, scheduled_at, status,
	home_score, away_score, events, snitch_caught, snitch_caught_by, duration, finished_at, created_at`

func (r *pgMatches) FindByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *pgMatches) ListBySeason(ctx context.Context, seasonID uuid.UUID) ([]domain.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE season_id = $1
		ORDER BY scheduled_at ASC, id ASC`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("query season matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *pgMatches) ListDueBetween(ctx context.Context, seasonID uuid.UUID, from, to time.Time) ([]domain.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE season_id = $1 AND status = $2
		  AND scheduled_at > $3 AND scheduled_at <= $4
		ORDER BY scheduled_at ASC, id ASC`,
		seasonID, string(domain.MatchScheduled), from, to)
	if err != nil {
		return nil, fmt.Errorf("query due matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *pgMatches) Create(ctx context.Context, match *domain.Match) error {
	events, err := marshalEvents(match.Events)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO matches
		  (id, season_id, home_team_id, away_team_id, round, venue, scheduled_at, status,
		   home_score, away_score, events, snitch_caught, snitch_caught_by, duration, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		match.ID, match.SeasonID, match.HomeTeamID, match.AwayTeamID,
		match.Round, match.Venue, match.ScheduledAt, string(match.Status),
		match.HomeScore, match.AwayScore, events,
		match.SnitchCaught, match.SnitchCaughtBy, match.Duration, match.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *pgMatches) Update(ctx context.Context, match *domain.Match) error {
	events, err := marshalEvents(match.Events)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE matches
		SET round = $2, venue = $3, scheduled_at = $4, status = $5,
		    home_score = $6, away_score = $7, events = $8,
		    snitch_caught = $9, snitch_caught_by = $10, duration = $11, finished_at = $12
		WHERE id = $1`,
		match.ID, match.Round, match.Venue, match.ScheduledAt, string(match.Status),
		match.HomeScore, match.AwayScore, events,
		match.SnitchCaught, match.SnitchCaughtBy, match.Duration, match.FinishedAt)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("match", match.ID.String())
	}
	return nil
}

func marshalEvents(events []domain.GameEvent) ([]byte, error) {
	if events == nil {
		return []byte(`[]`), nil
	}
	data, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}
	return data, nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	var events []byte
	err := row.Scan(&m.ID, &m.SeasonID, &m.HomeTeamID, &m.AwayTeamID,
		&m.Round, &m.Venue, &m.ScheduledAt, &m.Status,
		&m.HomeScore, &m.AwayScore, &events,
		&m.SnitchCaught, &m.SnitchCaughtBy, &m.Duration, &m.FinishedAt, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	if err := json.Unmarshal(events, &m.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	return &m, nil
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		var events []byte
		err := rows.Scan(&m.ID, &m.SeasonID, &m.HomeTeamID, &m.AwayTeamID,
			&m.Round, &m.Venue, &m.ScheduledAt, &m.Status,
			&m.HomeScore, &m.AwayScore, &events,
			&m.SnitchCaught, &m.SnitchCaughtBy, &m.Duration, &m.FinishedAt, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		if err := json.Unmarshal(events, &m.Events); err != nil {
			return nil, fmt.Errorf("unmarshal events: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
