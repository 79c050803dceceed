package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/league/internal/domain"
)

// PostgresStore exposes pgx-backed implementations of every repository
// interface, mirroring the MemoryStore accessors so the two are
// interchangeable at wiring time.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Teams() TeamRepository             { return &pgTeams{s.pool} }
func (s *PostgresStore) Seasons() SeasonRepository         { return &pgSeasons{s.pool} }
func (s *PostgresStore) Matches() MatchRepository          { return &pgMatches{s.pool} }
func (s *PostgresStore) Wagers() WagerRepository           { return &pgWagers{s.pool} }
func (s *PostgresStore) Predictions() PredictionRepository { return &pgPredictions{s.pool} }
func (s *PostgresStore) Accounts() AccountRepository       { return &pgAccounts{s.pool} }
func (s *PostgresStore) Entries() EntryRepository          { return &pgEntries{s.pool} }
func (s *PostgresStore) Outbox() OutboxRepository          { return &pgOutbox{s.pool} }

// --- TeamRepository ---

type pgTeams struct{ pool *pgxpool.Pool }

const teamColumns = `id, name, attack, defense, seeker_skill, chaser_skill, keeper_skill, beater_skill, created_at`

func (r *pgTeams) FindByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

func (r *pgTeams) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Attack, &t.Defense, &t.SeekerSkill,
			&t.ChaserSkill, &t.KeeperSkill, &t.BeaterSkill, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *pgTeams) Create(ctx context.Context, team *domain.Team) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO teams (id, name, attack, defense, seeker_skill, chaser_skill, keeper_skill, beater_skill)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		team.ID, team.Name, team.Attack, team.Defense,
		team.SeekerSkill, team.ChaserSkill, team.KeeperSkill, team.BeaterSkill)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.Attack, &t.Defense, &t.SeekerSkill,
		&t.ChaserSkill, &t.KeeperSkill, &t.BeaterSkill, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan team: %w", err)
	}
	return &t, nil
}

// --- SeasonRepository ---

type pgSeasons struct{ pool *pgxpool.Pool }

const seasonColumns = `id, name, start_date, end_date, team_ids, current_round, status, created_at`

func (r *pgSeasons) FindByID(ctx context.Context, id uuid.UUID) (*domain.Season, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE id = $1`, id)
	return scanSeason(row)
}

func (r *pgSeasons) FindActive(ctx context.Context) (*domain.Season, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+seasonColumns+` FROM seasons
		WHERE status = $1
		ORDER BY start_date DESC
		LIMIT 1`, string(domain.SeasonActive))
	return scanSeason(row)
}

func (r *pgSeasons) Create(ctx context.Context, season *domain.Season) error {
	teamIDs, err := json.Marshal(season.TeamIDs)
	if err != nil {
		return fmt.Errorf("marshal team ids: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO seasons (id, name, start_date, end_date, team_ids, current_round, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		season.ID, season.Name, season.StartDate, season.EndDate,
		teamIDs, season.CurrentRound, string(season.Status))
	if err != nil {
		return fmt.Errorf("insert season: %w", err)
	}
	return nil
}

func (r *pgSeasons) Update(ctx context.Context, season *domain.Season) error {
	teamIDs, err := json.Marshal(season.TeamIDs)
	if err != nil {
		return fmt.Errorf("marshal team ids: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE seasons
		SET name = $2, start_date = $3, end_date = $4, team_ids = $5, current_round = $6, status = $7
		WHERE id = $1`,
		season.ID, season.Name, season.StartDate, season.EndDate,
		teamIDs, season.CurrentRound, string(season.Status))
	if err != nil {
		return fmt.Errorf("update season: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("season", season.ID.String())
	}
	return nil
}

func scanSeason(row pgx.Row) (*domain.Season, error) {
	var se domain.Season
	var teamIDs []byte
	err := row.Scan(&se.ID, &se.Name, &se.StartDate, &se.EndDate,
		&teamIDs, &se.CurrentRound, &se.Status, &se.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan season: %w", err)
	}
	if err := json.Unmarshal(teamIDs, &se.TeamIDs); err != nil {
		return nil, fmt.Errorf("unmarshal team ids: %w", err)
	}
	return &se, nil
}
