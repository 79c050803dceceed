package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/projection"
	"github.com/pitchside/league/internal/repository"
	"github.com/pitchside/league/internal/schedule"
	"github.com/pitchside/league/internal/standings"
)

// SeasonService creates seasons with their full fixture calendar and
// serves computed standings.
type SeasonService struct {
	teams   repository.TeamRepository
	seasons repository.SeasonRepository
	matches repository.MatchRepository
	outbox  repository.OutboxRepository
	cache   projection.Store
	logger  *slog.Logger
}

// NewSeasonService creates a SeasonService. The cache holds short-lived
// standings snapshots between clock advances.
func NewSeasonService(
	teams repository.TeamRepository,
	seasons repository.SeasonRepository,
	matches repository.MatchRepository,
	outbox repository.OutboxRepository,
	cache projection.Store,
	logger *slog.Logger,
) *SeasonService {
	return &SeasonService{teams: teams, seasons: seasons, matches: matches, outbox: outbox, cache: cache, logger: logger}
}

// CreateSeasonInput holds the season creation request.
type CreateSeasonInput struct {
	Name      string              `json:"name"`
	StartDate time.Time           `json:"start_date"`
	TeamIDs   []uuid.UUID         `json:"team_ids"`
	Weekdays  []time.Weekday      `json:"weekdays"`
	Slots     []schedule.TimeSlot `json:"slots"`
	Venues    []string            `json:"venues"`
}

// CreateSeason validates the team set, generates the double round-robin
// calendar, verifies it and persists the season with all fixtures.
func (s *SeasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (*domain.Season, []domain.Match, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, nil, domain.ErrValidation("season name is required")
	}
	if len(input.TeamIDs) < 2 {
		return nil, nil, domain.ErrPrecondition("a season requires at least 2 teams")
	}
	if input.StartDate.IsZero() {
		return nil, nil, domain.ErrValidation("season start date is required")
	}
	if len(input.Weekdays) == 0 {
		input.Weekdays = []time.Weekday{time.Saturday, time.Sunday}
	}
	if len(input.Slots) == 0 {
		input.Slots = []schedule.TimeSlot{{Hour: 13}, {Hour: 16}, {Hour: 19}}
	}

	teams := make([]domain.Team, 0, len(input.TeamIDs))
	seen := make(map[uuid.UUID]struct{}, len(input.TeamIDs))
	for _, id := range input.TeamIDs {
		if _, dup := seen[id]; dup {
			return nil, nil, domain.ErrValidation(fmt.Sprintf("team %s listed twice", id))
		}
		seen[id] = struct{}{}
		team, err := s.teams.FindByID(ctx, id)
		if err != nil {
			return nil, nil, domain.ErrInternal("load team", err)
		}
		if team == nil {
			return nil, nil, domain.ErrNotFound("team", id.String())
		}
		teams = append(teams, *team)
	}

	season := &domain.Season{
		ID:        uuid.New(),
		Name:      input.Name,
		StartDate: input.StartDate,
		TeamIDs:   input.TeamIDs,
		Status:    domain.SeasonActive,
		CreatedAt: time.Now(),
	}

	fixtures, err := schedule.Generate(teams, schedule.Config{
		SeasonID: season.ID,
		Start:    input.StartDate,
		Weekdays: input.Weekdays,
		Slots:    input.Slots,
		Venues:   input.Venues,
	})
	if err != nil {
		return nil, nil, err
	}

	report := schedule.Validate(teams, fixtures)
	if !report.Valid() {
		return nil, nil, domain.ErrInternal(
			fmt.Sprintf("generated calendar failed verification: %s", strings.Join(report.Violations, "; ")), nil)
	}

	season.EndDate = fixtures[len(fixtures)-1].ScheduledAt.AddDate(0, 0, 7)

	if err := s.seasons.Create(ctx, season); err != nil {
		return nil, nil, err
	}
	for i := range fixtures {
		if err := s.matches.Create(ctx, &fixtures[i]); err != nil {
			return nil, nil, err
		}
	}
	if err := s.outbox.Insert(ctx, domain.NewSeasonCreatedEvent(season, len(fixtures))); err != nil {
		s.logger.Error("outbox write failed", "season_id", season.ID, "error", err)
	}

	s.logger.Info("season created", "season_id", season.ID, "teams", len(teams), "fixtures", len(fixtures))
	return season, fixtures, nil
}

// GetSeason returns one season.
func (s *SeasonService) GetSeason(ctx context.Context, id uuid.UUID) (*domain.Season, error) {
	season, err := s.seasons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, domain.ErrNotFound("season", id.String())
	}
	return season, nil
}

// ListFixtures returns the season's matches in schedule order.
func (s *SeasonService) ListFixtures(ctx context.Context, seasonID uuid.UUID) ([]domain.Match, error) {
	if _, err := s.GetSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	return s.matches.ListBySeason(ctx, seasonID)
}

// Standings computes the current table for a season. Snapshots are served
// from the projection cache while fresh; the cache never replaces the
// recompute-from-matches source of truth.
func (s *SeasonService) Standings(ctx context.Context, seasonID uuid.UUID) ([]domain.Standing, error) {
	if s.cache != nil {
		if snap, err := projection.LookupStandings(ctx, s.cache, seasonID); err == nil {
			return snap.Table, nil
		}
	}

	season, err := s.GetSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	teams := make([]domain.Team, 0, len(season.TeamIDs))
	for _, id := range season.TeamIDs {
		team, err := s.teams.FindByID(ctx, id)
		if err != nil {
			return nil, domain.ErrInternal("load team", err)
		}
		if team == nil {
			s.logger.Warn("season references missing team", "season_id", seasonID, "team_id", id)
			continue
		}
		teams = append(teams, *team)
	}

	matches, err := s.matches.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	table := standings.Compute(teams, matches)
	if violations := standings.SelfCheck(table); len(violations) > 0 {
		return nil, domain.ErrInternal(
			fmt.Sprintf("standings failed self-check: %s", strings.Join(violations, "; ")), nil)
	}
	if s.cache != nil {
		if err := projection.CacheStandings(ctx, s.cache, seasonID, table); err != nil {
			s.logger.Warn("standings cache write failed", "season_id", seasonID, "error", err)
		}
	}
	return table, nil
}

// InvalidateStandings drops the cached table after results change.
func (s *SeasonService) InvalidateStandings(ctx context.Context, seasonID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := projection.InvalidateStandings(ctx, s.cache, seasonID); err != nil {
		s.logger.Warn("standings cache invalidation failed", "season_id", seasonID, "error", err)
	}
}

// SnitchLeaders returns teams ranked by snitch catches.
func (s *SeasonService) SnitchLeaders(ctx context.Context, seasonID uuid.UUID) ([]domain.Standing, error) {
	table, err := s.Standings(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	return standings.SnitchLeaders(table, 10), nil
}
