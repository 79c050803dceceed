package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// Repositories are the injected persistence boundary of the core: the
// scheduler, simulator, clock and settlement engine never touch storage
// directly. Find methods return (nil, nil) when no record exists.

// Store aggregates the per-entity repositories behind one accessor
// surface. MemoryStore and PostgresStore both satisfy it.
type Store interface {
	Teams() TeamRepository
	Seasons() SeasonRepository
	Matches() MatchRepository
	Wagers() WagerRepository
	Predictions() PredictionRepository
	Accounts() AccountRepository
	Entries() EntryRepository
	Outbox() OutboxRepository
}

// TeamRepository provides access to teams.
type TeamRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Create(ctx context.Context, team *domain.Team) error
}

// SeasonRepository provides access to seasons.
type SeasonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Season, error)

	// FindActive returns the season currently marked active, if any.
	FindActive(ctx context.Context) (*domain.Season, error)

	Create(ctx context.Context, season *domain.Season) error
	Update(ctx context.Context, season *domain.Season) error
}

// MatchRepository provides access to fixtures and results.
type MatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	ListBySeason(ctx context.Context, seasonID uuid.UUID) ([]domain.Match, error)

	// ListDueBetween returns scheduled matches of the season whose date
	// falls within (from, to], ordered by scheduled date.
	ListDueBetween(ctx context.Context, seasonID uuid.UUID, from, to time.Time) ([]domain.Match, error)

	Create(ctx context.Context, match *domain.Match) error
	Update(ctx context.Context, match *domain.Match) error
}

// WagerRepository provides access to wagers and their legs.
type WagerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Wager, error)

	// ListOpenByMatch returns unsettled wagers with at least one leg
	// referencing the match.
	ListOpenByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Wager, error)

	// ListOpenMultiLeg returns all unsettled wagers spanning more than
	// one match, for the periodic combined-resolution rescan.
	ListOpenMultiLeg(ctx context.Context) ([]domain.Wager, error)

	Create(ctx context.Context, wager *domain.Wager) error
	Update(ctx context.Context, wager *domain.Wager) error
}

// PredictionRepository provides access to predictions.
type PredictionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error)
	ListPendingByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Prediction, error)
	Create(ctx context.Context, prediction *domain.Prediction) error
	Update(ctx context.Context, prediction *domain.Prediction) error
}

// AccountRepository provides access to wagering accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	Save(ctx context.Context, account *domain.Account) error
}

// EntryRepository provides access to the append-only ledger.
type EntryRepository interface {
	Insert(ctx context.Context, entry *domain.Entry) error

	// FindByReference checks the idempotency index for a prior posting
	// with the same reference.
	FindByReference(ctx context.Context, accountID uuid.UUID, reference string) (*domain.Entry, error)

	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error)
}

// OutboxRow is a stored outbox event with its relay sequence id.
type OutboxRow struct {
	SeqID int64
	domain.OutboxDraft
}

// OutboxRepository provides access to the event outbox.
type OutboxRepository interface {
	Insert(ctx context.Context, draft domain.OutboxDraft) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error)
	MarkPublished(ctx context.Context, ids []int64) error
}
