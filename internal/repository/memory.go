package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// MemoryStore is a mutex-guarded in-memory implementation of every
// repository interface, exposed as per-interface views. It backs the
// core's tests and a self-contained server; the postgres implementations
// are drop-in replacements.
type MemoryStore struct {
	mu          sync.RWMutex
	teams       map[uuid.UUID]domain.Team
	seasons     map[uuid.UUID]domain.Season
	matches     map[uuid.UUID]domain.Match
	wagers      map[uuid.UUID]domain.Wager
	predictions map[uuid.UUID]domain.Prediction
	accounts    map[uuid.UUID]domain.Account
	entries     []domain.Entry
	outbox      []OutboxRow
	published   map[int64]bool
	outboxSeq   int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:       make(map[uuid.UUID]domain.Team),
		seasons:     make(map[uuid.UUID]domain.Season),
		matches:     make(map[uuid.UUID]domain.Match),
		wagers:      make(map[uuid.UUID]domain.Wager),
		predictions: make(map[uuid.UUID]domain.Prediction),
		accounts:    make(map[uuid.UUID]domain.Account),
		published:   make(map[int64]bool),
	}
}

func (s *MemoryStore) Teams() TeamRepository             { return &memoryTeams{s} }
func (s *MemoryStore) Seasons() SeasonRepository         { return &memorySeasons{s} }
func (s *MemoryStore) Matches() MatchRepository          { return &memoryMatches{s} }
func (s *MemoryStore) Wagers() WagerRepository           { return &memoryWagers{s} }
func (s *MemoryStore) Predictions() PredictionRepository { return &memoryPredictions{s} }
func (s *MemoryStore) Accounts() AccountRepository       { return &memoryAccounts{s} }
func (s *MemoryStore) Entries() EntryRepository          { return &memoryEntries{s} }
func (s *MemoryStore) Outbox() OutboxRepository          { return &memoryOutbox{s} }

// --- TeamRepository ---

type memoryTeams struct{ s *MemoryStore }

func (r *memoryTeams) FindByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if t, ok := r.s.teams[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r *memoryTeams) List(ctx context.Context) ([]domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Team, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryTeams) Create(ctx context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[team.ID]; ok {
		return domain.ErrConflict("team already exists")
	}
	r.s.teams[team.ID] = *team
	return nil
}

// --- SeasonRepository ---

type memorySeasons struct{ s *MemoryStore }

func (r *memorySeasons) FindByID(ctx context.Context, id uuid.UUID) (*domain.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if se, ok := r.s.seasons[id]; ok {
		cp := copySeason(se)
		return &cp, nil
	}
	return nil, nil
}

func (r *memorySeasons) FindActive(ctx context.Context) (*domain.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, se := range r.s.seasons {
		if se.Status == domain.SeasonActive {
			cp := copySeason(se)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memorySeasons) Create(ctx context.Context, season *domain.Season) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.seasons[season.ID]; ok {
		return domain.ErrConflict("season already exists")
	}
	r.s.seasons[season.ID] = copySeason(*season)
	return nil
}

func (r *memorySeasons) Update(ctx context.Context, season *domain.Season) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.seasons[season.ID]; !ok {
		return domain.ErrNotFound("season", season.ID.String())
	}
	r.s.seasons[season.ID] = copySeason(*season)
	return nil
}

// --- MatchRepository ---

type memoryMatches struct{ s *MemoryStore }

func (r *memoryMatches) FindByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if m, ok := r.s.matches[id]; ok {
		cp := copyMatch(m)
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryMatches) ListBySeason(ctx context.Context, seasonID uuid.UUID) ([]domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Match
	for _, m := range r.s.matches {
		if m.SeasonID == seasonID {
			out = append(out, copyMatch(m))
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *memoryMatches) ListDueBetween(ctx context.Context, seasonID uuid.UUID, from, to time.Time) ([]domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Match
	for _, m := range r.s.matches {
		if m.SeasonID != seasonID || m.Status != domain.MatchScheduled {
			continue
		}
		if m.ScheduledAt.After(from) && !m.ScheduledAt.After(to) {
			out = append(out, copyMatch(m))
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *memoryMatches) Create(ctx context.Context, match *domain.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[match.ID]; ok {
		return domain.ErrConflict("match already exists")
	}
	r.s.matches[match.ID] = copyMatch(*match)
	return nil
}

func (r *memoryMatches) Update(ctx context.Context, match *domain.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[match.ID]; !ok {
		return domain.ErrNotFound("match", match.ID.String())
	}
	r.s.matches[match.ID] = copyMatch(*match)
	return nil
}

// --- WagerRepository ---

type memoryWagers struct{ s *MemoryStore }

func (r *memoryWagers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Wager, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if w, ok := r.s.wagers[id]; ok {
		cp := copyWager(w)
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryWagers) ListOpenByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Wager, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Wager
	for _, w := range r.s.wagers {
		if w.Status.Settled() {
			continue
		}
		for _, leg := range w.Legs {
			if leg.MatchID == matchID {
				out = append(out, copyWager(w))
				break
			}
		}
	}
	sortWagers(out)
	return out, nil
}

func (r *memoryWagers) ListOpenMultiLeg(ctx context.Context) ([]domain.Wager, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Wager
	for _, w := range r.s.wagers {
		if !w.Status.Settled() && w.MultiLeg() {
			out = append(out, copyWager(w))
		}
	}
	sortWagers(out)
	return out, nil
}

func (r *memoryWagers) Create(ctx context.Context, wager *domain.Wager) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wagers[wager.ID]; ok {
		return domain.ErrConflict("wager already exists")
	}
	r.s.wagers[wager.ID] = copyWager(*wager)
	return nil
}

func (r *memoryWagers) Update(ctx context.Context, wager *domain.Wager) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wagers[wager.ID]; !ok {
		return domain.ErrNotFound("wager", wager.ID.String())
	}
	r.s.wagers[wager.ID] = copyWager(*wager)
	return nil
}

// --- PredictionRepository ---

type memoryPredictions struct{ s *MemoryStore }

func (r *memoryPredictions) FindByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.predictions[id]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryPredictions) ListPendingByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Prediction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Prediction
	for _, p := range r.s.predictions {
		if p.MatchID == matchID && p.Status == domain.PredictionPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *memoryPredictions) Create(ctx context.Context, prediction *domain.Prediction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.predictions[prediction.ID]; ok {
		return domain.ErrConflict("prediction already exists")
	}
	r.s.predictions[prediction.ID] = *prediction
	return nil
}

func (r *memoryPredictions) Update(ctx context.Context, prediction *domain.Prediction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.predictions[prediction.ID]; !ok {
		return domain.ErrNotFound("prediction", prediction.ID.String())
	}
	r.s.predictions[prediction.ID] = *prediction
	return nil
}

// --- AccountRepository ---

type memoryAccounts struct{ s *MemoryStore }

func (r *memoryAccounts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.accounts[id]; ok {
		cp := a
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryAccounts) Create(ctx context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[account.ID]; ok {
		return domain.ErrConflict("account already exists")
	}
	r.s.accounts[account.ID] = *account
	return nil
}

func (r *memoryAccounts) Save(ctx context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.accounts[account.ID] = *account
	return nil
}

// --- EntryRepository ---

type memoryEntries struct{ s *MemoryStore }

func (r *memoryEntries) Insert(ctx context.Context, entry *domain.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.entries = append(r.s.entries, *entry)
	return nil
}

func (r *memoryEntries) FindByReference(ctx context.Context, accountID uuid.UUID, reference string) (*domain.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.entries {
		e := r.s.entries[i]
		if e.AccountID == accountID && e.Reference == reference {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *memoryEntries) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Entry
	for _, e := range r.s.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- OutboxRepository ---

type memoryOutbox struct{ s *MemoryStore }

func (r *memoryOutbox) Insert(ctx context.Context, draft domain.OutboxDraft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outboxSeq++
	r.s.outbox = append(r.s.outbox, OutboxRow{SeqID: r.s.outboxSeq, OutboxDraft: draft})
	return nil
}

func (r *memoryOutbox) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []OutboxRow
	for _, row := range r.s.outbox {
		if r.s.published[row.SeqID] {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryOutbox) MarkPublished(ctx context.Context, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		r.s.published[id] = true
	}
	return nil
}

// --- helpers ---

func copySeason(se domain.Season) domain.Season {
	cp := se
	cp.TeamIDs = append([]uuid.UUID{}, se.TeamIDs...)
	return cp
}

func copyMatch(m domain.Match) domain.Match {
	cp := m
	cp.Events = append([]domain.GameEvent{}, m.Events...)
	if m.SnitchCaughtBy != nil {
		id := *m.SnitchCaughtBy
		cp.SnitchCaughtBy = &id
	}
	return cp
}

func copyWager(w domain.Wager) domain.Wager {
	cp := w
	cp.Legs = append([]domain.WagerLeg{}, w.Legs...)
	return cp
}

func sortMatches(out []domain.Match) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
}

func sortWagers(out []domain.Wager) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.Before(out[j].PlacedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
}
