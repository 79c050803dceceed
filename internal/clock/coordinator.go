package clock

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/repository"
	"github.com/pitchside/league/internal/settlement"
	"github.com/pitchside/league/internal/simulate"
)

// AdvanceOptions selects how far the virtual clock moves. Exactly one of
// By or ToNextMatch should be set.
type AdvanceOptions struct {
	By          time.Duration
	ToNextMatch bool
}

// AdvanceResult reports one clock advance.
type AdvanceResult struct {
	NewDate          time.Time                  `json:"new_date"`
	TriggeredMatches []uuid.UUID                `json:"triggered_matches"` // transitioned to live
	SimulatedMatches []uuid.UUID                `json:"simulated_matches"` // batch-simulated to completion
	Outcomes         []domain.SettlementOutcome `json:"outcomes,omitempty"`
}

// LiveState is a snapshot of one ticking match session.
type LiveState struct {
	MatchID   uuid.UUID `json:"match_id"`
	Minute    int       `json:"minute"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Active    bool      `json:"active"`
}

// Coordinator owns all season-wide mutable state: the current simulated
// date, the active season, the settled-match-id set and the live session
// map. Every operation is serialized through one mutex, so two
// concurrent advances can never double-settle a match or corrupt the
// settled set. Per-match session state needs no locking of its own; each
// session is owned by exactly one match.
type Coordinator struct {
	mu sync.Mutex

	teams      repository.TeamRepository
	seasons    repository.SeasonRepository
	matches    repository.MatchRepository
	settlement *settlement.Engine
	outbox     repository.OutboxRepository
	params     simulate.Params
	rng        *rand.Rand
	logger     *slog.Logger

	current time.Time
	season  *domain.Season
	settled map[uuid.UUID]struct{}
	live    map[uuid.UUID]*simulate.Session
}

// New creates a coordinator. The seed fixes the random source so a
// season replays identically given the same operations.
func New(
	teams repository.TeamRepository,
	seasons repository.SeasonRepository,
	matches repository.MatchRepository,
	settlementEngine *settlement.Engine,
	outbox repository.OutboxRepository,
	params simulate.Params,
	seed int64,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		teams:      teams,
		seasons:    seasons,
		matches:    matches,
		settlement: settlementEngine,
		outbox:     outbox,
		params:     params,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     logger,
		settled:    make(map[uuid.UUID]struct{}),
		live:       make(map[uuid.UUID]*simulate.Session),
	}
}

// StartSeason binds the coordinator to a season and sets the clock to
// its start date. A zero season id binds to whichever season is
// currently marked active. Resetting to another season is an explicit
// administrative action; live sessions from the previous one are
// discarded.
func (c *Coordinator) StartSeason(ctx context.Context, seasonID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var season *domain.Season
	var err error
	if seasonID == uuid.Nil {
		season, err = c.seasons.FindActive(ctx)
		if err != nil {
			return fmt.Errorf("find active season: %w", err)
		}
		if season == nil {
			return domain.ErrPrecondition("no active season to bind")
		}
	} else {
		season, err = c.seasons.FindByID(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("load season: %w", err)
		}
		if season == nil {
			return domain.ErrNotFound("season", seasonID.String())
		}
	}

	c.season = season
	c.current = season.StartDate
	c.settled = make(map[uuid.UUID]struct{})
	c.live = make(map[uuid.UUID]*simulate.Session)
	c.logger.Info("virtual clock bound to season", "season_id", season.ID, "date", c.current)
	return nil
}

// CurrentDate returns the current simulated date.
func (c *Coordinator) CurrentDate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// ActiveSeasonID returns the bound season's id, or uuid.Nil when no
// season has been started.
func (c *Coordinator) ActiveSeasonID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.season == nil {
		return uuid.Nil
	}
	return c.season.ID
}

// Advance moves the virtual clock. Before the date changes, any match
// still live is force-finalized so no live state is orphaned. Every
// scheduled match falling within (oldDate, newDate] is then either batch
// simulated to completion or, for the next due match under ToNextMatch,
// transitioned to live and left for interactive ticking.
func (c *Coordinator) Advance(ctx context.Context, opts AdvanceOptions) (*AdvanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.season == nil {
		return nil, domain.ErrPrecondition("no active season")
	}

	result := &AdvanceResult{}

	if err := c.drainLive(ctx, result); err != nil {
		return nil, err
	}

	var newDate time.Time
	var nextID uuid.UUID
	if opts.ToNextMatch {
		upcoming, err := c.matches.ListDueBetween(ctx, c.season.ID, c.current, c.season.EndDate.AddDate(1, 0, 0))
		if err != nil {
			return nil, fmt.Errorf("find next match: %w", err)
		}
		if len(upcoming) == 0 {
			return nil, domain.ErrPrecondition("no scheduled matches remain")
		}
		newDate = upcoming[0].ScheduledAt
		nextID = upcoming[0].ID
	} else {
		if opts.By <= 0 {
			return nil, domain.ErrValidation("advance amount must be positive")
		}
		newDate = c.current.Add(opts.By)
	}

	due, err := c.matches.ListDueBetween(ctx, c.season.ID, c.current, newDate)
	if err != nil {
		return nil, fmt.Errorf("list due matches: %w", err)
	}

	for i := range due {
		m := &due[i]
		if _, done := c.settled[m.ID]; done {
			continue
		}
		if opts.ToNextMatch && m.ID == nextID {
			m.Status = domain.MatchLive
			if err := c.matches.Update(ctx, m); err != nil {
				return nil, fmt.Errorf("mark match live: %w", err)
			}
			result.TriggeredMatches = append(result.TriggeredMatches, m.ID)
			continue
		}
		if err := c.simulateAndFinalize(ctx, m, result); err != nil {
			// One bad fixture must not abort the whole advance.
			c.logger.Warn("skipping fixture during batch simulation", "match_id", m.ID, "error", err)
		}
	}

	from := c.current
	c.current = newDate
	result.NewDate = newDate

	draft := domain.NewClockAdvancedEvent(c.season.ID, from, newDate, len(result.SimulatedMatches))
	if err := c.outbox.Insert(ctx, draft); err != nil {
		c.logger.Error("outbox write failed", "event_type", draft.EventType, "error", err)
	}

	combined, err := c.settlement.ResolvePendingCombined(ctx)
	if err != nil {
		c.logger.Error("combined wager rescan failed", "error", err)
	} else {
		result.Outcomes = append(result.Outcomes, combined...)
	}

	if err := c.refreshSeasonProgress(ctx); err != nil {
		c.logger.Warn("season progress update failed", "error", err)
	}

	return result, nil
}

// BeginLive starts the minute-tick session for a match already
// transitioned to live. Only one session may exist per match id.
func (c *Coordinator) BeginLive(ctx context.Context, matchID uuid.UUID) (*LiveState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.season == nil {
		return nil, domain.ErrPrecondition("no active season")
	}
	if _, exists := c.live[matchID]; exists {
		return nil, domain.ErrConflict("live session already exists for match")
	}

	m, err := c.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}
	if m.Status != domain.MatchLive {
		return nil, domain.ErrPrecondition(fmt.Sprintf("match is %s, not live", m.Status))
	}

	session, err := c.newSession(ctx, m)
	if err != nil {
		return nil, err
	}
	c.live[matchID] = session
	return snapshot(session), nil
}

// Tick advances one live session by one simulated minute. Ticking an
// already-ended session is a no-op; the terminal state is returned.
func (c *Coordinator) Tick(ctx context.Context, matchID uuid.UUID) (*LiveState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.live[matchID]
	if !ok {
		return nil, domain.ErrPrecondition("no live session for match")
	}
	session.Tick()
	return snapshot(session), nil
}

// FinalizeLive drains the session to completion, copies its terminal
// state into the match record, marks the match finished and settles it.
// This is the single point where finished-match notifications are
// emitted, so exactly one settlement pass occurs per match.
func (c *Coordinator) FinalizeLive(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.live[matchID]
	if !ok {
		return nil, domain.ErrPrecondition("no live session for match")
	}

	m, err := c.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}
	if m.Status != domain.MatchLive {
		return nil, domain.ErrPrecondition(fmt.Sprintf("match is %s, not live", m.Status))
	}

	session.ForceEnd()
	result := &AdvanceResult{}
	if err := c.finalize(ctx, m, session, result); err != nil {
		return nil, err
	}
	return m, nil
}

// --- internals (caller holds the mutex) ---

// drainLive force-finalizes every live match before the date moves.
// Sessions are drained in fixture order, never map order: the sessions
// share one random source, so the consumption order must be identical
// on every replay for a seed to reproduce the season. Live-status
// matches without a session (marked live but never begun) are then
// simulated from scratch.
func (c *Coordinator) drainLive(ctx context.Context, result *AdvanceResult) error {
	type liveEntry struct {
		m       *domain.Match
		session *simulate.Session
	}
	open := make([]liveEntry, 0, len(c.live))
	for id, session := range c.live {
		m, err := c.matches.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load live match: %w", err)
		}
		if m == nil {
			c.logger.Warn("live session for missing match, dropping", "match_id", id)
			delete(c.live, id)
			continue
		}
		open = append(open, liveEntry{m: m, session: session})
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].m.ScheduledAt.Equal(open[j].m.ScheduledAt) {
			return open[i].m.ScheduledAt.Before(open[j].m.ScheduledAt)
		}
		return open[i].m.ID.String() < open[j].m.ID.String()
	})
	for _, le := range open {
		le.session.ForceEnd()
		if err := c.finalize(ctx, le.m, le.session, result); err != nil {
			c.logger.Warn("force-finalize failed", "match_id", le.m.ID, "error", err)
		}
	}

	all, err := c.matches.ListBySeason(ctx, c.season.ID)
	if err != nil {
		return fmt.Errorf("list season matches: %w", err)
	}
	for i := range all {
		m := &all[i]
		if m.Status != domain.MatchLive {
			continue
		}
		if _, done := c.settled[m.ID]; done {
			continue
		}
		if err := c.simulateAndFinalize(ctx, m, result); err != nil {
			c.logger.Warn("force-finalize of unstarted live match failed", "match_id", m.ID, "error", err)
		}
	}
	return nil
}

func (c *Coordinator) newSession(ctx context.Context, m *domain.Match) (*simulate.Session, error) {
	home, err := c.teams.FindByID(ctx, m.HomeTeamID)
	if err != nil {
		return nil, fmt.Errorf("load home team: %w", err)
	}
	if home == nil {
		return nil, domain.ErrNotFound("team", m.HomeTeamID.String())
	}
	away, err := c.teams.FindByID(ctx, m.AwayTeamID)
	if err != nil {
		return nil, fmt.Errorf("load away team: %w", err)
	}
	if away == nil {
		return nil, domain.ErrNotFound("team", m.AwayTeamID.String())
	}
	return simulate.NewSession(m.ID, *home, *away, c.params, c.rng)
}

func (c *Coordinator) simulateAndFinalize(ctx context.Context, m *domain.Match, result *AdvanceResult) error {
	session, err := c.newSession(ctx, m)
	if err != nil {
		return err
	}
	session.ForceEnd()
	if err := c.finalize(ctx, m, session, result); err != nil {
		return err
	}
	result.SimulatedMatches = append(result.SimulatedMatches, m.ID)
	return nil
}

// finalize copies the session's terminal state into the match record,
// marks it settled and runs settlement. The settled set guarantees this
// happens at most once per match id.
func (c *Coordinator) finalize(ctx context.Context, m *domain.Match, session *simulate.Session, result *AdvanceResult) error {
	if _, done := c.settled[m.ID]; done {
		delete(c.live, m.ID)
		return nil
	}

	res := session.Result()
	m.HomeScore = res.HomeScore
	m.AwayScore = res.AwayScore
	m.Events = res.Events
	m.SnitchCaught = res.SnitchCaught
	m.SnitchCaughtBy = res.SnitchCaughtBy
	m.Duration = res.Duration
	m.Status = domain.MatchFinished
	finishedAt := m.ScheduledAt.Add(time.Duration(res.Duration) * time.Minute)
	m.FinishedAt = &finishedAt

	if err := c.matches.Update(ctx, m); err != nil {
		return fmt.Errorf("write match result: %w", err)
	}

	c.settled[m.ID] = struct{}{}
	delete(c.live, m.ID)

	if err := c.outbox.Insert(ctx, domain.NewMatchFinishedEvent(m)); err != nil {
		c.logger.Error("outbox write failed", "match_id", m.ID, "error", err)
	}

	outcomes, err := c.settlement.ResolveMatch(ctx, m.ID)
	if err != nil {
		c.logger.Error("settlement failed", "match_id", m.ID, "error", err)
		return nil
	}
	result.Outcomes = append(result.Outcomes, outcomes...)
	return nil
}

// refreshSeasonProgress advances the season's round counter and marks
// the season finished once no playable fixtures remain.
func (c *Coordinator) refreshSeasonProgress(ctx context.Context) error {
	all, err := c.matches.ListBySeason(ctx, c.season.ID)
	if err != nil {
		return err
	}

	maxRound := c.season.CurrentRound
	remaining := false
	for i := range all {
		m := &all[i]
		switch m.Status {
		case domain.MatchFinished:
			if m.Round > maxRound {
				maxRound = m.Round
			}
		case domain.MatchScheduled, domain.MatchLive:
			remaining = true
		}
	}

	changed := false
	if maxRound != c.season.CurrentRound {
		c.season.CurrentRound = maxRound
		changed = true
	}
	if !remaining && c.season.Status == domain.SeasonActive {
		c.season.Status = domain.SeasonFinished
		changed = true
		c.logger.Info("season complete", "season_id", c.season.ID)
	}
	if changed {
		return c.seasons.Update(ctx, c.season)
	}
	return nil
}

func snapshot(s *simulate.Session) *LiveState {
	home, away := s.Score()
	return &LiveState{
		MatchID:   s.MatchID,
		Minute:    s.Minute(),
		HomeScore: home,
		AwayScore: away,
		Active:    s.Active(),
	}
}
