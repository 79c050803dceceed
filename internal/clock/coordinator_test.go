package clock

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/ledger"
	"github.com/pitchside/league/internal/repository"
	"github.com/pitchside/league/internal/settlement"
	"github.com/pitchside/league/internal/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seasonStart = time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

type clockFixture struct {
	store  *repository.MemoryStore
	coord  *Coordinator
	season *domain.Season
	home   domain.Team
	away   domain.Team
}

func newClockFixture(t *testing.T, seed int64) *clockFixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledgerEngine := ledger.NewEngine(store.Accounts(), store.Entries(), store.Outbox())
	settlementEngine := settlement.NewEngine(store.Matches(), store.Wagers(), store.Predictions(), ledgerEngine, store.Outbox(), logger)

	f := &clockFixture{
		store: store,
		home:  balancedTeam("Harriers"),
		away:  balancedTeam("Wanderers"),
	}
	require.NoError(t, store.Teams().Create(ctx, &f.home))
	require.NoError(t, store.Teams().Create(ctx, &f.away))

	f.season = &domain.Season{
		ID:        uuid.New(),
		Name:      "2026 Premier",
		StartDate: seasonStart,
		EndDate:   seasonStart.AddDate(0, 3, 0),
		TeamIDs:   []uuid.UUID{f.home.ID, f.away.ID},
		Status:    domain.SeasonActive,
	}
	require.NoError(t, store.Seasons().Create(ctx, f.season))

	f.coord = New(
		store.Teams(), store.Seasons(), store.Matches(),
		settlementEngine, store.Outbox(),
		simulate.DefaultParams(), seed, logger,
	)
	return f
}

func balancedTeam(name string) domain.Team {
	return domain.Team{
		ID: uuid.New(), Name: name,
		Attack: 50, Defense: 50, SeekerSkill: 50,
		ChaserSkill: 50, KeeperSkill: 50, BeaterSkill: 50,
	}
}

func (f *clockFixture) addFixture(t *testing.T, home, away uuid.UUID, round int, at time.Time) *domain.Match {
	t.Helper()
	m := &domain.Match{
		ID:          uuid.New(),
		SeasonID:    f.season.ID,
		HomeTeamID:  home,
		AwayTeamID:  away,
		Round:       round,
		ScheduledAt: at,
		Status:      domain.MatchScheduled,
	}
	require.NoError(t, f.store.Matches().Create(context.Background(), m))
	return m
}

func (f *clockFixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.coord.StartSeason(context.Background(), f.season.ID))
}

func TestAdvance_RequiresActiveSeason(t *testing.T) {
	f := newClockFixture(t, 1)

	_, err := f.coord.Advance(context.Background(), AdvanceOptions{By: time.Hour})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestStartSeason_SetsClockToSeasonStart(t *testing.T) {
	f := newClockFixture(t, 1)
	f.start(t)
	assert.True(t, f.coord.CurrentDate().Equal(seasonStart))
}

func TestStartSeason_UnknownSeason(t *testing.T) {
	f := newClockFixture(t, 1)
	err := f.coord.StartSeason(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestAdvance_SimulatesDueMatches(t *testing.T) {
	f := newClockFixture(t, 42)
	f.start(t)
	ctx := context.Background()
	due := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(26*time.Hour))
	later := f.addFixture(t, f.away.ID, f.home.ID, 2, seasonStart.Add(8*24*time.Hour))

	result, err := f.coord.Advance(ctx, AdvanceOptions{By: 48 * time.Hour})
	require.NoError(t, err)
	assert.True(t, result.NewDate.Equal(seasonStart.Add(48*time.Hour)))
	require.Len(t, result.SimulatedMatches, 1)
	assert.Equal(t, due.ID, result.SimulatedMatches[0])

	finished, err := f.store.Matches().FindByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchFinished, finished.Status)
	assert.True(t, finished.ScoreConsistent())
	assert.Positive(t, finished.Duration)
	require.NotNil(t, finished.FinishedAt)

	untouched, err := f.store.Matches().FindByID(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchScheduled, untouched.Status)
}

func TestAdvance_WindowExcludesMatchAtCurrentDate(t *testing.T) {
	f := newClockFixture(t, 3)
	f.start(t)
	boundary := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart)

	result, err := f.coord.Advance(context.Background(), AdvanceOptions{By: time.Hour})
	require.NoError(t, err)
	assert.Empty(t, result.SimulatedMatches)

	m, err := f.store.Matches().FindByID(context.Background(), boundary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchScheduled, m.Status)
}

func TestAdvance_RejectsNonPositiveDuration(t *testing.T) {
	f := newClockFixture(t, 1)
	f.start(t)

	_, err := f.coord.Advance(context.Background(), AdvanceOptions{By: -time.Hour})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestAdvance_ToNextMatchTransitionsToLive(t *testing.T) {
	f := newClockFixture(t, 7)
	f.start(t)
	ctx := context.Background()
	first := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))
	second := f.addFixture(t, f.away.ID, f.home.ID, 2, seasonStart.Add(48*time.Hour))

	result, err := f.coord.Advance(ctx, AdvanceOptions{ToNextMatch: true})
	require.NoError(t, err)
	assert.True(t, result.NewDate.Equal(first.ScheduledAt))
	require.Len(t, result.TriggeredMatches, 1)
	assert.Equal(t, first.ID, result.TriggeredMatches[0])
	assert.Empty(t, result.SimulatedMatches)

	live, err := f.store.Matches().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchLive, live.Status)

	waiting, err := f.store.Matches().FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchScheduled, waiting.Status)
}

func TestAdvance_ToNextMatchWithNothingLeft(t *testing.T) {
	f := newClockFixture(t, 1)
	f.start(t)

	_, err := f.coord.Advance(context.Background(), AdvanceOptions{ToNextMatch: true})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestLiveLifecycle_BeginTickFinalize(t *testing.T) {
	f := newClockFixture(t, 11)
	f.start(t)
	ctx := context.Background()
	m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

	_, err := f.coord.Advance(ctx, AdvanceOptions{ToNextMatch: true})
	require.NoError(t, err)

	state, err := f.coord.BeginLive(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, state.MatchID)
	assert.Zero(t, state.Minute)
	assert.True(t, state.Active)

	state, err = f.coord.Tick(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Minute)

	finished, err := f.coord.FinalizeLive(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchFinished, finished.Status)
	assert.True(t, finished.ScoreConsistent())
	assert.Positive(t, finished.Duration)

	// The session handle is released with the match settled.
	_, err = f.coord.Tick(ctx, m.ID)
	require.Error(t, err)
	_, err = f.coord.FinalizeLive(ctx, m.ID)
	require.Error(t, err)
}

func TestBeginLive_RequiresLiveStatus(t *testing.T) {
	f := newClockFixture(t, 1)
	f.start(t)
	m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

	_, err := f.coord.BeginLive(context.Background(), m.ID)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestBeginLive_RejectsSecondSession(t *testing.T) {
	f := newClockFixture(t, 5)
	f.start(t)
	ctx := context.Background()
	m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

	_, err := f.coord.Advance(ctx, AdvanceOptions{ToNextMatch: true})
	require.NoError(t, err)
	_, err = f.coord.BeginLive(ctx, m.ID)
	require.NoError(t, err)

	_, err = f.coord.BeginLive(ctx, m.ID)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestTick_WithoutSession(t *testing.T) {
	f := newClockFixture(t, 1)
	f.start(t)

	_, err := f.coord.Tick(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestAdvance_ForceFinalizesLingeringLiveMatch(t *testing.T) {
	f := newClockFixture(t, 13)
	f.start(t)
	ctx := context.Background()
	m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

	_, err := f.coord.Advance(ctx, AdvanceOptions{ToNextMatch: true})
	require.NoError(t, err)
	_, err = f.coord.BeginLive(ctx, m.ID)
	require.NoError(t, err)
	_, err = f.coord.Tick(ctx, m.ID)
	require.NoError(t, err)

	// Moving the date on without finalizing must not orphan the live match.
	_, err = f.coord.Advance(ctx, AdvanceOptions{By: 72 * time.Hour})
	require.NoError(t, err)

	finished, err := f.store.Matches().FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchFinished, finished.Status)
	assert.True(t, finished.ScoreConsistent())
}

func TestAdvance_ForceFinalizesLiveMatchWithoutSession(t *testing.T) {
	f := newClockFixture(t, 17)
	f.start(t)
	ctx := context.Background()
	m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

	// Transitioned to live but ticking never began.
	_, err := f.coord.Advance(ctx, AdvanceOptions{ToNextMatch: true})
	require.NoError(t, err)

	_, err = f.coord.Advance(ctx, AdvanceOptions{By: 24 * time.Hour})
	require.NoError(t, err)

	finished, err := f.store.Matches().FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchFinished, finished.Status)
}

func TestAdvance_DoesNotResimulateSettledMatch(t *testing.T) {
	f := newClockFixture(t, 19)
	f.start(t)
	ctx := context.Background()
	m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

	result, err := f.coord.Advance(ctx, AdvanceOptions{By: 48 * time.Hour})
	require.NoError(t, err)
	require.Len(t, result.SimulatedMatches, 1)

	first, err := f.store.Matches().FindByID(ctx, m.ID)
	require.NoError(t, err)

	result, err = f.coord.Advance(ctx, AdvanceOptions{By: 48 * time.Hour})
	require.NoError(t, err)
	assert.Empty(t, result.SimulatedMatches)

	second, err := f.store.Matches().FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, first.HomeScore, second.HomeScore)
	assert.Equal(t, first.AwayScore, second.AwayScore)
}

func TestAdvance_FinishesSeasonWhenAllMatchesPlayed(t *testing.T) {
	f := newClockFixture(t, 23)
	f.start(t)
	ctx := context.Background()
	f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))
	f.addFixture(t, f.away.ID, f.home.ID, 2, seasonStart.Add(48*time.Hour))

	result, err := f.coord.Advance(ctx, AdvanceOptions{By: 7 * 24 * time.Hour})
	require.NoError(t, err)
	assert.Len(t, result.SimulatedMatches, 2)

	season, err := f.store.Seasons().FindByID(ctx, f.season.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeasonFinished, season.Status)
	assert.Equal(t, 2, season.CurrentRound)
}

func TestAdvance_SettlesWagersOnSimulatedMatches(t *testing.T) {
	f := newClockFixture(t, 29)
	f.start(t)
	ctx := context.Background()
	m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

	account := &domain.Account{ID: uuid.New(), Name: "punter", Balance: 5_000}
	require.NoError(t, f.store.Accounts().Create(ctx, account))
	teamID := f.home.ID
	wager := &domain.Wager{
		ID:        uuid.New(),
		AccountID: account.ID,
		Stake:     1_000,
		Odds:      2.0,
		Status:    domain.WagerActive,
		PlacedAt:  time.Now(),
		Legs: []domain.WagerLeg{{
			ID:        uuid.New(),
			MatchID:   m.ID,
			Condition: domain.LegCondition{Kind: domain.LegWinner, TeamID: &teamID},
		}},
	}
	require.NoError(t, f.store.Wagers().Create(ctx, wager))

	result, err := f.coord.Advance(ctx, AdvanceOptions{By: 48 * time.Hour})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)

	settled, err := f.store.Wagers().FindByID(ctx, wager.ID)
	require.NoError(t, err)
	assert.True(t, settled.Status.Settled())
}

func TestStartSeason_ZeroIDBindsActiveSeason(t *testing.T) {
	f := newClockFixture(t, 1)

	require.NoError(t, f.coord.StartSeason(context.Background(), uuid.Nil))
	assert.Equal(t, f.season.ID, f.coord.ActiveSeasonID())
	assert.True(t, f.coord.CurrentDate().Equal(seasonStart))
}

func TestStartSeason_ZeroIDWithoutActiveSeason(t *testing.T) {
	f := newClockFixture(t, 1)
	ctx := context.Background()
	f.season.Status = domain.SeasonFinished
	require.NoError(t, f.store.Seasons().Update(ctx, f.season))

	err := f.coord.StartSeason(ctx, uuid.Nil)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestAdvance_EmitsClockAdvancedEvent(t *testing.T) {
	f := newClockFixture(t, 1)
	f.start(t)
	ctx := context.Background()

	_, err := f.coord.Advance(ctx, AdvanceOptions{By: 48 * time.Hour})
	require.NoError(t, err)

	rows, err := f.store.Outbox().FetchUnpublished(ctx, 50)
	require.NoError(t, err)
	var found bool
	for _, row := range rows {
		if row.EventType == domain.EventClockAdvanced {
			found = true
			assert.Equal(t, f.season.ID.String(), row.AggregateID)
		}
	}
	assert.True(t, found, "every advance must leave a clock event in the outbox")
}

func TestAdvance_DeterministicForFixedSeed(t *testing.T) {
	run := func() (int, int) {
		f := newClockFixture(t, 99)
		f.start(t)
		ctx := context.Background()
		m := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))

		_, err := f.coord.Advance(ctx, AdvanceOptions{By: 48 * time.Hour})
		require.NoError(t, err)

		finished, err := f.store.Matches().FindByID(ctx, m.ID)
		require.NoError(t, err)
		return finished.HomeScore, finished.AwayScore
	}

	h1, a1 := run()
	h2, a2 := run()
	assert.Equal(t, h1, h2)
	assert.Equal(t, a1, a2)
}

func TestAdvance_DeterministicWithConcurrentLiveSessions(t *testing.T) {
	// Two sessions share the coordinator's random source, so the order
	// they are drained in decides which draws each match consumes. The
	// drain follows fixture order, making replays reproducible.
	run := func() []int {
		f := newClockFixture(t, 42)
		f.start(t)
		ctx := context.Background()

		first := f.addFixture(t, f.home.ID, f.away.ID, 1, seasonStart.Add(24*time.Hour))
		second := f.addFixture(t, f.away.ID, f.home.ID, 2, seasonStart.Add(26*time.Hour))

		for _, m := range []*domain.Match{first, second} {
			m.Status = domain.MatchLive
			require.NoError(t, f.store.Matches().Update(ctx, m))
			_, err := f.coord.BeginLive(ctx, m.ID)
			require.NoError(t, err)
			_, err = f.coord.Tick(ctx, m.ID)
			require.NoError(t, err)
		}

		_, err := f.coord.Advance(ctx, AdvanceOptions{By: 72 * time.Hour})
		require.NoError(t, err)

		var scores []int
		for _, m := range []*domain.Match{first, second} {
			finished, err := f.store.Matches().FindByID(ctx, m.ID)
			require.NoError(t, err)
			require.Equal(t, domain.MatchFinished, finished.Status)
			scores = append(scores, finished.HomeScore, finished.AwayScore)
		}
		return scores
	}

	assert.Equal(t, run(), run())
}
