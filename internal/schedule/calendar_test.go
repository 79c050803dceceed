package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTeams(n int) []domain.Team {
	names := []string{"Arrows", "Bats", "Cannons", "Dragons", "Eagles", "Falcons", "Gryphons"}
	teams := make([]domain.Team, n)
	for i := 0; i < n; i++ {
		teams[i] = domain.Team{ID: uuid.New(), Name: names[i%len(names)]}
	}
	return teams
}

func testConfig() Config {
	return Config{
		SeasonID: uuid.New(),
		Start:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Weekdays: []time.Weekday{time.Saturday, time.Sunday},
		Slots:    []TimeSlot{{Hour: 13}, {Hour: 16}, {Hour: 19}},
		Venues:   []string{"North Pitch", "South Pitch"},
	}
}

func TestGenerate_FourTeams(t *testing.T) {
	teams := testTeams(4)
	fixtures, err := Generate(teams, testConfig())
	require.NoError(t, err)
	assert.Len(t, fixtures, 12)

	report := Validate(teams, fixtures)
	assert.True(t, report.Valid(), "violations: %v", report.Violations)
}

func TestGenerate_EveryOrderedPairOnce(t *testing.T) {
	teams := testTeams(6)
	fixtures, err := Generate(teams, testConfig())
	require.NoError(t, err)
	assert.Len(t, fixtures, 30)

	ordered := make(map[[2]uuid.UUID]int)
	for _, m := range fixtures {
		ordered[[2]uuid.UUID{m.HomeTeamID, m.AwayTeamID}]++
	}
	for i, a := range teams {
		for j, b := range teams {
			if i == j {
				continue
			}
			assert.Equal(t, 1, ordered[[2]uuid.UUID{a.ID, b.ID}],
				"ordered pair %s vs %s", a.ID, b.ID)
		}
	}
}

func TestGenerate_OddTeamCountUsesBye(t *testing.T) {
	teams := testTeams(5)
	fixtures, err := Generate(teams, testConfig())
	require.NoError(t, err)
	assert.Len(t, fixtures, 20)

	for _, m := range fixtures {
		assert.NotEqual(t, uuid.Nil, m.HomeTeamID)
		assert.NotEqual(t, uuid.Nil, m.AwayTeamID)
	}
	assert.True(t, Validate(teams, fixtures).Valid())
}

func TestGenerate_DatesOnAllowedWeekdays(t *testing.T) {
	cfg := testConfig()
	fixtures, err := Generate(testTeams(4), cfg)
	require.NoError(t, err)

	for _, m := range fixtures {
		wd := m.ScheduledAt.Weekday()
		assert.Contains(t, cfg.Weekdays, wd)
		assert.False(t, m.ScheduledAt.Before(cfg.Start))
	}
}

func TestGenerate_RoundDatesAdvance(t *testing.T) {
	fixtures, err := Generate(testTeams(4), testConfig())
	require.NoError(t, err)

	roundDay := make(map[int]string)
	for _, m := range fixtures {
		day := m.ScheduledAt.Format("2006-01-02")
		if prev, ok := roundDay[m.Round]; ok {
			assert.Equal(t, prev, day, "round %d split across days", m.Round)
		}
		roundDay[m.Round] = day
	}
	assert.Len(t, roundDay, 6) // 2 passes x (4-1) rounds
}

func TestGenerate_TooFewTeams(t *testing.T) {
	_, err := Generate(testTeams(1), testConfig())
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestGenerate_EmptySlotListFails(t *testing.T) {
	cfg := testConfig()
	cfg.Slots = nil
	_, err := Generate(testTeams(4), cfg)
	assert.Error(t, err)
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	teams := testTeams(4)
	fixtures, err := Generate(teams, testConfig())
	require.NoError(t, err)

	// Corrupt the set: drop one fixture and duplicate another.
	corrupted := append([]domain.Match{}, fixtures[1:]...)
	corrupted = append(corrupted, fixtures[1])

	report := Validate(teams, corrupted)
	assert.False(t, report.Valid())
	assert.GreaterOrEqual(t, len(report.Violations), 2)
}
