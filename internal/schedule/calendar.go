package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// TimeSlot is a kickoff time within a match day.
type TimeSlot struct {
	Hour   int `json:"hour" validate:"min=0,max=23"`
	Minute int `json:"minute" validate:"min=0,max=59"`
}

// Config drives fixture generation for one season.
type Config struct {
	SeasonID uuid.UUID
	Start    time.Time
	Weekdays []time.Weekday
	Slots    []TimeSlot
	Venues   []string
}

// Generate produces a complete double round-robin fixture list using the
// circle method: team 0 stays fixed, the remaining teams rotate one
// position per round, and round r pairs position i with position n-1-i.
// Two full passes are generated with home/away swapped in the second, so
// every ordered pair (A,B) with A≠B appears exactly once as (home=A,away=B).
//
// For N teams the result holds exactly N·(N−1) fixtures. An odd team
// count is handled with a placeholder team whose fixtures are discarded.
func Generate(teams []domain.Team, cfg Config) ([]domain.Match, error) {
	if len(teams) < 2 {
		return nil, domain.ErrPrecondition("calendar generation requires at least 2 teams")
	}
	if len(cfg.Slots) == 0 {
		return nil, domain.ErrValidation("calendar config needs at least one time slot")
	}
	if len(cfg.Weekdays) == 0 {
		return nil, domain.ErrValidation("calendar config needs at least one match weekday")
	}

	ids := make([]uuid.UUID, 0, len(teams)+1)
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	if len(ids)%2 == 1 {
		ids = append(ids, uuid.Nil) // placeholder; its pairings become byes
	}
	n := len(ids)

	day := nextMatchDay(cfg.Start, cfg.Weekdays)
	fixtures := make([]domain.Match, 0, len(teams)*(len(teams)-1))
	round := 0

	for pass := 0; pass < 2; pass++ {
		for r := 0; r < n-1; r++ {
			round++
			arr := rotate(ids, r)
			slot := 0
			for i := 0; i < n/2; i++ {
				a, b := arr[i], arr[n-1-i]
				if a == uuid.Nil || b == uuid.Nil {
					continue
				}
				home, away := a, b
				if (r+i)%2 == 1 {
					home, away = away, home
				}
				if pass == 1 {
					home, away = away, home
				}
				ts := cfg.Slots[slot%len(cfg.Slots)]
				venue := ""
				if len(cfg.Venues) > 0 {
					venue = cfg.Venues[slot%len(cfg.Venues)]
				}
				fixtures = append(fixtures, domain.Match{
					ID:          uuid.New(),
					SeasonID:    cfg.SeasonID,
					HomeTeamID:  home,
					AwayTeamID:  away,
					Round:       round,
					Venue:       venue,
					ScheduledAt: time.Date(day.Year(), day.Month(), day.Day(), ts.Hour, ts.Minute, 0, 0, day.Location()),
					Status:      domain.MatchScheduled,
					CreatedAt:   time.Now(),
				})
				slot++
			}
			day = nextMatchDay(day.AddDate(0, 0, 1), cfg.Weekdays)
		}
	}

	return fixtures, nil
}

// rotate fixes ids[0] and rotates the remaining n-1 entries by r positions.
func rotate(ids []uuid.UUID, r int) []uuid.UUID {
	n := len(ids)
	arr := make([]uuid.UUID, n)
	arr[0] = ids[0]
	for i := 1; i < n; i++ {
		arr[i] = ids[1+((i-1+r)%(n-1))]
	}
	return arr
}

// nextMatchDay returns the first day at or after from that falls on an
// allowed weekday.
func nextMatchDay(from time.Time, weekdays []time.Weekday) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for i := 0; i < 7; i++ {
		for _, wd := range weekdays {
			if day.Weekday() == wd {
				return day
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return day
}
