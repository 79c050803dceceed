package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// Report lists every calendar integrity violation found. An empty
// violation list means the fixture set is a valid double round-robin.
type Report struct {
	Fixtures   int      `json:"fixtures"`
	Violations []string `json:"violations,omitempty"`
}

// Valid reports whether no violations were found.
func (r Report) Valid() bool { return len(r.Violations) == 0 }

// Validate checks a generated fixture list against the double round-robin
// guarantees and reports every violation found rather than stopping at
// the first.
func Validate(teams []domain.Team, fixtures []domain.Match) Report {
	report := Report{Fixtures: len(fixtures)}
	n := len(teams)

	known := make(map[uuid.UUID]bool, n)
	for _, t := range teams {
		known[t.ID] = true
	}

	if want := n * (n - 1); len(fixtures) != want {
		report.Violations = append(report.Violations,
			fmt.Sprintf("fixture count %d, want %d for %d teams", len(fixtures), want, n))
	}

	ordered := make(map[[2]uuid.UUID]int)
	for _, m := range fixtures {
		if m.HomeTeamID == m.AwayTeamID {
			report.Violations = append(report.Violations,
				fmt.Sprintf("fixture %s pairs team %s with itself", m.ID, m.HomeTeamID))
			continue
		}
		if !known[m.HomeTeamID] || !known[m.AwayTeamID] {
			report.Violations = append(report.Violations,
				fmt.Sprintf("fixture %s references a team outside the season", m.ID))
			continue
		}
		ordered[[2]uuid.UUID{m.HomeTeamID, m.AwayTeamID}]++
	}

	for i, a := range teams {
		for j, b := range teams {
			if i == j {
				continue
			}
			if c := ordered[[2]uuid.UUID{a.ID, b.ID}]; c != 1 {
				report.Violations = append(report.Violations,
					fmt.Sprintf("pair home=%s away=%s appears %d times, want 1", a.Name, b.Name, c))
			}
		}
	}

	return report
}
