package standings

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// snitchPoints is the score value of a catch, used by the inference
// fallback when no explicit catching team is recorded.
const snitchPoints = 150

// Compute folds the finished matches of a season into a sorted league
// table. It is a pure function: callers pass the team set and match list
// and get back derived rows, never persisted as a source of truth.
//
// Sort key: points desc, goal difference desc, goals for desc, team name
// asc as the deterministic final tie-break. Position is the 1-based rank.
func Compute(teams []domain.Team, matches []domain.Match) []domain.Standing {
	rows := make(map[uuid.UUID]*domain.Standing, len(teams))
	form := make(map[uuid.UUID][]byte, len(teams))
	for _, t := range teams {
		rows[t.ID] = &domain.Standing{TeamID: t.ID, TeamName: t.Name}
	}

	ordered := append([]domain.Match{}, matches...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ScheduledAt.Before(ordered[j].ScheduledAt)
	})

	for i := range ordered {
		m := &ordered[i]
		if m.Status != domain.MatchFinished {
			continue
		}
		home, okH := rows[m.HomeTeamID]
		away, okA := rows[m.AwayTeamID]
		if !okH || !okA {
			// A finished match referencing a team outside the set is a
			// data inconsistency; skip it rather than corrupt the table.
			continue
		}

		home.Played++
		away.Played++
		home.GoalsFor += m.HomeScore
		home.GoalsAgainst += m.AwayScore
		away.GoalsFor += m.AwayScore
		away.GoalsAgainst += m.HomeScore

		switch {
		case m.HomeScore > m.AwayScore:
			home.Wins++
			home.Points += 3
			away.Losses++
			form[m.HomeTeamID] = append(form[m.HomeTeamID], 'W')
			form[m.AwayTeamID] = append(form[m.AwayTeamID], 'L')
		case m.AwayScore > m.HomeScore:
			away.Wins++
			away.Points += 3
			home.Losses++
			form[m.HomeTeamID] = append(form[m.HomeTeamID], 'L')
			form[m.AwayTeamID] = append(form[m.AwayTeamID], 'W')
		default:
			home.Draws++
			away.Draws++
			home.Points++
			away.Points++
			form[m.HomeTeamID] = append(form[m.HomeTeamID], 'D')
			form[m.AwayTeamID] = append(form[m.AwayTeamID], 'D')
		}

		if catcher := snitchCatcher(m); catcher != nil {
			if row, ok := rows[*catcher]; ok {
				row.SnitchCatches++
			}
		}
	}

	table := make([]domain.Standing, 0, len(rows))
	for id, row := range rows {
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		row.Form = lastFive(form[id])
		table = append(table, *row)
	}

	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamName < b.TeamName
	})
	for i := range table {
		table[i].Position = i + 1
	}
	return table
}

// snitchCatcher prefers the explicit catching-team reference, then the
// event log. When the flag is set but no team was recorded it falls back
// to crediting the winner of a catch-sized margin — an approximation kept
// for older match records that predate the explicit field.
func snitchCatcher(m *domain.Match) *uuid.UUID {
	if m.SnitchCaughtBy != nil {
		return m.SnitchCaughtBy
	}
	for i := range m.Events {
		if m.Events[i].Type == domain.EventSnitchCaught && m.Events[i].Success {
			id := m.Events[i].TeamID
			return &id
		}
	}
	if m.SnitchCaught && m.Margin() >= snitchPoints {
		return m.Winner()
	}
	return nil
}

// lastFive renders the most recent five results, newest first.
func lastFive(results []byte) string {
	n := len(results)
	if n == 0 {
		return ""
	}
	start := n - 5
	if start < 0 {
		start = 0
	}
	out := make([]byte, 0, 5)
	for i := n - 1; i >= start; i-- {
		out = append(out, results[i])
	}
	return string(out)
}

// SelfCheck confirms the arithmetic invariants of every row and reports
// violations instead of silently correcting them.
func SelfCheck(table []domain.Standing) []string {
	var violations []string
	for _, row := range table {
		if row.Wins+row.Draws+row.Losses != row.Played {
			violations = append(violations, fmt.Sprintf(
				"%s: W+D+L = %d, played = %d", row.TeamName, row.Wins+row.Draws+row.Losses, row.Played))
		}
		if row.Points != 3*row.Wins+row.Draws {
			violations = append(violations, fmt.Sprintf(
				"%s: points = %d, want %d", row.TeamName, row.Points, 3*row.Wins+row.Draws))
		}
		if row.GoalDifference != row.GoalsFor-row.GoalsAgainst {
			violations = append(violations, fmt.Sprintf(
				"%s: goal difference %d does not match %d-%d", row.TeamName, row.GoalDifference, row.GoalsFor, row.GoalsAgainst))
		}
	}
	return violations
}

// SnitchLeaders returns the top n rows by snitch catches, ties broken by
// table position.
func SnitchLeaders(table []domain.Standing, n int) []domain.Standing {
	leaders := append([]domain.Standing{}, table...)
	sort.SliceStable(leaders, func(i, j int) bool {
		return leaders[i].SnitchCatches > leaders[j].SnitchCatches
	})
	if n < len(leaders) {
		leaders = leaders[:n]
	}
	return leaders
}
