package domain

import "github.com/google/uuid"

// Standing is one team's aggregated record within a season snapshot.
// Standings are always recomputed from finished matches, never stored as
// a source of truth.
type Standing struct {
	TeamID         uuid.UUID `json:"team_id"`
	TeamName       string    `json:"team_name"`
	Position       int       `json:"position"`
	Played         int       `json:"played"`
	Wins           int       `json:"wins"`
	Draws          int       `json:"draws"`
	Losses         int       `json:"losses"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	SnitchCatches  int       `json:"snitch_catches"`
	Form           string    `json:"form"` // last 5 results, most recent first, e.g. "WWDLW"
}
