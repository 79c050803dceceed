package domain

import (
	"time"

	"github.com/google/uuid"
)

// SeasonStatus tracks the lifecycle of a season.
type SeasonStatus string

const (
	SeasonUpcoming SeasonStatus = "upcoming"
	SeasonActive   SeasonStatus = "active"
	SeasonFinished SeasonStatus = "finished"
)

// Season owns an ordered team set and the full fixture list.
// For N teams exactly N·(N−1) fixtures exist: every ordered pair appears
// as home exactly once and as away exactly once.
type Season struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name" validate:"required"`
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	TeamIDs      []uuid.UUID  `json:"team_ids"`
	CurrentRound int          `json:"current_round"`
	Status       SeasonStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}
