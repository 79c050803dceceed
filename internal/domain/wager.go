package domain

import (
	"time"

	"github.com/google/uuid"
)

// WagerStatus tracks the lifecycle of a wager. The transition to won or
// lost is one-way: a settled wager is never re-evaluated.
type WagerStatus string

const (
	WagerPending WagerStatus = "pending"
	WagerActive  WagerStatus = "active"
	WagerWon     WagerStatus = "won"
	WagerLost    WagerStatus = "lost"
	WagerVoid    WagerStatus = "void"
)

// Settled reports whether s is a terminal wager state.
func (s WagerStatus) Settled() bool {
	return s == WagerWon || s == WagerLost || s == WagerVoid
}

// LegKind enumerates the typed leg-condition variants. The kind is fixed
// at wager-creation time; no selection strings are parsed at settlement.
type LegKind string

const (
	LegWinner     LegKind = "winner"
	LegSnitch     LegKind = "snitch"
	LegExactScore LegKind = "exact_score"
	LegMargin     LegKind = "margin"
	LegTotal      LegKind = "total"
	LegDuration   LegKind = "duration"
)

// ThresholdOp is the comparison direction for margin/total/duration legs.
type ThresholdOp string

const (
	OpOver  ThresholdOp = "over"
	OpUnder ThresholdOp = "under"
)

// LegCondition is the typed condition of one wager leg. Which fields are
// meaningful depends on Kind:
//
//	winner      TeamID (nil means draw)
//	snitch      TeamID
//	exact_score HomeScore, AwayScore
//	margin      Op, Value
//	total       Op, Value
//	duration    Op, Value (simulated minutes)
type LegCondition struct {
	Kind      LegKind     `json:"kind"`
	TeamID    *uuid.UUID  `json:"team_id,omitempty"`
	HomeScore *int        `json:"home_score,omitempty"`
	AwayScore *int        `json:"away_score,omitempty"`
	Op        ThresholdOp `json:"op,omitempty"`
	Value     *int        `json:"value,omitempty"`
}

// LegResult records the per-leg evaluation outcome.
type LegResult string

const (
	LegPending LegResult = "pending"
	LegWon     LegResult = "won"
	LegLost    LegResult = "lost"
)

// WagerLeg is one atomic condition within a wager, tied to a match.
type WagerLeg struct {
	ID        uuid.UUID    `json:"id"`
	WagerID   uuid.UUID    `json:"wager_id"`
	MatchID   uuid.UUID    `json:"match_id"`
	Condition LegCondition `json:"condition"`
	Result    LegResult    `json:"result"`
	Reason    string       `json:"reason,omitempty"`
}

// Wager is a placed bet with one or more legs. A multi-leg wager wins
// only if every leg's match is finished and every leg's condition holds.
type Wager struct {
	ID         uuid.UUID   `json:"id"`
	AccountID  uuid.UUID   `json:"account_id"`
	Stake      int64       `json:"stake"`
	Odds       float64     `json:"odds"`
	Status     WagerStatus `json:"status"`
	Legs       []WagerLeg  `json:"legs"`
	FailReason string      `json:"fail_reason,omitempty"`
	PlacedAt   time.Time   `json:"placed_at"`
	SettledAt  *time.Time  `json:"settled_at,omitempty"`
}

// Payout returns the amount credited on a win, in minor units.
func (w *Wager) Payout() int64 {
	return int64(float64(w.Stake) * w.Odds)
}

// MultiLeg reports whether the wager spans more than one match.
func (w *Wager) MultiLeg() bool { return len(w.Legs) > 1 }

// PredictionStatus tracks the lifecycle of a prediction.
type PredictionStatus string

const (
	PredictionPending   PredictionStatus = "pending"
	PredictionCorrect   PredictionStatus = "correct"
	PredictionIncorrect PredictionStatus = "incorrect"

	// PredictionVoid marks a call on a match that was cancelled or
	// postponed and can never be graded.
	PredictionVoid PredictionStatus = "void"
)

// Prediction is a single-match winner call with a confidence weight.
// Points are awarded only on correct outcomes, scaled by confidence.
type Prediction struct {
	ID            uuid.UUID        `json:"id"`
	AccountID     uuid.UUID        `json:"account_id"`
	MatchID       uuid.UUID        `json:"match_id"`
	WinnerID      *uuid.UUID       `json:"winner_id,omitempty"` // nil predicts a draw
	Confidence    int              `json:"confidence" validate:"min=1,max=100"`
	Status        PredictionStatus `json:"status"`
	PointsAwarded int              `json:"points_awarded"`
	CreatedAt     time.Time        `json:"created_at"`
	SettledAt     *time.Time       `json:"settled_at,omitempty"`
}

// SettlementOutcome reports one wager or prediction settled by a
// resolution pass.
type SettlementOutcome struct {
	Kind   string    `json:"kind"` // "wager" or "prediction"
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
	Payout int64     `json:"payout,omitempty"`
	Points int       `json:"points,omitempty"`
	Reason string    `json:"reason,omitempty"`
}
