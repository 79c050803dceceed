package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus tracks the lifecycle of a fixture.
// scheduled → live → finished is the normal path; postponed and
// cancelled are absorbing alternates.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchFinished  MatchStatus = "finished"
	MatchPostponed MatchStatus = "postponed"
	MatchCancelled MatchStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s MatchStatus) Terminal() bool {
	return s == MatchFinished || s == MatchPostponed || s == MatchCancelled
}

// GameEventType enumerates in-match event types.
type GameEventType string

const (
	EventGoal          GameEventType = "goal"
	EventAttempt       GameEventType = "attempt"
	EventSave          GameEventType = "save"
	EventBludgerHit    GameEventType = "bludger_hit"
	EventFoulBlagging  GameEventType = "foul_blagging"
	EventFoulBlatching GameEventType = "foul_blatching"
	EventFoulCobbing   GameEventType = "foul_cobbing"
	EventSnitchSpotted GameEventType = "snitch_spotted"
	EventSnitchCaught  GameEventType = "snitch_caught"
	EventTimeout       GameEventType = "timeout"
)

// GameEvent is one entry in a match's event log.
type GameEvent struct {
	ID      uuid.UUID     `json:"id"`
	MatchID uuid.UUID     `json:"match_id"`
	Type    GameEventType `json:"type"`
	Minute  int           `json:"minute"`
	Second  int           `json:"second"`
	TeamID  uuid.UUID     `json:"team_id"`
	Points  int           `json:"points"`
	Success bool          `json:"success"`
}

// Match represents one fixture within a season.
type Match struct {
	ID             uuid.UUID   `json:"id"`
	SeasonID       uuid.UUID   `json:"season_id"`
	HomeTeamID     uuid.UUID   `json:"home_team_id"`
	AwayTeamID     uuid.UUID   `json:"away_team_id"`
	Round          int         `json:"round"`
	Venue          string      `json:"venue,omitempty"`
	ScheduledAt    time.Time   `json:"scheduled_at"`
	Status         MatchStatus `json:"status"`
	HomeScore      int         `json:"home_score"`
	AwayScore      int         `json:"away_score"`
	Events         []GameEvent `json:"events,omitempty"`
	SnitchCaught   bool        `json:"snitch_caught"`
	SnitchCaughtBy *uuid.UUID  `json:"snitch_caught_by,omitempty"`
	Duration       int         `json:"duration"`
	FinishedAt     *time.Time  `json:"finished_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Winner returns the winning team id, or nil for a draw.
// Only meaningful for finished matches.
func (m *Match) Winner() *uuid.UUID {
	switch {
	case m.HomeScore > m.AwayScore:
		id := m.HomeTeamID
		return &id
	case m.AwayScore > m.HomeScore:
		id := m.AwayTeamID
		return &id
	default:
		return nil
	}
}

// TotalPoints returns the combined score of both sides.
func (m *Match) TotalPoints() int { return m.HomeScore + m.AwayScore }

// Margin returns the absolute score gap.
func (m *Match) Margin() int {
	d := m.HomeScore - m.AwayScore
	if d < 0 {
		return -d
	}
	return d
}

// ScoreConsistent checks that the recorded scores equal the score deltas
// implied by the event log. Matches that never went live carry no events
// and trivially pass.
func (m *Match) ScoreConsistent() bool {
	if m.Status != MatchLive && m.Status != MatchFinished {
		return true
	}
	var home, away int
	for _, ev := range m.Events {
		if !ev.Success || ev.Points == 0 {
			continue
		}
		switch ev.TeamID {
		case m.HomeTeamID:
			home += ev.Points
		case m.AwayTeamID:
			away += ev.Points
		}
	}
	return home == m.HomeScore && away == m.AwayScore
}
