package simulate

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// BlowoutPolicy optionally ends a match early once the score gap exceeds
// Gap after MinMinute. This is a deliberate early-stop heuristic, not a
// realism claim; it defaults to disabled.
type BlowoutPolicy struct {
	Enabled   bool
	MinMinute int
	Gap       int
}

// Params tunes a simulation session.
type Params struct {
	MaxDuration    int     // hard minute cap when no snitch catch happens
	HomeAdvantage  float64 // multiplier applied to the home side's rolls
	ProbabilityCap float64 // ceiling on any adjusted per-minute probability
	Blowout        BlowoutPolicy
	Events         []EventDef // nil means DefaultEvents
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{
		MaxDuration:    120,
		HomeAdvantage:  1.08,
		ProbabilityCap: 0.25,
		Blowout:        BlowoutPolicy{Enabled: false, MinMinute: 60, Gap: 300},
	}
}

// EndReason records which termination condition fired.
type EndReason string

const (
	EndSnitchCaught EndReason = "snitch_caught"
	EndMaxDuration  EndReason = "max_duration"
	EndBlowout      EndReason = "blowout"
	EndForced       EndReason = "forced"
)

// Result is the terminal state of a simulated match.
type Result struct {
	HomeScore      int
	AwayScore      int
	Events         []domain.GameEvent
	SnitchCaught   bool
	SnitchCaughtBy *uuid.UUID
	Duration       int
	EndReason      EndReason
}

// Session advances one match a simulated minute at a time. Each session
// owns its state exclusively; no locking is needed while ticking. All
// randomness flows through the injected source, so a fixed seed replays
// the same match.
type Session struct {
	MatchID uuid.UUID

	home   domain.Team
	away   domain.Team
	params Params
	rng    *rand.Rand

	minute         int
	homeScore      int
	awayScore      int
	events         []domain.GameEvent
	active         bool
	snitchCaughtBy *uuid.UUID
	endReason      EndReason
}

// NewSession starts a session for one match. Both teams must be distinct,
// resolvable records; a bad pairing fails before any state is created.
func NewSession(matchID uuid.UUID, home, away domain.Team, params Params, rng *rand.Rand) (*Session, error) {
	if home.ID == uuid.Nil || away.ID == uuid.Nil {
		return nil, domain.ErrPrecondition("simulation requires two known teams")
	}
	if home.ID == away.ID {
		return nil, domain.ErrPrecondition("a team cannot play itself")
	}
	if params.MaxDuration <= 0 {
		return nil, domain.ErrValidation("max duration must be positive")
	}
	if params.Events == nil {
		params.Events = DefaultEvents()
	}
	return &Session{
		MatchID: matchID,
		home:    home,
		away:    away,
		params:  params,
		rng:     rng,
		active:  true,
	}, nil
}

// Active reports whether the match is still running.
func (s *Session) Active() bool { return s.active }

// Minute returns the elapsed simulated minutes.
func (s *Session) Minute() int { return s.minute }

// Score returns the current home and away score.
func (s *Session) Score() (home, away int) { return s.homeScore, s.awayScore }

// Tick advances the match by one simulated minute. Ticking an ended
// session is a no-op.
func (s *Session) Tick() {
	if !s.active {
		return
	}
	s.minute++

	for _, def := range s.params.Events {
		if s.minute < def.MinMinute {
			continue
		}
		// Independent Bernoulli draws for each side; both may fire in
		// the same minute. Home rolls first, so a home snitch catch
		// suppresses the away roll and exactly one side is credited.
		s.roll(def, s.home, s.away, true)
		if !s.active {
			return
		}
		s.roll(def, s.away, s.home, false)
		if !s.active {
			return
		}
	}

	if s.minute >= s.params.MaxDuration {
		s.end(EndMaxDuration)
		return
	}
	if b := s.params.Blowout; b.Enabled && s.minute >= b.MinMinute && gap(s.homeScore, s.awayScore) > b.Gap {
		s.end(EndBlowout)
	}
}

func (s *Session) roll(def EventDef, side, opponent domain.Team, isHome bool) {
	p := def.BaseProb * skillRatio(def.Attack(side)) * opponentRatio(def.Oppose(opponent))
	if isHome {
		p *= s.params.HomeAdvantage
	}
	if limit := s.params.ProbabilityCap; limit > 0 && p > limit {
		p = limit
	}
	if s.rng.Float64() >= p {
		return
	}

	ev := domain.GameEvent{
		ID:      uuid.New(),
		MatchID: s.MatchID,
		Type:    def.Type,
		Minute:  s.minute,
		Second:  s.rng.Intn(60),
		TeamID:  side.ID,
		Points:  def.Points,
		Success: true,
	}
	s.events = append(s.events, ev)

	if def.Points > 0 {
		if isHome {
			s.homeScore += def.Points
		} else {
			s.awayScore += def.Points
		}
	}
	if def.EndsMatch && s.minute >= def.MinMinute {
		id := side.ID
		s.snitchCaughtBy = &id
		s.end(EndSnitchCaught)
	}
}

func (s *Session) end(reason EndReason) {
	s.active = false
	s.endReason = reason
}

// ForceEnd drains the session to completion without real-time pacing.
// Used by batch clock advances and forced finalization.
func (s *Session) ForceEnd() {
	for s.active {
		s.Tick()
	}
}

// Result returns the session's terminal (or last-known) state. Safe to
// call at any time; stopping a ticker never rolls state back.
func (s *Session) Result() Result {
	return Result{
		HomeScore:      s.homeScore,
		AwayScore:      s.awayScore,
		Events:         s.events,
		SnitchCaught:   s.snitchCaughtBy != nil,
		SnitchCaughtBy: s.snitchCaughtBy,
		Duration:       s.minute,
		EndReason:      s.endReason,
	}
}

// skillRatio maps a 1-100 attribute to a multiplier centred on 50.
func skillRatio(skill int) float64 {
	if skill < 1 {
		skill = 1
	}
	return float64(skill) / 50.0
}

// opponentRatio shrinks the probability as the opposing skill grows.
func opponentRatio(skill int) float64 {
	if skill < 1 {
		skill = 1
	}
	return 50.0 / float64(skill)
}

func gap(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
