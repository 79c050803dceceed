package simulate

import "github.com/pitchside/league/internal/domain"

// EventDef describes one event type the simulator rolls for every minute:
// a baseline probability, the points it scores, an optional minimum-minute
// gate, and whether it ends the match. Attack and Oppose select which
// strength attribute of each side shapes the adjusted probability.
type EventDef struct {
	Type      domain.GameEventType
	BaseProb  float64
	Points    int
	MinMinute int
	EndsMatch bool
	Attack    func(domain.Team) int
	Oppose    func(domain.Team) int
}

func attack(t domain.Team) int  { return t.Attack }
func defense(t domain.Team) int { return t.Defense }
func chaser(t domain.Team) int  { return t.ChaserSkill }
func keeper(t domain.Team) int  { return t.KeeperSkill }
func beater(t domain.Team) int  { return t.BeaterSkill }
func seeker(t domain.Team) int  { return t.SeekerSkill }

// DefaultEvents is the standard event table. Baselines are tuned for a
// plausible score flow over a 120 minute cap, not calibrated statistics.
func DefaultEvents() []EventDef {
	return []EventDef{
		{Type: domain.EventGoal, BaseProb: 0.045, Points: 10, Attack: chaser, Oppose: keeper},
		{Type: domain.EventAttempt, BaseProb: 0.050, Attack: chaser, Oppose: defense},
		{Type: domain.EventSave, BaseProb: 0.040, Attack: keeper, Oppose: chaser},
		{Type: domain.EventBludgerHit, BaseProb: 0.030, Attack: beater, Oppose: beater},
		{Type: domain.EventFoulBlagging, BaseProb: 0.012, Attack: attack, Oppose: defense},
		{Type: domain.EventFoulBlatching, BaseProb: 0.010, Attack: attack, Oppose: defense},
		{Type: domain.EventFoulCobbing, BaseProb: 0.008, Attack: beater, Oppose: defense},
		{Type: domain.EventSnitchSpotted, BaseProb: 0.020, MinMinute: 10, Attack: seeker, Oppose: seeker},
		{Type: domain.EventSnitchCaught, BaseProb: 0.010, Points: 150, MinMinute: 30, EndsMatch: true, Attack: seeker, Oppose: seeker},
		{Type: domain.EventTimeout, BaseProb: 0.004, Attack: attack, Oppose: attack},
	}
}
