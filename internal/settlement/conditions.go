package settlement

import (
	"fmt"

	"github.com/pitchside/league/internal/domain"
)

// EvaluateLeg decides one typed leg condition against a finished match's
// authoritative result. A condition that cannot be evaluated (unknown
// kind, missing fields) is a losing leg with an explicit reason, never a
// silent skip. The returned reason also explains ordinary losses so the
// upstream layer can surface a meaningful message.
func EvaluateLeg(c domain.LegCondition, m *domain.Match) (domain.LegResult, string) {
	switch c.Kind {
	case domain.LegWinner:
		return evalWinner(c, m)
	case domain.LegSnitch:
		return evalSnitch(c, m)
	case domain.LegExactScore:
		return evalExactScore(c, m)
	case domain.LegMargin:
		return evalThreshold(c, m.Margin(), "margin")
	case domain.LegTotal:
		return evalThreshold(c, m.TotalPoints(), "total points")
	case domain.LegDuration:
		return evalThreshold(c, m.Duration, "duration")
	default:
		return domain.LegLost, fmt.Sprintf("malformed leg: unknown kind %q", c.Kind)
	}
}

func evalWinner(c domain.LegCondition, m *domain.Match) (domain.LegResult, string) {
	winner := m.Winner()
	if c.TeamID == nil {
		if winner == nil {
			return domain.LegWon, ""
		}
		return domain.LegLost, "draw predicted but match had a winner"
	}
	if winner == nil {
		return domain.LegLost, "match ended in a draw"
	}
	if *winner == *c.TeamID {
		return domain.LegWon, ""
	}
	return domain.LegLost, "selected team did not win"
}

func evalSnitch(c domain.LegCondition, m *domain.Match) (domain.LegResult, string) {
	if c.TeamID == nil {
		return domain.LegLost, "malformed leg: snitch leg without a team"
	}
	if !m.SnitchCaught {
		return domain.LegLost, "snitch was never caught"
	}
	catcher := m.SnitchCaughtBy
	if catcher == nil {
		for i := range m.Events {
			if m.Events[i].Type == domain.EventSnitchCaught && m.Events[i].Success {
				id := m.Events[i].TeamID
				catcher = &id
				break
			}
		}
	}
	if catcher == nil {
		return domain.LegLost, "no catching team recorded"
	}
	if *catcher == *c.TeamID {
		return domain.LegWon, ""
	}
	return domain.LegLost, "snitch caught by the other team"
}

func evalExactScore(c domain.LegCondition, m *domain.Match) (domain.LegResult, string) {
	if c.HomeScore == nil || c.AwayScore == nil {
		return domain.LegLost, "malformed leg: exact score leg missing scores"
	}
	if m.HomeScore == *c.HomeScore && m.AwayScore == *c.AwayScore {
		return domain.LegWon, ""
	}
	return domain.LegLost, fmt.Sprintf("score was %d-%d, not %d-%d", m.HomeScore, m.AwayScore, *c.HomeScore, *c.AwayScore)
}

func evalThreshold(c domain.LegCondition, actual int, metric string) (domain.LegResult, string) {
	if c.Value == nil {
		return domain.LegLost, fmt.Sprintf("malformed leg: %s leg missing value", metric)
	}
	switch c.Op {
	case domain.OpOver:
		if actual > *c.Value {
			return domain.LegWon, ""
		}
		return domain.LegLost, fmt.Sprintf("%s %d not over %d", metric, actual, *c.Value)
	case domain.OpUnder:
		if actual < *c.Value {
			return domain.LegWon, ""
		}
		return domain.LegLost, fmt.Sprintf("%s %d not under %d", metric, actual, *c.Value)
	default:
		return domain.LegLost, fmt.Sprintf("malformed leg: %s leg has op %q", metric, c.Op)
	}
}
