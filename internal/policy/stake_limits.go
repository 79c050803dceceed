package policy

// StakePolicy caps how much an account can put at risk. Amounts are in
// minor units, matching ledger balances.
type StakePolicy struct {
	SingleWagerMax int64 `json:"single_wager_max"`
	DailyStakeMax  int64 `json:"daily_stake_max"`
}

// DefaultStakePolicy returns the house limits applied to every account.
func DefaultStakePolicy() StakePolicy {
	return StakePolicy{
		SingleWagerMax: 10_000,
		DailyStakeMax:  25_000,
	}
}

// Evaluation holds the result of a stake limits check.
type Evaluation struct {
	Allowed       bool   `json:"allowed"`
	BreachedLimit string `json:"breached_limit,omitempty"`
	LimitValue    int64  `json:"limit_value,omitempty"`
	RequestedAmt  int64  `json:"requested_amount,omitempty"`
}

// EvaluateStake checks a stake against the policy. dailyStaked is the
// account's running stake total for the current day before this wager.
func EvaluateStake(p StakePolicy, stake, dailyStaked int64) Evaluation {
	if p.SingleWagerMax > 0 && stake > p.SingleWagerMax {
		return Evaluation{
			Allowed:       false,
			BreachedLimit: "single_wager",
			LimitValue:    p.SingleWagerMax,
			RequestedAmt:  stake,
		}
	}

	if p.DailyStakeMax > 0 && dailyStaked+stake > p.DailyStakeMax {
		return Evaluation{
			Allowed:       false,
			BreachedLimit: "daily_stake",
			LimitValue:    p.DailyStakeMax,
			RequestedAmt:  dailyStaked + stake,
		}
	}

	return Evaluation{Allowed: true}
}
