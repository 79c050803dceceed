package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateStake_WithinLimits(t *testing.T) {
	ev := EvaluateStake(DefaultStakePolicy(), 5_000, 10_000)
	assert.True(t, ev.Allowed)
}

func TestEvaluateStake_SingleWagerBreach(t *testing.T) {
	ev := EvaluateStake(DefaultStakePolicy(), 10_001, 0)
	assert.False(t, ev.Allowed)
	assert.Equal(t, "single_wager", ev.BreachedLimit)
	assert.Equal(t, int64(10_000), ev.LimitValue)
}

func TestEvaluateStake_DailyStakeBreach(t *testing.T) {
	ev := EvaluateStake(DefaultStakePolicy(), 6_000, 20_000)
	assert.False(t, ev.Allowed)
	assert.Equal(t, "daily_stake", ev.BreachedLimit)
	assert.Equal(t, int64(26_000), ev.RequestedAmt)
}

func TestEvaluateStake_ZeroLimitsDisableChecks(t *testing.T) {
	ev := EvaluateStake(StakePolicy{}, 1_000_000, 1_000_000)
	assert.True(t, ev.Allowed)
}
