package repository

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundtrip_LedgerAmounts(t *testing.T) {
	// Stakes debit negative, payouts credit positive; a fresh account
	// sits at zero. All must survive the numeric(15,0) crossing intact.
	amounts := []int64{0, -1_500, 2_500, 10_000, -10_000, 999_999_999_999_999}
	for _, v := range amounts {
		got, err := numericToInt64(int64ToNumeric(v))
		require.NoError(t, err, "amount %d", v)
		assert.Equal(t, v, got, "amount %d", v)
	}
}

func TestNumericRoundtrip_Int64Extremes(t *testing.T) {
	for _, v := range []int64{math.MaxInt64, math.MinInt64} {
		got, err := numericToInt64(int64ToNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestNumericToInt64_NullBalance(t *testing.T) {
	_, err := numericToInt64(pgtype.Numeric{Valid: false})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToInt64_ScaledValue(t *testing.T) {
	// 25 * 10^2: postgres may hand back a normalized mantissa.
	n := pgtype.Numeric{Int: big.NewInt(25), Exp: 2, Valid: true}
	v, err := numericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(2_500), v)
}

func TestNumericToInt64_FractionTruncates(t *testing.T) {
	// 1050099 * 10^-2: a zero-scale column should never produce this,
	// but a fractional leftover truncates rather than errors.
	n := pgtype.Numeric{Int: big.NewInt(1_050_099), Exp: -2, Valid: true}
	v, err := numericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(10_500), v)
}

func TestNumericToInt64_OverflowRejected(t *testing.T) {
	over := new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1))
	_, err := numericToInt64(pgtype.Numeric{Int: over, Valid: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}
