package repository

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// Stakes, balances and ledger amounts are stored as numeric(15,0) and
// carried in Go as int64 minor units. These converters are the only
// crossing point between the two representations.

// numericToInt64 decodes a pgtype.Numeric scanned from a numeric(15,0)
// column. NULL, fractional leftovers and int64 overflow are errors.
func numericToInt64(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}

	// pgtype.Numeric carries Int * 10^Exp.
	v := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		v.Mul(v, scale)
	} else if n.Exp < 0 {
		// Should not occur for a zero-scale column; truncate if it does.
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		v.Div(v, scale)
	}

	if !v.IsInt64() {
		return 0, fmt.Errorf("numeric value %s overflows int64", v.String())
	}
	return v.Int64(), nil
}

// int64ToNumeric encodes an amount for writing to a numeric(15,0) column.
func int64ToNumeric(v int64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(v),
		Exp:              0,
		NaN:              false,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
