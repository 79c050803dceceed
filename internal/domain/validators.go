package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs go-playground tag validation on any domain record.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return ErrValidation(err.Error())
	}
	return nil
}

// ValidateTeam checks identity and the six 1–100 strength attributes.
func ValidateTeam(t *Team) error {
	return ValidateStruct(t)
}

// ValidatePositiveAmount checks that an amount is positive (minor units).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateLegCondition checks structural completeness of a typed leg
// condition at wager-creation time. A condition that passes here can
// always be evaluated once its match finishes.
func ValidateLegCondition(c LegCondition) error {
	switch c.Kind {
	case LegWinner:
		// nil TeamID predicts a draw; nothing else required.
		return nil
	case LegSnitch:
		if c.TeamID == nil {
			return fmt.Errorf("snitch leg requires a team")
		}
	case LegExactScore:
		if c.HomeScore == nil || c.AwayScore == nil {
			return fmt.Errorf("exact score leg requires both scores")
		}
		if *c.HomeScore < 0 || *c.AwayScore < 0 {
			return fmt.Errorf("exact score leg scores must be non-negative")
		}
	case LegMargin, LegTotal, LegDuration:
		if c.Op != OpOver && c.Op != OpUnder {
			return fmt.Errorf("%s leg requires op over or under", c.Kind)
		}
		if c.Value == nil || *c.Value < 0 {
			return fmt.Errorf("%s leg requires a non-negative value", c.Kind)
		}
	default:
		return fmt.Errorf("unknown leg kind %q", c.Kind)
	}
	return nil
}
