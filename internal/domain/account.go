package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Account holds a wagering balance in minor units.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryType enumerates ledger entry types.
type EntryType string

const (
	EntryStake          EntryType = "stake"
	EntryPayout         EntryType = "payout"
	EntrySettlementLoss EntryType = "settlement_loss"
	EntryAdjustment     EntryType = "adjustment"
)

// Entry is one append-only ledger row. BalanceBefore/BalanceAfter record
// the account balance around the posting so every credit is auditable.
type Entry struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Type          EntryType       `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceBefore int64           `json:"balance_before"`
	BalanceAfter  int64           `json:"balance_after"`
	Reference     string          `json:"reference"` // idempotency key, e.g. "wager-payout-<id>"
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
