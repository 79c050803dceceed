package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/repository"
)

// Engine is the balance-credit and ledger-append collaborator used by
// wager placement and settlement. Every posting:
//  1. checks the idempotency reference for a prior identical posting
//  2. applies the balance delta
//  3. appends an entry recording prior and new balance
//  4. writes an outbox event
//
// Postings are serialized through one mutex; the engine is the single
// writer of account balances.
type Engine struct {
	mu       sync.Mutex
	accounts repository.AccountRepository
	entries  repository.EntryRepository
	outbox   repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(accounts repository.AccountRepository, entries repository.EntryRepository, outbox repository.OutboxRepository) *Engine {
	return &Engine{accounts: accounts, entries: entries, outbox: outbox}
}

// PostParams describes one posting. Amount is a signed delta in minor
// units. Reference is the idempotency key; a repeated reference returns
// the original entry without re-applying the delta.
type PostParams struct {
	AccountID uuid.UUID
	Type      domain.EntryType
	Amount    int64
	Reference string
	Metadata  json.RawMessage
}

// PostResult reports one posting. Idempotent is true when the reference
// matched an earlier entry and no balance change occurred.
type PostResult struct {
	Entry      *domain.Entry
	Idempotent bool
}

// Post applies one balance delta and appends the audit entry.
func (e *Engine) Post(ctx context.Context, params PostParams) (*PostResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if params.Reference != "" {
		existing, err := e.entries.FindByReference(ctx, params.AccountID, params.Reference)
		if err != nil {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
		if existing != nil {
			return &PostResult{Entry: existing, Idempotent: true}, nil
		}
	}

	account, err := e.accounts.FindByID(ctx, params.AccountID)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", params.AccountID.String())
	}

	before := account.Balance
	after := before + params.Amount
	if after < 0 {
		return nil, domain.ErrInsufficientBalance()
	}

	account.Balance = after
	if err := e.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	entry := &domain.Entry{
		ID:            uuid.New(),
		AccountID:     params.AccountID,
		Type:          params.Type,
		Amount:        params.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     params.Reference,
		Metadata:      params.Metadata,
		CreatedAt:     time.Now(),
	}
	if err := e.entries.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	if err := e.outbox.Insert(ctx, domain.NewEntryPostedEvent(entry)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return &PostResult{Entry: entry}, nil
}

// CreditPayout credits a winning wager's payout.
func (e *Engine) CreditPayout(ctx context.Context, accountID uuid.UUID, amount int64, reference string, meta json.RawMessage) (*PostResult, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	return e.Post(ctx, PostParams{
		AccountID: accountID,
		Type:      domain.EntryPayout,
		Amount:    amount,
		Reference: reference,
		Metadata:  meta,
	})
}

// DebitStake deducts a stake at wager placement time.
func (e *Engine) DebitStake(ctx context.Context, accountID uuid.UUID, amount int64, reference string, meta json.RawMessage) (*PostResult, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	return e.Post(ctx, PostParams{
		AccountID: accountID,
		Type:      domain.EntryStake,
		Amount:    -amount,
		Reference: reference,
		Metadata:  meta,
	})
}

// RecordLoss appends a zero-amount audit entry for a losing settlement.
// The stake was deducted at placement, so no balance change occurs.
func (e *Engine) RecordLoss(ctx context.Context, accountID uuid.UUID, reference string, meta json.RawMessage) (*PostResult, error) {
	return e.Post(ctx, PostParams{
		AccountID: accountID,
		Type:      domain.EntrySettlementLoss,
		Amount:    0,
		Reference: reference,
		Metadata:  meta,
	})
}

// RefundStake returns a stake for a voided wager.
func (e *Engine) RefundStake(ctx context.Context, accountID uuid.UUID, amount int64, reference string, meta json.RawMessage) (*PostResult, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	return e.Post(ctx, PostParams{
		AccountID: accountID,
		Type:      domain.EntryAdjustment,
		Amount:    amount,
		Reference: reference,
		Metadata:  meta,
	})
}
