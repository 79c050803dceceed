package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
)

// AuditCheck records a single invariant validation over an account ledger.
type AuditCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// AuditReport is the outcome of replaying an account's ledger entries.
type AuditReport struct {
	AccountID       uuid.UUID    `json:"account_id"`
	EntryCount      int          `json:"entry_count"`
	ComputedBalance int64        `json:"computed_balance"`
	StoredBalance   int64        `json:"stored_balance"`
	Checks          []AuditCheck `json:"checks"`
	Clean           bool         `json:"clean"`
}

// AuditAccount replays an account's entries in posting order and validates
// the ledger invariants:
//  1. chain continuity: each entry's balance_before equals the previous
//     entry's balance_after
//  2. non-negativity: no entry leaves the balance below zero
//  3. reference uniqueness: no idempotency reference appears twice
//  4. parity: the final balance_after matches the stored account balance
func (e *Engine) AuditAccount(ctx context.Context, accountID uuid.UUID) (*AuditReport, error) {
	account, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}

	entries, err := e.entries.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	report := &AuditReport{
		AccountID:     accountID,
		EntryCount:    len(entries),
		StoredBalance: account.Balance,
	}

	chainOK := true
	prev := int64(0)
	for i, entry := range entries {
		if i > 0 && entry.BalanceBefore != prev {
			chainOK = false
		}
		prev = entry.BalanceAfter
	}
	report.Checks = append(report.Checks, AuditCheck{
		Name:   "chain_continuity",
		Passed: chainOK,
		Detail: fmt.Sprintf("%d entries replayed", len(entries)),
	})

	nonNegative := true
	for _, entry := range entries {
		if entry.BalanceAfter < 0 {
			nonNegative = false
			break
		}
	}
	report.Checks = append(report.Checks, AuditCheck{
		Name:   "balance_non_negative",
		Passed: nonNegative,
		Detail: fmt.Sprintf("stored balance %d", account.Balance),
	})

	refsOK := true
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Reference == "" {
			continue
		}
		if seen[entry.Reference] {
			refsOK = false
			break
		}
		seen[entry.Reference] = true
	}
	report.Checks = append(report.Checks, AuditCheck{
		Name:   "reference_uniqueness",
		Passed: refsOK,
		Detail: fmt.Sprintf("%d distinct references", len(seen)),
	})

	computed := int64(0)
	if len(entries) > 0 {
		computed = entries[len(entries)-1].BalanceAfter
	} else {
		computed = account.Balance
	}
	report.ComputedBalance = computed
	report.Checks = append(report.Checks, AuditCheck{
		Name:   "ledger_parity",
		Passed: computed == account.Balance,
		Detail: fmt.Sprintf("computed=%d stored=%d", computed, account.Balance),
	})

	report.Clean = true
	for _, c := range report.Checks {
		if !c.Passed {
			report.Clean = false
			break
		}
	}
	return report, nil
}
