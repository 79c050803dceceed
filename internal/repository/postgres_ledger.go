package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/league/internal/domain"
)

// --- AccountRepository ---

type pgAccounts struct{ pool *pgxpool.Pool }

func (r *pgAccounts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, balance, created_at FROM accounts WHERE id = $1`, id)
	var a domain.Account
	var balance pgtype.Numeric
	err := row.Scan(&a.ID, &a.Name, &balance, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Balance, err = numericToInt64(balance)
	if err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}
	return &a, nil
}

func (r *pgAccounts) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, balance) VALUES ($1, $2, $3)`,
		account.ID, account.Name, int64ToNumeric(account.Balance))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *pgAccounts) Save(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, balance) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, balance = EXCLUDED.balance`,
		account.ID, account.Name, int64ToNumeric(account.Balance))
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// --- EntryRepository ---

type pgEntries struct{ pool *pgxpool.Pool }

const entryColumns = `id, account_id, type, amount, balance_before, balance_after, reference, metadata, created_at`

func (r *pgEntries) Insert(ctx context.Context, entry *domain.Entry) error {
	meta := entry.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, type, amount, balance_before, balance_after, reference, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.AccountID, string(entry.Type),
		int64ToNumeric(entry.Amount),
		int64ToNumeric(entry.BalanceBefore),
		int64ToNumeric(entry.BalanceAfter),
		entry.Reference, meta)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *pgEntries) FindByReference(ctx context.Context, accountID uuid.UUID, reference string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1 AND reference = $2`, accountID, reference)
	return scanEntry(row)
}

func (r *pgEntries) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntryValues(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	e, err := scanEntryValues(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func scanEntryValues(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	var amount, before, after pgtype.Numeric
	err := row.Scan(&e.ID, &e.AccountID, &e.Type, &amount, &before, &after,
		&e.Reference, &e.Metadata, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	if e.Amount, err = numericToInt64(amount); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if e.BalanceBefore, err = numericToInt64(before); err != nil {
		return nil, fmt.Errorf("convert balance_before: %w", err)
	}
	if e.BalanceAfter, err = numericToInt64(after); err != nil {
		return nil, fmt.Errorf("convert balance_after: %w", err)
	}
	return &e, nil
}

// --- OutboxRepository ---

type pgOutbox struct{ pool *pgxpool.Pool }

func (r *pgOutbox) Insert(ctx context.Context, draft domain.OutboxDraft) error {
	headers := draft.Headers
	if headers == nil {
		headers = json.RawMessage(`{}`)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_outbox
		  (event_id, aggregate_type, aggregate_id, event_type, partition_key, headers, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		draft.EventID, string(draft.AggregateType), draft.AggregateID,
		string(draft.EventType), draft.PartitionKey, headers, draft.Payload, draft.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *pgOutbox) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT seq_id, event_id, aggregate_type, aggregate_id, event_type, partition_key, headers, payload, occurred_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY seq_id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		err := rows.Scan(&row.SeqID, &row.EventID, &row.AggregateType, &row.AggregateID,
			&row.EventType, &row.PartitionKey, &row.Headers, &row.Payload, &row.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *pgOutbox) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE event_outbox SET published_at = now() WHERE seq_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
