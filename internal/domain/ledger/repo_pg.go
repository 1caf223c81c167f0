package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediguard/mediguard/internal/platform/db"
)

// appendLockKey is the advisory lock key serializing chain appends. All
// writers take this transaction-scoped lock before reading the tip, so two
// concurrent appends can never both link to the same predecessor.
const appendLockKey = 0x6d656447 // "medG"

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type ledgerRepoPG struct{ pool *pgxpool.Pool }

func NewLedgerRepoPG(pool *pgxpool.Pool) Repository {
	return &ledgerRepoPG{pool: pool}
}

func (r *ledgerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const txCols = `id, transaction_hash, actor_id, action_type, resource_type,
	resource_id, metadata, previous_hash, timestamp`

func scanTx(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.TransactionHash, &t.ActorID, &t.ActionType,
		&t.ResourceType, &t.ResourceID, &t.Metadata, &t.PreviousHash, &t.Timestamp)
	return &t, err
}

func (r *ledgerRepoPG) AppendLinked(ctx context.Context, build BuildFunc) (*Transaction, error) {
	// Reuse the caller's transaction when one is on the context, so a state
	// mutation and its ledger entry commit or roll back together.
	if tx := db.TxFromContext(ctx); tx != nil {
		return r.appendLinked(ctx, tx, build)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := r.appendLinked(ctx, tx, build)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *ledgerRepoPG) appendLinked(ctx context.Context, tx pgx.Tx, build BuildFunc) (*Transaction, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		return nil, err
	}

	previousHash := GenesisHash
	err := tx.QueryRow(ctx, `
		SELECT transaction_hash FROM ledger_transactions
		ORDER BY timestamp DESC, id DESC LIMIT 1`).Scan(&previousHash)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	t, err := build(previousHash, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	t.ID = uuid.New()

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_transactions (id, transaction_hash, actor_id,
			action_type, resource_type, resource_id, metadata, previous_hash, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.TransactionHash, t.ActorID, t.ActionType, t.ResourceType,
		t.ResourceID, t.Metadata, t.PreviousHash, t.Timestamp)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *ledgerRepoPG) ListAsc(ctx context.Context) ([]*Transaction, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+txCols+` FROM ledger_transactions ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *ledgerRepoPG) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ledger_transactions WHERE actor_id = $1`, actorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+txCols+` FROM ledger_transactions
		WHERE actor_id = $1 ORDER BY timestamp DESC, id DESC LIMIT $2 OFFSET $3`,
		actorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *ledgerRepoPG) ListByResource(ctx context.Context, resourceID string) ([]*Transaction, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+txCols+` FROM ledger_transactions
		WHERE resource_id = $1 ORDER BY timestamp ASC, id ASC`, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *ledgerRepoPG) CountByActor(ctx context.Context, actorID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ledger_transactions WHERE actor_id = $1`, actorID).Scan(&n)
	return n, err
}
