package store

import (
	"context"
	"database/sql"
	"encoding/json"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// postgresStore is the Postgres-backed OrderStore implementation. The full
// order record is kept as a jsonb document keyed by order hash; field setters
// are expressed as conditional jsonb updates so they stay first-write-wins
// even under concurrent writers.
type postgresStore struct {
	dbConnStr string
}

// NewPostgresStore creates a Postgres-backed order store with the provided
// connection string and ensures the swap_order table exists.
//
// Parameters:
// - ctx: the context for managing the schema check.
// - connStr: the database connection string.
//
// Returns:
// - OrderStore: the new store instance.
// - error: an error if the database is unreachable or schema creation fails.
func NewPostgresStore(ctx context.Context, connStr string) (OrderStore, error) {
	s := &postgresStore{dbConnStr: connStr}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
       CREATE TABLE IF NOT EXISTS swap_order (
           order_hash   TEXT PRIMARY KEY,
           user_address TEXT NOT NULL,
           record       JSONB NOT NULL,
           created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
           updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
       );
       CREATE INDEX IF NOT EXISTS swap_order_user_idx ON swap_order (user_address, created_at DESC)`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to ensure swap_order schema")
	}

	return s, nil
}

func (s *postgresStore) Create(ctx context.Context, order *types.SwapOrder) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	record, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order record")
	}

	result, err := db.ExecContext(ctx, `
       INSERT INTO swap_order (order_hash, user_address, record)
       VALUES (lower($1), lower($2), $3)
       ON CONFLICT (order_hash) DO NOTHING`,
		order.OrderHash,
		order.Intent.UserAddress,
		record,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read rows affected")
	}
	if inserted == 0 {
		return relayerrors.ErrDuplicateOrder
	}

	return nil
}

func (s *postgresStore) Get(ctx context.Context, orderHash string) (*types.SwapOrder, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	var record []byte
	err = db.QueryRowContext(ctx,
		`SELECT record FROM swap_order WHERE order_hash = lower($1)`,
		orderHash,
	).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, relayerrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query order")
	}

	var order types.SwapOrder
	if err := json.Unmarshal(record, &order); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal order record")
	}

	return &order, nil
}

func (s *postgresStore) ListByUser(ctx context.Context, userAddress string) ([]*types.SwapOrder, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
       SELECT record FROM swap_order
       WHERE user_address = lower($1)
       ORDER BY created_at DESC`,
		userAddress,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query orders")
	}
	defer rows.Close()

	var orders []*types.SwapOrder
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, errors.Wrap(err, "failed to scan order record")
		}

		var order types.SwapOrder
		if err := json.Unmarshal(record, &order); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal order record")
		}
		orders = append(orders, &order)
	}

	return orders, rows.Err()
}

func (s *postgresStore) SetSignature(ctx context.Context, orderHash string, signature string) error {
	return s.setField(ctx, orderHash, "{signature}", signature)
}

func (s *postgresStore) SetSecret(ctx context.Context, orderHash string, secret string) error {
	return s.setField(ctx, orderHash, "{secret}", secret)
}

func (s *postgresStore) SetEscrow(ctx context.Context, orderHash string, side htlc.Side, escrow, deployTx string, deployedAt uint64) error {
	payload, err := json.Marshal(types.EscrowSide{
		Escrow:     escrow,
		DeployTx:   deployTx,
		DeployedAt: deployedAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal escrow side")
	}

	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	// Merge so a concurrently recorded withdraw reference is never clobbered;
	// the escrow reference itself is first write wins.
	result, err := db.ExecContext(ctx, `
       UPDATE swap_order
       SET record = jsonb_set(record, $2::text[], (record #> $2::text[]) || $3::jsonb),
           updated_at = now()
       WHERE order_hash = lower($1)
         AND COALESCE((record #> $2::text[]) ->> 'escrow', '') = ''`,
		orderHash, sidePath(side), payload,
	)
	if err != nil {
		return errors.Wrap(err, "failed to set escrow reference")
	}

	return s.requireOrderExists(ctx, db, orderHash, result)
}

func (s *postgresStore) SetWithdrawTx(ctx context.Context, orderHash string, side htlc.Side, txHash string) error {
	return s.setField(ctx, orderHash, sideFieldPath(side, "withdrawTx"), txHash)
}

func (s *postgresStore) SetCancelTx(ctx context.Context, orderHash string, side htlc.Side, txHash string) error {
	return s.setField(ctx, orderHash, sideFieldPath(side, "cancelTx"), txHash)
}

func (s *postgresStore) SetStatus(ctx context.Context, orderHash string, status types.OrderStatus) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	// Completion also stamps executedAt, matching the in-memory store.
	result, err := db.ExecContext(ctx, `
       UPDATE swap_order
       SET record = CASE
               WHEN $2::text = 'COMPLETED' AND COALESCE(record ->> 'executedAt', '') = ''
               THEN jsonb_set(jsonb_set(record, '{status}', to_jsonb($2::text)), '{executedAt}', to_jsonb(now()))
               ELSE jsonb_set(record, '{status}', to_jsonb($2::text))
           END,
           updated_at = now()
       WHERE order_hash = lower($1)
         AND record ->> 'status' NOT IN ('COMPLETED', 'CANCELLED', 'FAILED')`,
		orderHash, string(status),
	)
	if err != nil {
		return errors.Wrap(err, "failed to set order status")
	}

	return s.requireOrderExists(ctx, db, orderHash, result)
}

func (s *postgresStore) MarkFailed(ctx context.Context, orderHash string, reason string) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	result, err := db.ExecContext(ctx, `
       UPDATE swap_order
       SET record = jsonb_set(jsonb_set(record, '{status}', '"FAILED"'), '{failureReason}', to_jsonb($2::text)),
           updated_at = now()
       WHERE order_hash = lower($1)
         AND record ->> 'status' NOT IN ('COMPLETED', 'CANCELLED', 'FAILED')`,
		orderHash, reason,
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark order failed")
	}

	return s.requireOrderExists(ctx, db, orderHash, result)
}

// setField writes a single scalar field only when it is currently empty.
func (s *postgresStore) setField(ctx context.Context, orderHash string, path string, value string) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	result, err := db.ExecContext(ctx, `
       UPDATE swap_order
       SET record = jsonb_set(record, $2::text[], to_jsonb($3::text)),
           updated_at = now()
       WHERE order_hash = lower($1)
         AND COALESCE(record #>> $2::text[], '') = ''`,
		orderHash, path, value,
	)
	if err != nil {
		return errors.Wrap(err, "failed to set order field")
	}

	return s.requireOrderExists(ctx, db, orderHash, result)
}

// requireOrderExists distinguishes "no-op because already set" from
// "unknown order": only the latter is an error.
func (s *postgresStore) requireOrderExists(ctx context.Context, db *sql.DB, orderHash string, result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read rows affected")
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	err = db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM swap_order WHERE order_hash = lower($1))`,
		orderHash,
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "failed to check order existence")
	}
	if !exists {
		return relayerrors.ErrOrderNotFound
	}

	return nil
}

func sidePath(side htlc.Side) string {
	if side == htlc.SideDestination {
		return "{dst}"
	}
	return "{src}"
}

func sideFieldPath(side htlc.Side, field string) string {
	if side == htlc.SideDestination {
		return "{dst," + field + "}"
	}
	return "{src," + field + "}"
}
