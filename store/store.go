// Package store persists swap orders keyed by order hash with a secondary
// index by maker address. Field setters are append-only and idempotent:
// setting the same value twice is a no-op and an already-set field is never
// overwritten, so retried orchestration steps never corrupt state.
package store

import (
	"context"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
)

// OrderStore is the single shared mutable resource of the relay. Every
// mutation is keyed by order hash and safe under concurrent access from
// multiple in-flight order tasks.
type OrderStore interface {
	// Create persists a new order in BUILT state.
	//
	// Returns:
	// - error: ErrDuplicateOrder if the hash is already present.
	Create(ctx context.Context, order *types.SwapOrder) error

	// Get retrieves an order by hash.
	//
	// Returns:
	// - *types.SwapOrder: a copy of the order of record.
	// - error: ErrOrderNotFound if the hash is unknown.
	Get(ctx context.Context, orderHash string) (*types.SwapOrder, error)

	// ListByUser returns all orders created by the given maker address,
	// sorted newest first.
	ListByUser(ctx context.Context, userAddress string) ([]*types.SwapOrder, error)

	// SetSignature attaches the maker's signature. First write wins.
	SetSignature(ctx context.Context, orderHash string, signature string) error

	// SetSecret records the revealed secret. First write wins.
	SetSecret(ctx context.Context, orderHash string, secret string) error

	// SetEscrow records a confirmed escrow deployment for one side.
	// First write wins per side.
	SetEscrow(ctx context.Context, orderHash string, side htlc.Side, escrow, deployTx string, deployedAt uint64) error

	// SetWithdrawTx records a confirmed withdrawal for one side. First write wins.
	SetWithdrawTx(ctx context.Context, orderHash string, side htlc.Side, txHash string) error

	// SetCancelTx records a confirmed cancellation for one side. First write wins.
	SetCancelTx(ctx context.Context, orderHash string, side htlc.Side, txHash string) error

	// SetStatus transitions the order status. Transitions out of a terminal
	// status are ignored.
	SetStatus(ctx context.Context, orderHash string, status types.OrderStatus) error

	// MarkFailed sets the FAILED status with a recorded cause. Previously
	// recorded transaction references are preserved.
	MarkFailed(ctx context.Context, orderHash string, reason string) error
}
