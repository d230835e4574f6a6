package orchestrator

import (
	"context"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Cancel unwinds a swap whose secret never arrived: the destination escrow
// returns the resolver's fronted funds, then the source escrow returns the
// maker's. Each leg requires its own cancellation window to be open and is
// skipped when it was never deployed or is already cancelled, so Cancel can
// be re-entered until both legs are recorded.
//
// Cancelling a failed order recovers its escrows without resurrecting it;
// the FAILED status and cause stay on record.
//
// Parameters:
// - ctx: the context for managing the request.
// - orderHash: the order to unwind.
//
// Returns:
// - error: nil once every deployed leg has a recorded cancellation.
func (o *Orchestrator) Cancel(ctx context.Context, orderHash string) error {
	unlock := o.locks.acquire(orderHash)
	defer unlock()

	order, err := o.orders.Get(ctx, orderHash)
	if err != nil {
		return err
	}
	if order.Status == types.StatusCancelled {
		return nil
	}
	if order.Status == types.StatusCompleted {
		return errors.Wrap(relayerrors.ErrValidation, "order is completed")
	}
	if order.Src.Escrow == "" && order.Dst.Escrow == "" {
		return errors.Wrap(relayerrors.ErrValidation, "order has no deployed escrows")
	}

	srcResolver, dstResolver, err := o.resolverPair(order.Intent.SrcChainID, order.Intent.DstChainID)
	if err != nil {
		return err
	}

	logger := o.logger.WithField("orderHash", orderHash)

	if order.Dst.Escrow != "" && order.Dst.CancelTx == "" && order.Dst.WithdrawTx == "" {
		if err := o.cancelSide(ctx, logger, order, htlc.SideDestination, srcResolver, dstResolver); err != nil {
			return err
		}
	}

	if order.Src.Escrow != "" && order.Src.CancelTx == "" && order.Src.WithdrawTx == "" {
		if err := o.cancelSide(ctx, logger, order, htlc.SideSource, srcResolver, dstResolver); err != nil {
			return err
		}
	}

	return o.orders.SetStatus(ctx, orderHash, types.StatusCancelled)
}

// cancelSide cancels one deployed escrow once its cancellation window opens.
func (o *Orchestrator) cancelSide(ctx context.Context, logger *logrus.Entry, order *types.SwapOrder, side htlc.Side, srcResolver, dstResolver types.Resolver) error {
	immutables, err := o.buildImmutables(order, side, srcResolver, dstResolver)
	if err != nil {
		return err
	}

	windows := immutables.Windows()
	if uint64(o.now().Unix()) < windows.CancellationAt {
		return errors.Wrapf(relayerrors.ErrCancellationNotOpen,
			"%s cancellation opens at %d", side, windows.CancellationAt)
	}

	var (
		escrow   string
		resolver types.Resolver
		cancel   func(context.Context, string, *htlc.Immutables) (*types.Transaction, error)
	)
	if side == htlc.SideDestination {
		escrow = order.Dst.Escrow
		resolver = dstResolver
		cancel = resolver.CancelDestination
	} else {
		escrow = order.Src.Escrow
		resolver = srcResolver
		cancel = resolver.CancelSource
	}

	var tx *types.Transaction
	err = o.withRetry(ctx, logger, "cancel escrow", func() error {
		var cancelErr error
		tx, cancelErr = cancel(ctx, escrow, immutables)
		return cancelErr
	})
	if err != nil {
		return errors.Wrapf(err, "%s cancellation failed", side)
	}

	if err := o.orders.SetCancelTx(ctx, order.OrderHash, side, tx.Hash); err != nil {
		return err
	}

	if side == htlc.SideDestination {
		order.Dst.CancelTx = tx.Hash
	} else {
		order.Src.CancelTx = tx.Hash
	}

	logger.WithFields(logrus.Fields{
		"side":   side,
		"txHash": tx.Hash,
	}).Info("Escrow cancelled")

	return nil
}
