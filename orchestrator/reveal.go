package orchestrator

import (
	"context"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RevealSecret verifies the maker's secret against the order's hash lock and
// runs the paired withdrawals: destination first, source second. The secret
// becomes public the moment the destination withdrawal lands, so the source
// withdrawal must never come first. A source withdrawal failure after the
// destination succeeded surfaces as ErrPartialWithdrawal and is safe to
// retry for as long as the source cancellation window allows.
//
// The secret is validated and both escrows are checked before any chain
// interaction; an invalid secret or a missing escrow costs no transaction.
//
// Parameters:
// - ctx: the context for managing the request.
// - orderHash: the order being completed.
// - secret: the hex-encoded hash lock preimage.
//
// Returns:
// - error: nil once both withdrawals are recorded.
func (o *Orchestrator) RevealSecret(ctx context.Context, orderHash string, secret string) error {
	unlock := o.locks.acquire(orderHash)
	defer unlock()

	order, err := o.orders.Get(ctx, orderHash)
	if err != nil {
		return err
	}
	if order.Status == types.StatusCompleted {
		return nil
	}
	if order.Status.Terminal() {
		return errors.Wrapf(relayerrors.ErrValidation, "order is %s", order.Status)
	}

	secretBytes, err := htlc.ParseSecret(secret)
	if err != nil {
		return errors.Wrapf(relayerrors.ErrInvalidSecret, "%v", err)
	}
	hashLock, err := htlc.ParseHashLock(order.Intent.HashLock)
	if err != nil {
		return errors.Wrapf(relayerrors.ErrValidation, "invalid hash lock: %v", err)
	}
	if !hashLock.Verify(secretBytes) {
		return relayerrors.ErrInvalidSecret
	}

	if order.Src.Escrow == "" || order.Dst.Escrow == "" {
		return errors.Wrap(relayerrors.ErrEscrowNotDeployed, "both escrows must confirm before reveal")
	}

	srcResolver, dstResolver, err := o.resolverPair(order.Intent.SrcChainID, order.Intent.DstChainID)
	if err != nil {
		return err
	}

	logger := o.logger.WithField("orderHash", orderHash)

	if err := o.orders.SetSecret(ctx, orderHash, secret); err != nil {
		return err
	}
	if order.Status != types.StatusDstWithdrawn {
		if err := o.orders.SetStatus(ctx, orderHash, types.StatusSecretRevealed); err != nil {
			return err
		}
	}

	if order.Dst.WithdrawTx == "" {
		if err := o.withdrawDestination(ctx, logger, order, secretBytes, srcResolver, dstResolver); err != nil {
			return err
		}
	}

	if order.Src.WithdrawTx == "" {
		if err := o.withdrawSource(ctx, logger, order, secretBytes, srcResolver, dstResolver); err != nil {
			return err
		}
	}

	return o.orders.SetStatus(ctx, orderHash, types.StatusCompleted)
}

// withdrawDestination releases the resolver's fronted funds to the receiver.
func (o *Orchestrator) withdrawDestination(ctx context.Context, logger *logrus.Entry, order *types.SwapOrder, secret []byte, srcResolver, dstResolver types.Resolver) error {
	immutables, err := o.buildImmutables(order, htlc.SideDestination, srcResolver, dstResolver)
	if err != nil {
		return err
	}

	if err := o.waitForWindow(ctx, immutables.Windows().WithdrawalAt); err != nil {
		return errors.Wrap(err, "destination withdrawal")
	}

	var tx *types.Transaction
	err = o.withRetry(ctx, logger, "withdraw destination escrow", func() error {
		var withdrawErr error
		tx, withdrawErr = dstResolver.WithdrawDestination(ctx, order.Dst.Escrow, secret, immutables)
		return withdrawErr
	})
	if err != nil {
		return errors.Wrap(err, "destination withdrawal failed")
	}

	if err := o.orders.SetWithdrawTx(ctx, order.OrderHash, htlc.SideDestination, tx.Hash); err != nil {
		return err
	}
	if err := o.orders.SetStatus(ctx, order.OrderHash, types.StatusDstWithdrawn); err != nil {
		return err
	}

	order.Dst.WithdrawTx = tx.Hash

	logger.WithField("txHash", tx.Hash).Info("Destination escrow withdrawn")
	return nil
}

// withdrawSource collects the maker's locked funds for the resolver. Called
// only after the destination withdrawal is recorded; failures surface as
// ErrPartialWithdrawal because the swap is already half-settled.
func (o *Orchestrator) withdrawSource(ctx context.Context, logger *logrus.Entry, order *types.SwapOrder, secret []byte, srcResolver, dstResolver types.Resolver) error {
	immutables, err := o.buildImmutables(order, htlc.SideSource, srcResolver, dstResolver)
	if err != nil {
		return err
	}

	if err := o.waitForWindow(ctx, immutables.Windows().WithdrawalAt); err != nil {
		return errors.Wrapf(relayerrors.ErrPartialWithdrawal, "source withdrawal: %v", err)
	}

	var tx *types.Transaction
	err = o.withRetry(ctx, logger, "withdraw source escrow", func() error {
		var withdrawErr error
		tx, withdrawErr = srcResolver.WithdrawSource(ctx, order.Src.Escrow, secret, immutables)
		return withdrawErr
	})
	if err != nil {
		logger.WithField("error", err).Error("Source withdrawal failed after destination withdrawal")
		return errors.Wrapf(relayerrors.ErrPartialWithdrawal, "%v", err)
	}

	if err := o.orders.SetWithdrawTx(ctx, order.OrderHash, htlc.SideSource, tx.Hash); err != nil {
		return err
	}

	logger.WithField("txHash", tx.Hash).Info("Source escrow withdrawn")
	return nil
}

// waitForWindow blocks until the given unix timestamp passes. Windows that
// open further out than the configured wait bound fail immediately with
// ErrWithdrawalNotOpen instead of holding the caller.
func (o *Orchestrator) waitForWindow(ctx context.Context, openAt uint64) error {
	now := uint64(o.now().Unix())
	if now >= openAt {
		return nil
	}
	if openAt-now > uint64(o.maxWindowWait/time.Second) {
		return errors.Wrapf(relayerrors.ErrWithdrawalNotOpen, "window opens in %ds", openAt-now)
	}

	ticker := time.NewTicker(windowPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if uint64(o.now().Unix()) >= openAt {
				return nil
			}
		}
	}
}
