package orchestrator

import (
	"context"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Execute deploys the order's escrows: source first, destination only after
// the source deployment confirmed. Each confirmed deployment is recorded
// before the next step starts, and already-recorded deployments are skipped,
// so Execute can be re-entered after a transient fault or a crash and picks
// up where the previous attempt stopped.
//
// Transient chain faults leave the order in its current state for resumption.
// On-chain reverts and escrow resolution failures are fatal: the order is
// marked failed with the cause and keeps all recorded progress.
//
// Parameters:
// - ctx: the context for managing the request.
// - orderHash: the signed order to execute.
//
// Returns:
// - error: nil once both escrows are recorded.
func (o *Orchestrator) Execute(ctx context.Context, orderHash string) error {
	unlock := o.locks.acquire(orderHash)
	defer unlock()

	order, err := o.orders.Get(ctx, orderHash)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return errors.Wrapf(relayerrors.ErrValidation, "order is %s", order.Status)
	}
	if order.Signature == "" {
		return errors.Wrap(relayerrors.ErrValidation, "order has no signature")
	}
	if order.Src.Escrow != "" && order.Dst.Escrow != "" {
		return nil
	}

	srcResolver, dstResolver, err := o.resolverPair(order.Intent.SrcChainID, order.Intent.DstChainID)
	if err != nil {
		return err
	}

	logger := o.logger.WithField("orderHash", orderHash)

	// The destination leg is funded from the resolver's own balance. Verify
	// the funding exists before locking the maker's funds on the source
	// chain, otherwise the maker waits out a cancellation window for a swap
	// that could never complete.
	if order.Dst.Escrow == "" {
		if err := o.checkDestinationFunding(ctx, order, dstResolver); err != nil {
			return err
		}
	}

	if order.Src.Escrow == "" {
		if err := o.deploySource(ctx, logger, order, srcResolver, dstResolver); err != nil {
			return err
		}
	}

	if order.Dst.Escrow == "" {
		if err := o.deployDestination(ctx, logger, order, srcResolver, dstResolver); err != nil {
			return err
		}
	}

	return nil
}

// checkDestinationFunding verifies the resolver holds enough of the
// destination asset to front the swap plus any native safety deposit.
func (o *Orchestrator) checkDestinationFunding(ctx context.Context, order *types.SwapOrder, dstResolver types.Resolver) error {
	config := dstResolver.GetConfig()
	amount, err := types.ScaleAmount(order.Intent.Amount, decimalsFor(config, order.Intent.DstToken))
	if err != nil {
		return errors.Wrapf(relayerrors.ErrValidation, "invalid amount: %v", err)
	}

	balance, err := dstResolver.GetTokenBalance(ctx, dstResolver.ResolverAddress(), order.Intent.DstToken)
	if err != nil {
		return errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to check resolver balance: %v", err)
	}

	if balance.Cmp(amount) < 0 {
		reason := errors.Errorf("insufficient resolver balance on chain %d: have %s, need %s",
			order.Intent.DstChainID, balance, amount)
		if markErr := o.orders.MarkFailed(ctx, order.OrderHash, reason.Error()); markErr != nil {
			return markErr
		}
		return reason
	}

	return nil
}

// deploySource deploys and records the maker-funded source escrow.
func (o *Orchestrator) deploySource(ctx context.Context, logger *logrus.Entry, order *types.SwapOrder, srcResolver, dstResolver types.Resolver) error {
	immutables, err := o.buildImmutables(order, htlc.SideSource, srcResolver, dstResolver)
	if err != nil {
		return err
	}

	var result *types.DeployResult
	err = o.withRetry(ctx, logger, "deploy source escrow", func() error {
		var deployErr error
		result, deployErr = srcResolver.DeploySource(ctx, immutables, order.Signature)
		return deployErr
	})
	if err != nil {
		return o.failUnlessTransient(ctx, logger, order.OrderHash, "source escrow deployment failed", err)
	}

	if err := o.orders.SetEscrow(ctx, order.OrderHash, htlc.SideSource, result.Escrow, result.Tx.Hash, result.DeployedAt); err != nil {
		return err
	}
	if err := o.orders.SetStatus(ctx, order.OrderHash, types.StatusSrcDeployed); err != nil {
		return err
	}

	order.Src.Escrow = result.Escrow
	order.Src.DeployedAt = result.DeployedAt

	logger.WithFields(logrus.Fields{
		"escrow": result.Escrow,
		"txHash": result.Tx.Hash,
	}).Info("Source escrow deployed")

	return nil
}

// deployDestination deploys and records the resolver-funded destination escrow.
func (o *Orchestrator) deployDestination(ctx context.Context, logger *logrus.Entry, order *types.SwapOrder, srcResolver, dstResolver types.Resolver) error {
	immutables, err := o.buildImmutables(order, htlc.SideDestination, srcResolver, dstResolver)
	if err != nil {
		return err
	}

	var result *types.DeployResult
	err = o.withRetry(ctx, logger, "deploy destination escrow", func() error {
		var deployErr error
		result, deployErr = dstResolver.DeployDestination(ctx, immutables)
		return deployErr
	})
	if err != nil {
		return o.failUnlessTransient(ctx, logger, order.OrderHash, "destination escrow deployment failed", err)
	}

	if err := o.orders.SetEscrow(ctx, order.OrderHash, htlc.SideDestination, result.Escrow, result.Tx.Hash, result.DeployedAt); err != nil {
		return err
	}
	if err := o.orders.SetStatus(ctx, order.OrderHash, types.StatusDstDeployed); err != nil {
		return err
	}

	order.Dst.Escrow = result.Escrow
	order.Dst.DeployedAt = result.DeployedAt

	logger.WithFields(logrus.Fields{
		"escrow": result.Escrow,
		"txHash": result.Tx.Hash,
	}).Info("Destination escrow deployed")

	return nil
}

// failUnlessTransient marks the order failed for fatal chain errors and
// leaves it untouched for transient ones, so an interrupted execution stays
// resumable.
func (o *Orchestrator) failUnlessTransient(ctx context.Context, logger *logrus.Entry, orderHash, message string, err error) error {
	wrapped := errors.Wrap(err, message)

	if errors.Is(err, relayerrors.ErrChainUnavailable) {
		logger.WithField("error", err).Warn("Chain unavailable, order left resumable")
		return wrapped
	}

	if markErr := o.orders.MarkFailed(ctx, orderHash, wrapped.Error()); markErr != nil {
		logger.WithField("error", markErr).Error("Failed to record order failure")
	}
	return wrapped
}
