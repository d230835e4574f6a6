// Package orchestrator drives a swap order through its lifecycle: build,
// signature attachment, escrow deployments, secret reveal with paired
// withdrawals, and cancellation. Every step records its outcome in the
// order store before moving on, so a crashed or interrupted run can be
// re-entered and resumes exactly where it stopped.
package orchestrator

import (
	"context"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/atomicport/relay-lib/orderid"
	"github.com/atomicport/relay-lib/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultRetryAttempts bounds transient-fault retries per chain call.
	defaultRetryAttempts = 3
	// defaultRetryDelay is the pause between transient-fault retries.
	defaultRetryDelay = 5 * time.Second
	// defaultMaxWindowWait bounds how long a reveal blocks waiting for the
	// withdrawal window to open before giving up.
	defaultMaxWindowWait = 2 * time.Minute
	// windowPollInterval is the cadence of window-open checks while waiting.
	windowPollInterval = time.Second
)

// Config holds the orchestrator tunables.
//
// Fields:
// - TimeLocks: the validated window durations applied to every order.
// - RetryAttempts: transient-fault retries per chain call (default 3).
// - RetryDelay: pause between retries (default 5s).
// - MaxWindowWait: the longest a reveal blocks for the withdrawal window to
//   open; reveals whose window opens later fail with ErrWithdrawalNotOpen.
type Config struct {
	TimeLocks     htlc.TimeLocks
	RetryAttempts int
	RetryDelay    time.Duration
	MaxWindowWait time.Duration
}

// Orchestrator coordinates chain adapters and the order store to move swap
// orders through the state machine. Operations on the same order hash are
// serialized; distinct orders progress concurrently.
type Orchestrator struct {
	registry types.ResolverRegistry
	orders   store.OrderStore
	logger   *logrus.Logger

	timelocks     htlc.TimeLocks
	retryAttempts int
	retryDelay    time.Duration
	maxWindowWait time.Duration

	locks *orderLocks
	now   func() time.Time
}

// New creates an orchestrator over the given resolver registry and order store.
//
// Parameters:
// - registry: the per-chain resolver registry.
// - orders: the order store of record.
// - config: the orchestrator tunables; TimeLocks must already be validated.
// - logger: the logger for logging events.
//
// Returns:
// - *Orchestrator: the new orchestrator instance.
func New(registry types.ResolverRegistry, orders store.OrderStore, config Config, logger *logrus.Logger) *Orchestrator {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = defaultRetryAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaultRetryDelay
	}
	if config.MaxWindowWait < 0 {
		config.MaxWindowWait = defaultMaxWindowWait
	}

	return &Orchestrator{
		registry:      registry,
		orders:        orders,
		logger:        logger,
		timelocks:     config.TimeLocks,
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		maxWindowWait: config.MaxWindowWait,
		locks:         newOrderLocks(),
		now:           time.Now,
	}
}

// Build validates a swap intent, derives its order identity and persists a
// new order awaiting the maker's signature. Identity is nonce-randomized:
// building the same intent twice yields two distinct orders.
//
// Parameters:
// - ctx: the context for managing the request.
// - intent: the user-submitted swap request.
//
// Returns:
// - *types.SigningPayload: the order hash plus the payload the maker signs.
// - error: ErrValidation or ErrUnsupportedChain on a rejected intent.
func (o *Orchestrator) Build(ctx context.Context, intent *types.UserIntent) (*types.SigningPayload, error) {
	srcResolver, dstResolver, err := o.resolverPair(intent.SrcChainID, intent.DstChainID)
	if err != nil {
		return nil, err
	}

	if err := o.validateIntent(intent, srcResolver, dstResolver); err != nil {
		return nil, err
	}

	srcConfig := srcResolver.GetConfig()
	identity, err := orderid.Compute(intent, orderid.NewSalt(), srcConfig.ChainType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive order identity")
	}

	order := &types.SwapOrder{
		OrderHash: identity.Hash,
		Intent:    *intent,
		Salt:      identity.Salt,
		Status:    types.StatusBuilt,
		CreatedAt: o.now().UTC(),
	}

	if err := o.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	payload := identity.SigningPayload
	if builder, ok := srcResolver.(types.PayloadBuilder); ok && srcConfig.ChainType == types.SUI {
		immutables, err := o.buildImmutables(order, htlc.SideSource, srcResolver, dstResolver)
		if err != nil {
			return nil, err
		}
		built, err := builder.BuildSigningPayload(ctx, immutables)
		switch {
		case err == nil:
			payload = built
		case errors.Is(err, relayerrors.ErrNotImplemented):
			// Fall back to the canonical order JSON.
		default:
			return nil, err
		}
	}

	o.logger.WithFields(logrus.Fields{
		"orderHash": identity.Hash,
		"srcChain":  intent.SrcChainID,
		"dstChain":  intent.DstChainID,
	}).Info("Order built")

	return &types.SigningPayload{
		OrderHash: identity.Hash,
		ChainType: srcConfig.ChainType,
		Payload:   payload,
	}, nil
}

// AttachSignature records the maker's signature and marks the order signed.
// Attaching the same signature again is a no-op; a different signature for
// an already-signed order is rejected.
//
// Parameters:
// - ctx: the context for managing the request.
// - orderHash: the order to sign.
// - signature: the maker's signature over the order's signing payload.
//
// Returns:
// - error: ErrOrderNotFound, ErrValidation, or a store error.
func (o *Orchestrator) AttachSignature(ctx context.Context, orderHash string, signature string) error {
	if signature == "" {
		return errors.Wrap(relayerrors.ErrValidation, "empty signature")
	}

	unlock := o.locks.acquire(orderHash)
	defer unlock()

	order, err := o.orders.Get(ctx, orderHash)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return errors.Wrapf(relayerrors.ErrValidation, "order is %s", order.Status)
	}
	if order.Signature != "" && order.Signature != signature {
		return errors.Wrap(relayerrors.ErrValidation, "order already signed with a different signature")
	}

	if err := o.orders.SetSignature(ctx, orderHash, signature); err != nil {
		return err
	}
	if order.Status == types.StatusBuilt {
		if err := o.orders.SetStatus(ctx, orderHash, types.StatusSigned); err != nil {
			return err
		}
	}

	o.logger.WithField("orderHash", orderHash).Info("Order signature attached")
	return nil
}

// resolverPair fetches the resolvers for both legs of a swap.
func (o *Orchestrator) resolverPair(srcChainID, dstChainID uint64) (types.Resolver, types.Resolver, error) {
	srcResolver := o.registry.Get(srcChainID)
	if srcResolver == nil {
		return nil, nil, errors.Wrapf(relayerrors.ErrUnsupportedChain, "source chain %d", srcChainID)
	}
	dstResolver := o.registry.Get(dstChainID)
	if dstResolver == nil {
		return nil, nil, errors.Wrapf(relayerrors.ErrUnsupportedChain, "destination chain %d", dstChainID)
	}
	return srcResolver, dstResolver, nil
}

// validateIntent rejects malformed intents before any state is created.
func (o *Orchestrator) validateIntent(intent *types.UserIntent, srcResolver, dstResolver types.Resolver) error {
	if intent.SrcChainID == intent.DstChainID {
		return errors.Wrap(relayerrors.ErrValidation, "source and destination chains must differ")
	}
	if !srcResolver.ValidateAddress(intent.UserAddress) {
		return errors.Wrapf(relayerrors.ErrValidation, "invalid user address %q for source chain", intent.UserAddress)
	}
	if !dstResolver.ValidateAddress(intent.Receiver) {
		return errors.Wrapf(relayerrors.ErrValidation, "invalid receiver address %q for destination chain", intent.Receiver)
	}

	if _, err := htlc.ParseHashLock(intent.HashLock); err != nil {
		return errors.Wrapf(relayerrors.ErrValidation, "invalid hash lock: %v", err)
	}

	srcAmount, err := types.ScaleAmount(intent.Amount, decimalsFor(srcResolver.GetConfig(), intent.SrcToken))
	if err != nil {
		return errors.Wrapf(relayerrors.ErrValidation, "invalid amount: %v", err)
	}
	if srcAmount.Sign() <= 0 {
		return errors.Wrap(relayerrors.ErrValidation, "amount must be positive")
	}
	if _, err := types.ScaleAmount(intent.Amount, decimalsFor(dstResolver.GetConfig(), intent.DstToken)); err != nil {
		return errors.Wrapf(relayerrors.ErrValidation, "invalid amount: %v", err)
	}

	return nil
}
