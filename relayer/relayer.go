// Package relayer is the library facade: chain registration, order building,
// and the asynchronous execution entry points the transport layer calls.
// Long-running chain work (deployments, withdrawals) is detached from the
// caller's request so transports can acknowledge immediately; everything the
// background task does lands in the order store for later inspection.
package relayer

import (
	"context"
	"strings"
	"sync"

	"github.com/atomicport/relay-lib/chainmanager"
	"github.com/atomicport/relay-lib/chains"
	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/atomicport/relay-lib/orchestrator"
	"github.com/atomicport/relay-lib/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Relayer wires the resolver registry, the order store and the orchestrator
// into one entry point.
type Relayer struct {
	registry     types.ResolverRegistry
	orders       store.OrderStore
	orchestrator *orchestrator.Orchestrator
	logger       *logrus.Logger

	// background tracks detached execution tasks so Close can drain them.
	background sync.WaitGroup
}

// New creates a relayer over the given order store.
//
// Parameters:
// - orders: the order store of record.
// - config: the orchestrator tunables.
// - logger: the logger for logging events.
//
// Returns:
// - *Relayer: the new relayer instance.
func New(orders store.OrderStore, config orchestrator.Config, logger *logrus.Logger) *Relayer {
	registry := chainmanager.NewResolverRegistry(chains.NewResolverFactory(), logger)

	return &Relayer{
		registry:     registry,
		orders:       orders,
		orchestrator: orchestrator.New(registry, orders, config, logger),
		logger:       logger,
	}
}

// RegisterChain creates and registers a resolver for the given chain.
//
// Parameters:
// - ctx: the context for managing the registration.
// - config: the chain configuration.
//
// Returns:
// - error: an error if the resolver could not be created.
func (r *Relayer) RegisterChain(ctx context.Context, config *types.ChainConfig) error {
	if err := r.registry.Add(ctx, config); err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"chain":   config.Name,
		"chainId": config.ChainID,
		"type":    config.ChainType,
	}).Info("Chain registered")

	return nil
}

// SupportedChains returns the chain ids with a registered resolver, ascending.
func (r *Relayer) SupportedChains() []uint64 {
	return r.registry.ChainIDs()
}

// BuildSwap validates the intent and creates a new order awaiting the
// maker's signature.
//
// Parameters:
// - ctx: the context for managing the request.
// - intent: the user-submitted swap request.
//
// Returns:
// - *types.SigningPayload: the order hash plus the payload the maker signs.
// - error: ErrValidation or ErrUnsupportedChain on a rejected intent.
func (r *Relayer) BuildSwap(ctx context.Context, intent *types.UserIntent) (*types.SigningPayload, error) {
	payload, err := r.orchestrator.Build(ctx, intent)
	if err != nil {
		if errors.Is(err, relayerrors.ErrUnsupportedChain) {
			return nil, errors.Wrapf(err, "registered chains: %v", r.registry.ChainIDs())
		}
		return nil, err
	}
	return payload, nil
}

// SubmitSignatureAndExecute attaches the maker's signature and starts escrow
// deployment in the background. The signature is validated and recorded
// before the call returns; deployment progress lands in the order store.
//
// Parameters:
// - ctx: the context for the signature attachment.
// - orderHash: the order to execute.
// - signature: the maker's signature over the order's signing payload.
//
// Returns:
// - error: an error if the signature could not be attached.
func (r *Relayer) SubmitSignatureAndExecute(ctx context.Context, orderHash string, signature string) error {
	if err := r.orchestrator.AttachSignature(ctx, orderHash, signature); err != nil {
		return err
	}

	r.runDetached(orderHash, "execute", func(taskCtx context.Context) error {
		return r.orchestrator.Execute(taskCtx, orderHash)
	})

	return nil
}

// Reveal verifies the maker's secret synchronously and starts the paired
// withdrawals in the background. An invalid secret or a not-yet-deployed
// escrow is reported to the caller without any chain interaction.
//
// Parameters:
// - ctx: the context for the synchronous checks.
// - orderHash: the order being completed.
// - secret: the hex-encoded hash lock preimage.
//
// Returns:
// - error: ErrInvalidSecret, ErrEscrowNotDeployed, or a store error.
func (r *Relayer) Reveal(ctx context.Context, orderHash string, secret string) error {
	order, err := r.orders.Get(ctx, orderHash)
	if err != nil {
		return err
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

	r.runDetached(orderHash, "reveal", func(taskCtx context.Context) error {
		return r.orchestrator.RevealSecret(taskCtx, orderHash, secret)
	})

	return nil
}

// CancelSwap unwinds a swap whose secret never arrived. Runs synchronously:
// cancellations are operator-driven and the caller wants the outcome.
func (r *Relayer) CancelSwap(ctx context.Context, orderHash string) error {
	return r.orchestrator.Cancel(ctx, orderHash)
}

// GetOrder retrieves an order by hash.
func (r *Relayer) GetOrder(ctx context.Context, orderHash string) (*types.SwapOrder, error) {
	return r.orders.Get(ctx, orderHash)
}

// GetOrdersFor returns the maker's orders, newest first.
func (r *Relayer) GetOrdersFor(ctx context.Context, userAddress string) ([]*types.SwapOrder, error) {
	if strings.TrimSpace(userAddress) == "" {
		return nil, errors.Wrap(relayerrors.ErrValidation, "empty user address")
	}
	return r.orders.ListByUser(ctx, userAddress)
}

// Close waits for detached execution tasks to drain.
func (r *Relayer) Close() {
	r.background.Wait()
}

// runDetached runs fn on its own context so the work outlives the incoming
// request. Errors are logged; the order store carries the durable outcome.
func (r *Relayer) runDetached(orderHash, task string, fn func(context.Context) error) {
	r.background.Add(1)
	go func() {
		defer r.background.Done()

		if err := fn(context.Background()); err != nil {
			r.logger.WithFields(logrus.Fields{
				"orderHash": orderHash,
				"task":      task,
				"error":     err,
			}).Error("Background task failed")
		}
	}()
}
