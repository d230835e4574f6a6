package chainmanager

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
)

// Resolver implements types.Resolver with thread-safe access to its
// capability implementations. Each dependency is protected by a read-write
// mutex; a missing capability surfaces as ErrNotImplemented rather than a
// nil dereference.
type Resolver struct {
	config      *types.ChainConfig        // Chain configuration.
	srcDeployer types.SourceDeployer      // Source escrow deployer implementation.
	dstDeployer types.DestinationDeployer // Destination escrow deployer implementation.
	withdrawer  types.Withdrawer          // Withdrawer implementation.
	canceller   types.Canceller           // Canceller implementation.
	provider    types.BalanceProvider     // Balance provider implementation.
	validator   AddressValidator          // Address format validator.

	payloadBuilder types.PayloadBuilder // Optional signing payload builder.

	// Mutexes for thread-safe access to dependencies.
	srcDeployerMutex    sync.RWMutex
	dstDeployerMutex    sync.RWMutex
	withdrawerMutex     sync.RWMutex
	cancellerMutex      sync.RWMutex
	providerMutex       sync.RWMutex
	payloadBuilderMutex sync.RWMutex
}

// NewResolver creates a new composite Resolver instance.
//
// Parameters:
// - config: the chain configuration.
// - srcDeployer: the source escrow deployer implementation.
// - dstDeployer: the destination escrow deployer implementation.
// - withdrawer: the withdrawer implementation.
// - canceller: the canceller implementation.
// - provider: the balance provider implementation.
// - validator: the address format validator.
//
// Returns:
// - *Resolver: a new Resolver instance.
func NewResolver(
	config *types.ChainConfig,
	srcDeployer types.SourceDeployer,
	dstDeployer types.DestinationDeployer,
	withdrawer types.Withdrawer,
	canceller types.Canceller,
	provider types.BalanceProvider,
	validator AddressValidator,
) *Resolver {
	return &Resolver{
		config:      config,
		srcDeployer: srcDeployer,
		dstDeployer: dstDeployer,
		withdrawer:  withdrawer,
		canceller:   canceller,
		provider:    provider,
		validator:   validator,
	}
}

// DeploySource deploys the source escrow with thread-safe access to the deployer.
func (r *Resolver) DeploySource(ctx context.Context, immutables *htlc.Immutables, signature string) (*types.DeployResult, error) {
	r.srcDeployerMutex.RLock()
	deployer := r.srcDeployer
	r.srcDeployerMutex.RUnlock()

	if deployer == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return deployer.DeploySource(ctx, immutables, signature)
}

// DeployDestination deploys the destination escrow with thread-safe access to the deployer.
func (r *Resolver) DeployDestination(ctx context.Context, immutables *htlc.Immutables) (*types.DeployResult, error) {
	r.dstDeployerMutex.RLock()
	deployer := r.dstDeployer
	r.dstDeployerMutex.RUnlock()

	if deployer == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return deployer.DeployDestination(ctx, immutables)
}

// WithdrawSource submits the source withdrawal with thread-safe access to the withdrawer.
func (r *Resolver) WithdrawSource(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	r.withdrawerMutex.RLock()
	withdrawer := r.withdrawer
	r.withdrawerMutex.RUnlock()

	if withdrawer == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return withdrawer.WithdrawSource(ctx, escrow, secret, immutables)
}

// WithdrawDestination submits the destination withdrawal with thread-safe access to the withdrawer.
func (r *Resolver) WithdrawDestination(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	r.withdrawerMutex.RLock()
	withdrawer := r.withdrawer
	r.withdrawerMutex.RUnlock()

	if withdrawer == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return withdrawer.WithdrawDestination(ctx, escrow, secret, immutables)
}

// CancelSource submits the source cancellation with thread-safe access to the canceller.
func (r *Resolver) CancelSource(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	r.cancellerMutex.RLock()
	canceller := r.canceller
	r.cancellerMutex.RUnlock()

	if canceller == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return canceller.CancelSource(ctx, escrow, immutables)
}

// CancelDestination submits the destination cancellation with thread-safe access to the canceller.
func (r *Resolver) CancelDestination(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	r.cancellerMutex.RLock()
	canceller := r.canceller
	r.cancellerMutex.RUnlock()

	if canceller == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return canceller.CancelDestination(ctx, escrow, immutables)
}

// GetTokenBalance gets a token balance with thread-safe access to the provider.
func (r *Resolver) GetTokenBalance(ctx context.Context, address string, token string) (*big.Int, error) {
	r.providerMutex.RLock()
	provider := r.provider
	r.providerMutex.RUnlock()

	if provider == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return provider.GetTokenBalance(ctx, address, token)
}

// ResolverAddress returns the resolver's own address on this chain.
func (r *Resolver) ResolverAddress() string {
	r.providerMutex.RLock()
	provider := r.provider
	r.providerMutex.RUnlock()

	if provider == nil {
		return ""
	}
	return provider.ResolverAddress()
}

// BuildSigningPayload builds the chain-specific signing payload when the
// underlying adapter provides the capability. Callers treat
// ErrNotImplemented as "derive the payload offline instead".
func (r *Resolver) BuildSigningPayload(ctx context.Context, immutables *htlc.Immutables) (json.RawMessage, error) {
	r.payloadBuilderMutex.RLock()
	builder := r.payloadBuilder
	r.payloadBuilderMutex.RUnlock()

	if builder == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return builder.BuildSigningPayload(ctx, immutables)
}

// ValidateAddress reports whether the address matches this chain's format.
func (r *Resolver) ValidateAddress(address string) bool {
	if r.validator == nil {
		return address != ""
	}
	return r.validator(address)
}

// GetConfig returns chain configuration.
//
// Returns:
// - *types.ChainConfig: the chain configuration instance.
func (r *Resolver) GetConfig() *types.ChainConfig {
	return r.config
}
