package chainmanager

import (
	"github.com/atomicport/relay-lib/common/types"
)

// ResolverBuilder is a builder pattern implementation for assembling a chain
// resolver out of its capability implementations: source and destination
// deployers, withdrawer, canceller and balance provider.
type ResolverBuilder struct {
	config      *types.ChainConfig        // Chain configuration.
	srcDeployer types.SourceDeployer      // Source escrow deployer implementation.
	dstDeployer types.DestinationDeployer // Destination escrow deployer implementation.
	withdrawer  types.Withdrawer          // Withdrawer implementation.
	canceller   types.Canceller           // Canceller implementation.
	provider    types.BalanceProvider     // Balance provider implementation.
	validator   AddressValidator          // Address format validator.

	payloadBuilder types.PayloadBuilder // Optional signing payload builder.
}

// AddressValidator checks chain-specific address syntax.
type AddressValidator func(address string) bool

// NewResolverBuilder creates a new resolver builder instance.
//
// Parameters:
// - config: the chain configuration.
//
// Returns:
// - *ResolverBuilder: a new ResolverBuilder instance.
func NewResolverBuilder(config *types.ChainConfig) *ResolverBuilder {
	return &ResolverBuilder{
		config: config,
	}
}

// WithSourceDeployer sets the source escrow deployer implementation.
func (b *ResolverBuilder) WithSourceDeployer(deployer types.SourceDeployer) *ResolverBuilder {
	b.srcDeployer = deployer
	return b
}

// WithDestinationDeployer sets the destination escrow deployer implementation.
func (b *ResolverBuilder) WithDestinationDeployer(deployer types.DestinationDeployer) *ResolverBuilder {
	b.dstDeployer = deployer
	return b
}

// WithWithdrawer sets the withdrawer implementation.
func (b *ResolverBuilder) WithWithdrawer(withdrawer types.Withdrawer) *ResolverBuilder {
	b.withdrawer = withdrawer
	return b
}

// WithCanceller sets the canceller implementation.
func (b *ResolverBuilder) WithCanceller(canceller types.Canceller) *ResolverBuilder {
	b.canceller = canceller
	return b
}

// WithBalanceProvider sets the balance provider implementation.
func (b *ResolverBuilder) WithBalanceProvider(provider types.BalanceProvider) *ResolverBuilder {
	b.provider = provider
	return b
}

// WithPayloadBuilder sets the optional signing payload builder.
func (b *ResolverBuilder) WithPayloadBuilder(builder types.PayloadBuilder) *ResolverBuilder {
	b.payloadBuilder = builder
	return b
}

// WithAddressValidator sets the address format validator.
func (b *ResolverBuilder) WithAddressValidator(validator AddressValidator) *ResolverBuilder {
	b.validator = validator
	return b
}

// Build creates a new resolver instance with the configured implementations.
//
// Returns:
// - types.Resolver: a new Resolver instance with the configured implementations.
func (b *ResolverBuilder) Build() types.Resolver {
	resolver := NewResolver(b.config, b.srcDeployer, b.dstDeployer, b.withdrawer, b.canceller, b.provider, b.validator)
	resolver.payloadBuilder = b.payloadBuilder
	return resolver
}
