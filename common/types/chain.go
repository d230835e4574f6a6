package types

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/atomicport/relay-lib/htlc"
)

// ChainConfig holds the configuration for a specific chain resolver implementation.
//
// Fields:
// - Name: the name of the chain.
// - ChainType: the family of the chain (EVM or SUI).
// - ChainID: the unique identifier for the chain.
// - RpcUrl: the URL for the chain's RPC endpoint.
// - WaitNBlocks: the number of blocks to wait for transaction confirmation.
// - PrivateKey: the resolver's signing key (hex private key for EVM, mnemonic for SUI).
// - EscrowFactory: the deployed escrow factory contract address (EVM) or package id (SUI).
// - EscrowInitCodeHash: the escrow proxy init code hash used for offline address derivation (EVM only, optional).
// - SafetyDeposit: the resolver-posted collateral per escrow, in native base units.
// - TokenDecimals: decimal precision per supported token identifier.
type ChainConfig struct {
	Name               string
	ChainType          ChainType
	ChainID            uint64
	RpcUrl             string
	WaitNBlocks        uint64
	PrivateKey         string
	EscrowFactory      string
	EscrowInitCodeHash string
	SafetyDeposit      string
	TokenDecimals      map[string]uint8
}

// SourceDeployer deploys the maker-funded escrow on the source chain.
type SourceDeployer interface {
	// DeploySource submits the source escrow deployment, blocks until the
	// chain confirms it, and resolves the escrow's on-chain reference.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - immutables: the escrow parameter set built by the orchestrator.
	// - signature: the maker's signature over the order payload.
	//
	// Returns:
	// - *DeployResult: the confirmed transaction, escrow reference and deployment timestamp.
	// - error: an error if submission, confirmation or escrow resolution fails.
	DeploySource(ctx context.Context, immutables *htlc.Immutables, signature string) (*DeployResult, error)
}

// DestinationDeployer deploys the resolver-funded escrow on the destination chain.
type DestinationDeployer interface {
	// DeployDestination submits the destination escrow deployment, blocks
	// until the chain confirms it, and resolves the escrow's on-chain reference.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - immutables: the escrow parameter set built by the orchestrator from the
	//   confirmed source order, with the resolver's own address as taker.
	//
	// Returns:
	// - *DeployResult: the confirmed transaction, escrow reference and deployment timestamp.
	// - error: an error if submission, confirmation or escrow resolution fails.
	DeployDestination(ctx context.Context, immutables *htlc.Immutables) (*DeployResult, error)
}

// Withdrawer submits secret-reveal withdrawals against deployed escrows.
// The on-chain contracts independently re-verify the secret and window;
// the orchestrator pre-checks both to fail fast without wasting a transaction.
type Withdrawer interface {
	// WithdrawSource reveals the secret on the source escrow, releasing the
	// maker's funds to the resolver.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - escrow: the source escrow address or object id.
	// - secret: the hash lock preimage.
	// - immutables: the escrow parameter set recorded at deployment.
	//
	// Returns:
	// - *Transaction: the confirmed withdrawal transaction.
	// - error: an error if submission or confirmation fails.
	WithdrawSource(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*Transaction, error)

	// WithdrawDestination reveals the secret on the destination escrow,
	// releasing the resolver's fronted funds to the receiver.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - escrow: the destination escrow address or object id.
	// - secret: the hash lock preimage.
	// - immutables: the escrow parameter set recorded at deployment.
	//
	// Returns:
	// - *Transaction: the confirmed withdrawal transaction.
	// - error: an error if submission or confirmation fails.
	WithdrawDestination(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*Transaction, error)
}

// Canceller submits cancellations against deployed escrows after their
// cancellation windows open.
type Canceller interface {
	// CancelSource returns the maker's locked funds on the source chain.
	CancelSource(ctx context.Context, escrow string, immutables *htlc.Immutables) (*Transaction, error)

	// CancelDestination returns the resolver's fronted funds on the destination chain.
	CancelDestination(ctx context.Context, escrow string, immutables *htlc.Immutables) (*Transaction, error)
}

// BalanceProvider exposes the resolver's on-chain funding state.
type BalanceProvider interface {
	// GetTokenBalance gets token balance for the given address.
	// For native token balances, use an empty token identifier.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the address to check balance for.
	// - token: the token contract address or coin type.
	//
	// Returns:
	// - *big.Int: the token balance in base units.
	// - error: an error if the balance check fails.
	GetTokenBalance(ctx context.Context, address string, token string) (*big.Int, error)

	// ResolverAddress returns the resolver's own address on this chain.
	ResolverAddress() string
}

// PayloadBuilder is an optional capability for chains whose signing payload
// cannot be derived offline. Sui-originated orders return pre-built sponsored
// transaction bytes for the maker to sign; EVM-originated orders use the
// EIP-712 payload computed by the order identity package instead.
type PayloadBuilder interface {
	// BuildSigningPayload builds the chain-specific payload the maker signs.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - immutables: the source escrow parameter set of the built order.
	//
	// Returns:
	// - json.RawMessage: the payload handed to the maker's wallet.
	// - error: an error if payload construction fails.
	BuildSigningPayload(ctx context.Context, immutables *htlc.Immutables) (json.RawMessage, error)
}

// Resolver combines all chain-specific escrow functionality the
// orchestrator depends on.
type Resolver interface {
	SourceDeployer
	DestinationDeployer
	Withdrawer
	Canceller
	BalanceProvider

	// GetConfig returns the chain configuration.
	GetConfig() *ChainConfig

	// ValidateAddress reports whether the address is syntactically valid
	// for this chain's address format.
	ValidateAddress(address string) bool
}

// ResolverRegistry manages resolvers for multiple chains.
type ResolverRegistry interface {
	// Add creates and registers a resolver for the given chain configuration.
	//
	// Parameters:
	// - ctx: the context for managing the creation.
	// - config: the configuration for the chain to add.
	//
	// Returns:
	// - error: an error if creating the resolver fails.
	Add(ctx context.Context, config *ChainConfig) error

	// Get retrieves a resolver from the registry by its chain ID.
	//
	// Parameters:
	// - chainID: the unique identifier for the chain to retrieve.
	//
	// Returns:
	// - Resolver: the registered resolver, or nil when none is registered.
	Get(chainID uint64) Resolver

	// ChainIDs returns the chain ids with a registered resolver, ascending.
	ChainIDs() []uint64

	// Remove removes a resolver from the registry by its chain ID.
	Remove(chainID uint64)
}
