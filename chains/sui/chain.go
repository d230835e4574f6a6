package sui

import (
	"context"
	"regexp"
	"sync"

	"github.com/atomicport/relay-lib/chainmanager"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/connectionmonitor"
	"github.com/block-vision/sui-go-sdk/signer"
	"github.com/block-vision/sui-go-sdk/sui"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// escrowModule is the Move module holding the escrow entry functions.
	escrowModule = "escrow"
	// defaultGasBudget bounds gas spend per programmable transaction, in MIST.
	defaultGasBudget = "100000000"
)

// suiAddressPattern matches a 32-byte hex Sui address.
var suiAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

// suiChain represents the Sui chain resolver implementation.
type suiChain struct {
	config *types.ChainConfig // Chain configuration.
	logger *logrus.Logger     // Logger for logging events.

	clientMutex sync.RWMutex // Mutex for client.
	client      sui.ISuiAPI  // Sui RPC client.

	signerMutex sync.RWMutex   // Mutex for signer.
	signer      *signer.Signer // Signer for signing transactions.

	monitorMutex sync.RWMutex                        // Mutex for connection monitor.
	monitor      connectionmonitor.ConnectionMonitor // Connection monitor.
}

// NewSuiChain creates a new Sui chain resolver.
//
// Parameters:
// - ctx: the context for managing the initialization.
// - config: the chain configuration. EscrowFactory holds the published
//   escrow package ID; PrivateKey holds the resolver's mnemonic.
// - logger: the logger for logging events.
//
// Returns:
// - types.Resolver: a new Sui resolver instance.
// - error: an error if any issue occurs during creation.
func NewSuiChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Resolver, error) {
	if config.PrivateKey == "" {
		return nil, errors.New("resolver mnemonic not configured")
	}
	if config.EscrowFactory == "" {
		return nil, errors.New("escrow package ID not configured")
	}

	chainSigner, err := signer.NewSignertWithMnemonic(config.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create signer from mnemonic")
	}

	chain := &suiChain{
		config: config,
		logger: logger,
		client: sui.NewSuiClient(config.RpcUrl),
		signer: chainSigner,
	}

	if err := chain.initMonitor(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	builder := chainmanager.NewResolverBuilder(config)
	builder.WithSourceDeployer(chain)
	builder.WithDestinationDeployer(chain)
	builder.WithWithdrawer(chain)
	builder.WithCanceller(chain)
	builder.WithBalanceProvider(chain)
	builder.WithPayloadBuilder(chain)
	builder.WithAddressValidator(isSuiAddress)

	return builder.Build(), nil
}

// isSuiAddress reports whether s looks like a Sui account or object address.
func isSuiAddress(s string) bool {
	return suiAddressPattern.MatchString(s)
}

// Close stops the connection monitor.
func (s *suiChain) Close() {
	s.monitorMutex.Lock()
	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.monitorMutex.Unlock()
}

// ResolverAddress returns the resolver's address on this chain.
func (s *suiChain) ResolverAddress() string {
	s.signerMutex.RLock()
	defer s.signerMutex.RUnlock()
	return s.signer.Address
}

// getClient returns the Sui client under the read lock.
func (s *suiChain) getClient() sui.ISuiAPI {
	s.clientMutex.RLock()
	defer s.clientMutex.RUnlock()
	return s.client
}
