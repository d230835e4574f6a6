package evm

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atomicport/relay-lib/chainmanager"
	"github.com/atomicport/relay-lib/chains/evm/generated"
	"github.com/atomicport/relay-lib/chains/evm/signer"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/connectionmonitor"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// confirmationPollInterval is the receipt polling cadence.
	confirmationPollInterval = time.Second
	// confirmationTimeout bounds a single confirmation wait.
	confirmationTimeout = 5 * time.Minute
)

// evm represents the EVM chain resolver implementation.
type evm struct {
	config *types.ChainConfig // Chain configuration.
	logger *logrus.Logger     // Logger for logging events.

	factoryAddress common.Address // Deployed escrow factory address.

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex      // Mutex for client.
	client      *ethclient.Client // Ethereum client.

	signerMutex sync.RWMutex  // Mutex for signer.
	signer      signer.Signer // Signer for signing transactions.

	// nonceMutex serializes nonce assignment: all escrow transactions on this
	// chain share the resolver's single signing key, so concurrent order
	// tasks must not race for the next sequential nonce.
	nonceMutex sync.Mutex

	monitorMutex sync.RWMutex                        // Mutex for connection monitor.
	monitor      connectionmonitor.ConnectionMonitor // Connection monitor.

	factoryAbi abi.ABI // Parsed escrow factory ABI.
	escrowAbi  abi.ABI // Parsed escrow ABI.
	erc20Abi   abi.ABI // Parsed ERC20 ABI.
}

// NewEvmChain creates a new EVM chain resolver.
//
// Parameters:
// - ctx: the context for managing the initialization.
// - config: the chain configuration.
// - logger: the logger for logging events.
//
// Returns:
// - types.Resolver: a new EVM resolver instance.
// - error: an error if any issue occurs during creation.
func NewEvmChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Resolver, error) {
	client, err := ethclient.Dial(config.RpcUrl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}

	factoryAbi, err := abi.JSON(strings.NewReader(generated.EscrowFactoryABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse escrow factory ABI")
	}
	escrowAbi, err := abi.JSON(strings.NewReader(generated.EscrowABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse escrow ABI")
	}
	erc20Abi, err := abi.JSON(strings.NewReader(generated.ERC20ABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token ABI")
	}

	chain := &evm{
		config:         config,
		logger:         logger,
		client:         client,
		factoryAddress: common.HexToAddress(config.EscrowFactory),
		factoryAbi:     factoryAbi,
		escrowAbi:      escrowAbi,
		erc20Abi:       erc20Abi,
	}

	if config.PrivateKey == "" {
		return nil, errors.New("resolver private key not configured")
	}

	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(config.PrivateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	chainSigner, err := signer.NewSigner(privKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create signer")
	}

	chain.signerMutex.Lock()
	chain.signer = chainSigner
	chain.signerMutex.Unlock()

	if err := chain.initMonitor(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	builder := chainmanager.NewResolverBuilder(config)
	builder.WithSourceDeployer(chain)
	builder.WithDestinationDeployer(chain)
	builder.WithWithdrawer(chain)
	builder.WithCanceller(chain)
	builder.WithBalanceProvider(chain)
	builder.WithAddressValidator(common.IsHexAddress)

	return builder.Build(), nil
}

// Close stops the connection monitor and closes the client.
func (e *evm) Close() {
	e.monitorMutex.Lock()
	if e.monitor != nil {
		e.monitor.Stop()
	}
	e.monitorMutex.Unlock()

	e.clientMutex.Lock()
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	e.clientMutex.Unlock()
}

// ResolverAddress returns the resolver's address on this chain.
func (e *evm) ResolverAddress() string {
	e.signerMutex.RLock()
	defer e.signerMutex.RUnlock()
	return e.signer.Address().Hex()
}

// getClient returns the Ethereum client under the read lock.
func (e *evm) getClient() *ethclient.Client {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return e.client
}
