package chains

import (
	"context"
	"sync"

	"github.com/atomicport/relay-lib/chains/evm"
	"github.com/atomicport/relay-lib/chains/sui"
	relayerrors "github.com/atomicport/relay-lib/common/errors"
	commontypes "github.com/atomicport/relay-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ResolverConstructor represents a function that constructs a new chain resolver.
//
// Parameters:
// - ctx: the context for managing the construction.
// - config: the configuration for the chain.
// - logger: the logger for logging purposes.
//
// Returns:
// - commontypes.Resolver: the constructed resolver instance.
// - error: an error if the resolver construction fails.
type ResolverConstructor func(ctx context.Context, config *commontypes.ChainConfig, logger *logrus.Logger) (commontypes.Resolver, error)

// ResolverFactory defines the interface for chain resolver creation.
type ResolverFactory interface {
	// RegisterConstructor registers a new resolver constructor for a given chain type.
	//
	// Parameters:
	// - chainType: the chain family to register.
	// - constructor: the constructor function for the chain family.
	RegisterConstructor(chainType commontypes.ChainType, constructor ResolverConstructor)

	// CreateResolver creates a new resolver instance based on the configuration.
	//
	// Parameters:
	// - ctx: the context for managing the construction.
	// - config: the configuration for the chain.
	// - logger: the logger for logging purposes.
	//
	// Returns:
	// - commontypes.Resolver: the created resolver instance.
	// - error: an error if the resolver creation fails.
	CreateResolver(ctx context.Context, config *commontypes.ChainConfig, logger *logrus.Logger) (commontypes.Resolver, error)
}

type resolverFactory struct {
	// constructors stores the mapping of chain families to their constructors.
	constructors map[commontypes.ChainType]ResolverConstructor
	// constructorsMutex protects access to the constructors map.
	constructorsMutex sync.RWMutex
}

// NewResolverFactory creates a new instance of the resolver factory.
//
// Returns:
// - ResolverFactory: the new resolver factory instance.
func NewResolverFactory() ResolverFactory {
	factory := &resolverFactory{
		constructors: make(map[commontypes.ChainType]ResolverConstructor),
	}

	// Initialize with default constructors.
	factory.registerConstructors()

	return factory
}

// RegisterConstructor registers a new resolver constructor.
//
// Parameters:
// - chainType: the chain family to register.
// - constructor: the constructor function for the chain family.
func (f *resolverFactory) RegisterConstructor(chainType commontypes.ChainType, constructor ResolverConstructor) {
	f.constructorsMutex.Lock()
	defer f.constructorsMutex.Unlock()

	f.constructors[chainType] = constructor
}

// CreateResolver creates a new resolver instance based on the configuration.
//
// Parameters:
// - ctx: the context for managing the construction.
// - config: the configuration for the chain.
// - logger: the logger for logging purposes.
//
// Returns:
// - commontypes.Resolver: the created resolver instance.
// - error: an error if the chain family has no registered constructor.
func (f *resolverFactory) CreateResolver(ctx context.Context, config *commontypes.ChainConfig, logger *logrus.Logger) (commontypes.Resolver, error) {
	f.constructorsMutex.RLock()
	constructor, exists := f.constructors[config.ChainType]
	f.constructorsMutex.RUnlock()

	if !exists {
		return nil, errors.Wrapf(relayerrors.ErrUnsupportedChain, "no constructor for chain type %s", config.ChainType)
	}

	return constructor(ctx, config, logger)
}

// registerConstructors registers the blockchain constructors for the resolver factory instance.
func (f *resolverFactory) registerConstructors() {
	// Register EVM chain constructor with the factory.
	f.RegisterConstructor(commontypes.EVM, func(ctx context.Context, config *commontypes.ChainConfig, logger *logrus.Logger) (commontypes.Resolver, error) {
		return evm.NewEvmChain(ctx, config, logger)
	})

	// Register Sui chain constructor with the factory.
	f.RegisterConstructor(commontypes.SUI, func(ctx context.Context, config *commontypes.ChainConfig, logger *logrus.Logger) (commontypes.Resolver, error) {
		return sui.NewSuiChain(ctx, config, logger)
	})
}
