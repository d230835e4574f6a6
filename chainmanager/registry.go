package chainmanager

import (
	"context"
	"sort"
	"sync"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/sirupsen/logrus"
)

type resolverRegistry struct {
	logger         *logrus.Logger
	resolvers      map[uint64]types.Resolver
	resolversMutex sync.RWMutex
	factory        interface {
		CreateResolver(context.Context, *types.ChainConfig, *logrus.Logger) (types.Resolver, error)
	}
	factoryMutex sync.RWMutex
}

// NewResolverRegistry creates a registry that builds chain resolvers through
// the given factory and indexes them by chain id.
func NewResolverRegistry(factory interface {
	CreateResolver(context.Context, *types.ChainConfig, *logrus.Logger) (types.Resolver, error)
}, logger *logrus.Logger) types.ResolverRegistry {
	return &resolverRegistry{
		resolvers: make(map[uint64]types.Resolver),
		factory:   factory,
		logger:    logger,
	}
}

func (r *resolverRegistry) Add(ctx context.Context, config *types.ChainConfig) error {
	// Lock factory for reading to prevent changes during resolver creation.
	r.factoryMutex.RLock()
	resolver, err := r.factory.CreateResolver(ctx, config, r.logger)
	r.factoryMutex.RUnlock()

	if err != nil {
		return err
	}

	// Lock resolvers map for writing
	r.resolversMutex.Lock()
	r.resolvers[config.ChainID] = resolver
	r.resolversMutex.Unlock()

	return nil
}

func (r *resolverRegistry) Get(chainID uint64) types.Resolver {
	r.resolversMutex.RLock()
	resolver := r.resolvers[chainID]
	r.resolversMutex.RUnlock()
	return resolver
}

func (r *resolverRegistry) ChainIDs() []uint64 {
	r.resolversMutex.RLock()
	ids := make([]uint64, 0, len(r.resolvers))
	for id := range r.resolvers {
		ids = append(ids, id)
	}
	r.resolversMutex.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *resolverRegistry) Remove(chainID uint64) {
	r.resolversMutex.Lock()
	delete(r.resolvers, chainID)
	r.resolversMutex.Unlock()
}
