package orchestrator

import (
	"math/big"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
)

// buildImmutables assembles the escrow parameter set for one side of an
// order. Both escrows name the resolver as taker: the source escrow is
// maker-funded, the destination escrow is resolver-funded in favor of the
// receiver. The
// deployment timestamp is taken from the order of record when that side has
// already confirmed, so rebuilt immutables always match the deployed escrow.
//
// Parameters:
// - order: the order of record.
// - side: the swap side to build for.
// - srcResolver: the source chain resolver.
// - dstResolver: the destination chain resolver.
//
// Returns:
// - *htlc.Immutables: the escrow parameter set for the side.
// - error: an error if the intent's amounts or hash lock fail to parse.
func (o *Orchestrator) buildImmutables(order *types.SwapOrder, side htlc.Side, srcResolver, dstResolver types.Resolver) (*htlc.Immutables, error) {
	hashLock, err := htlc.ParseHashLock(order.Intent.HashLock)
	if err != nil {
		return nil, errors.Wrapf(relayerrors.ErrValidation, "invalid hash lock: %v", err)
	}

	var (
		resolver   types.Resolver
		maker      string
		taker      string
		token      string
		deployedAt uint64
	)
	if side == htlc.SideDestination {
		resolver = dstResolver
		maker = order.Intent.Receiver
		taker = dstResolver.ResolverAddress()
		token = order.Intent.DstToken
		deployedAt = order.Dst.DeployedAt
	} else {
		resolver = srcResolver
		maker = order.Intent.UserAddress
		taker = srcResolver.ResolverAddress()
		token = order.Intent.SrcToken
		deployedAt = order.Src.DeployedAt
	}

	config := resolver.GetConfig()
	amount, err := types.ScaleAmount(order.Intent.Amount, decimalsFor(config, token))
	if err != nil {
		return nil, errors.Wrapf(relayerrors.ErrValidation, "invalid amount: %v", err)
	}

	safetyDeposit, err := parseSafetyDeposit(config.SafetyDeposit)
	if err != nil {
		return nil, err
	}

	return &htlc.Immutables{
		OrderHash:     order.OrderHash,
		HashLock:      hashLock,
		Maker:         maker,
		Taker:         taker,
		Token:         token,
		Amount:        amount,
		SafetyDeposit: safetyDeposit,
		TimeLocks:     o.timelocks,
		Side:          side,
		DeployedAt:    deployedAt,
	}, nil
}

// decimalsFor looks up the token's decimal precision in the chain
// configuration, defaulting to the chain family's native precision.
func decimalsFor(config *types.ChainConfig, token string) uint8 {
	if decimals, ok := config.TokenDecimals[token]; ok {
		return decimals
	}
	if config.ChainType == types.SUI {
		return 9
	}
	return 18
}

// parseSafetyDeposit parses the configured safety deposit in base units.
// An empty configuration means no deposit.
func parseSafetyDeposit(raw string) (*big.Int, error) {
	if raw == "" {
		return new(big.Int), nil
	}
	deposit, ok := new(big.Int).SetString(raw, 10)
	if !ok || deposit.Sign() < 0 {
		return nil, errors.Errorf("invalid safety deposit %q", raw)
	}
	return deposit, nil
}
