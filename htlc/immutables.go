package htlc

import (
	"math/big"
)

// Immutables is the authoritative parameter set bound to one deployed escrow.
// The orchestrator builds the value once per adapter call and never mutates
// a submitted instance, so withdraw and cancel calls stay reproducible.
//
// DeployedAt is zero until the deployment transaction confirms; the value
// used for withdrawals carries the confirmed timestamp.
type Immutables struct {
	OrderHash     string
	HashLock      HashLock
	Maker         string
	Taker         string
	Token         string
	Amount        *big.Int
	SafetyDeposit *big.Int
	TimeLocks     TimeLocks
	Side          Side
	DeployedAt    uint64
}

// WithDeployedAt returns a copy of the immutables carrying the confirmed
// deployment timestamp. The receiver is left untouched.
//
// Parameters:
// - deployedAt: the unix timestamp at which the escrow deployment confirmed.
//
// Returns:
// - Immutables: the copy with DeployedAt set.
func (i Immutables) WithDeployedAt(deployedAt uint64) Immutables {
	i.DeployedAt = deployedAt
	return i
}

// Windows resolves the escrow's absolute action boundaries from its own
// deployment timestamp and side.
//
// Returns:
// - Windows: the absolute action boundaries for the escrow.
func (i Immutables) Windows() Windows {
	return i.TimeLocks.Resolve(i.DeployedAt, i.Side)
}
