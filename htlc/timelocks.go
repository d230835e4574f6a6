package htlc

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// Side identifies which half of a cross-chain swap an escrow belongs to.
type Side string

const (
	// SideSource is the chain where the maker locks funds.
	SideSource Side = "SRC"
	// SideDestination is the chain where the resolver fronts funds for the receiver.
	SideDestination Side = "DST"
)

// TimeLocks holds the named window durations for both sides of a swap,
// measured from the deployment timestamp of the respective escrow.
// The destination windows are configured to close before the source
// windows so the resolver can always retrieve the source funds after
// releasing the destination funds.
//
// Per side the durations must satisfy strict ordering:
// 0 < withdrawal < publicWithdrawal < cancellation (< publicCancellation on source).
type TimeLocks struct {
	SrcWithdrawal         time.Duration
	SrcPublicWithdrawal   time.Duration
	SrcCancellation       time.Duration
	SrcPublicCancellation time.Duration

	DstWithdrawal       time.Duration
	DstPublicWithdrawal time.Duration
	DstCancellation     time.Duration
}

// Windows holds the absolute timestamps (unix seconds) of a deployed
// escrow's action boundaries.
type Windows struct {
	WithdrawalAt         uint64
	PublicWithdrawalAt   uint64
	CancellationAt       uint64
	PublicCancellationAt uint64
}

// NewTimeLocks validates the window ordering invariant and returns the set.
//
// Parameters:
// - tl: the candidate durations.
//
// Returns:
// - TimeLocks: the validated set.
// - error: an error if any side violates the strict ordering invariant.
func NewTimeLocks(tl TimeLocks) (TimeLocks, error) {
	if tl.SrcWithdrawal <= 0 {
		return TimeLocks{}, errors.New("invalid timelocks: source withdrawal must be positive")
	}
	if tl.SrcWithdrawal >= tl.SrcPublicWithdrawal {
		return TimeLocks{}, errors.New("invalid timelocks: source withdrawal must precede public withdrawal")
	}
	if tl.SrcPublicWithdrawal >= tl.SrcCancellation {
		return TimeLocks{}, errors.New("invalid timelocks: source public withdrawal must precede cancellation")
	}
	if tl.SrcPublicCancellation > 0 && tl.SrcCancellation >= tl.SrcPublicCancellation {
		return TimeLocks{}, errors.New("invalid timelocks: source cancellation must precede public cancellation")
	}

	if tl.DstWithdrawal <= 0 {
		return TimeLocks{}, errors.New("invalid timelocks: destination withdrawal must be positive")
	}
	if tl.DstWithdrawal >= tl.DstPublicWithdrawal {
		return TimeLocks{}, errors.New("invalid timelocks: destination withdrawal must precede public withdrawal")
	}
	if tl.DstPublicWithdrawal >= tl.DstCancellation {
		return TimeLocks{}, errors.New("invalid timelocks: destination public withdrawal must precede cancellation")
	}

	return tl, nil
}

// Resolve converts the side's relative durations into absolute timestamps
// anchored at the escrow's deployment time.
//
// Parameters:
// - deployedAt: the unix timestamp at which the escrow deployment confirmed.
// - side: the swap side the escrow belongs to.
//
// Returns:
// - Windows: the absolute action boundaries for the escrow.
func (t TimeLocks) Resolve(deployedAt uint64, side Side) Windows {
	if side == SideDestination {
		return Windows{
			WithdrawalAt:       deployedAt + uint64(t.DstWithdrawal/time.Second),
			PublicWithdrawalAt: deployedAt + uint64(t.DstPublicWithdrawal/time.Second),
			CancellationAt:     deployedAt + uint64(t.DstCancellation/time.Second),
		}
	}

	w := Windows{
		WithdrawalAt:       deployedAt + uint64(t.SrcWithdrawal/time.Second),
		PublicWithdrawalAt: deployedAt + uint64(t.SrcPublicWithdrawal/time.Second),
		CancellationAt:     deployedAt + uint64(t.SrcCancellation/time.Second),
	}
	if t.SrcPublicCancellation > 0 {
		w.PublicCancellationAt = deployedAt + uint64(t.SrcPublicCancellation/time.Second)
	}
	return w
}

// Pack encodes the side's window offsets plus the deployment timestamp into a
// single uint256 for the EVM escrow contracts: four uint32 second offsets in
// the low bits and the deployment timestamp in bits 224..255.
//
// Parameters:
// - deployedAt: the unix timestamp at which the escrow deployment confirmed.
// - side: the swap side the escrow belongs to.
//
// Returns:
// - *big.Int: the packed timelocks word.
func (t TimeLocks) Pack(deployedAt uint64, side Side) *big.Int {
	var offsets [4]uint64
	if side == SideDestination {
		offsets = [4]uint64{
			uint64(t.DstWithdrawal / time.Second),
			uint64(t.DstPublicWithdrawal / time.Second),
			uint64(t.DstCancellation / time.Second),
			0,
		}
	} else {
		offsets = [4]uint64{
			uint64(t.SrcWithdrawal / time.Second),
			uint64(t.SrcPublicWithdrawal / time.Second),
			uint64(t.SrcCancellation / time.Second),
			uint64(t.SrcPublicCancellation / time.Second),
		}
	}

	packed := new(big.Int).Lsh(new(big.Int).SetUint64(deployedAt), 224)
	for i, offset := range offsets {
		word := new(big.Int).Lsh(new(big.Int).SetUint64(offset), uint(32*i))
		packed.Or(packed, word)
	}
	return packed
}
