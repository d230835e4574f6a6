package htlc

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validTimeLocks() TimeLocks {
	return TimeLocks{
		SrcWithdrawal:         10 * time.Second,
		SrcPublicWithdrawal:   20 * time.Second,
		SrcCancellation:       30 * time.Second,
		SrcPublicCancellation: 40 * time.Second,
		DstWithdrawal:         5 * time.Second,
		DstPublicWithdrawal:   15 * time.Second,
		DstCancellation:       25 * time.Second,
	}
}

func TestNewTimeLocksAcceptsOrderedWindows(t *testing.T) {
	_, err := NewTimeLocks(validTimeLocks())
	require.NoError(t, err)

	// Public cancellation is optional on the source side.
	tl := validTimeLocks()
	tl.SrcPublicCancellation = 0
	_, err = NewTimeLocks(tl)
	require.NoError(t, err)
}

func TestNewTimeLocksRejectsOrderingViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TimeLocks)
	}{
		{"zero src withdrawal", func(tl *TimeLocks) { tl.SrcWithdrawal = 0 }},
		{"src withdrawal after public", func(tl *TimeLocks) { tl.SrcWithdrawal = tl.SrcPublicWithdrawal }},
		{"src public withdrawal after cancellation", func(tl *TimeLocks) { tl.SrcPublicWithdrawal = tl.SrcCancellation }},
		{"src cancellation after public cancellation", func(tl *TimeLocks) { tl.SrcCancellation = tl.SrcPublicCancellation }},
		{"zero dst withdrawal", func(tl *TimeLocks) { tl.DstWithdrawal = 0 }},
		{"dst withdrawal after public", func(tl *TimeLocks) { tl.DstWithdrawal = tl.DstPublicWithdrawal }},
		{"dst public withdrawal after cancellation", func(tl *TimeLocks) { tl.DstPublicWithdrawal = tl.DstCancellation }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := validTimeLocks()
			tt.mutate(&tl)
			_, err := NewTimeLocks(tl)
			require.Error(t, err)
		})
	}
}

func TestResolveAnchorsWindowsAtDeployment(t *testing.T) {
	tl := validTimeLocks()
	deployedAt := uint64(1_000_000)

	src := tl.Resolve(deployedAt, SideSource)
	require.Equal(t, deployedAt+10, src.WithdrawalAt)
	require.Equal(t, deployedAt+20, src.PublicWithdrawalAt)
	require.Equal(t, deployedAt+30, src.CancellationAt)
	require.Equal(t, deployedAt+40, src.PublicCancellationAt)

	dst := tl.Resolve(deployedAt, SideDestination)
	require.Equal(t, deployedAt+5, dst.WithdrawalAt)
	require.Equal(t, deployedAt+15, dst.PublicWithdrawalAt)
	require.Equal(t, deployedAt+25, dst.CancellationAt)
	require.Zero(t, dst.PublicCancellationAt)
}

func TestPackLayout(t *testing.T) {
	tl := validTimeLocks()
	deployedAt := uint64(1_000_000)

	packed := tl.Pack(deployedAt, SideSource)

	mask := new(big.Int).SetUint64(0xffffffff)
	for i, want := range []uint64{10, 20, 30, 40} {
		got := new(big.Int).And(new(big.Int).Rsh(packed, uint(32*i)), mask)
		require.Equal(t, want, got.Uint64(), "offset slot %d", i)
	}

	stamp := new(big.Int).Rsh(packed, 224)
	require.Equal(t, deployedAt, stamp.Uint64())

	// Destination side has no public cancellation slot.
	packed = tl.Pack(deployedAt, SideDestination)
	slot3 := new(big.Int).And(new(big.Int).Rsh(packed, 96), mask)
	require.Zero(t, slot3.Uint64())
}

func TestImmutablesWithDeployedAt(t *testing.T) {
	immutables := Immutables{
		OrderHash: "0xabc",
		TimeLocks: validTimeLocks(),
		Side:      SideDestination,
	}

	stamped := immutables.WithDeployedAt(1_000_000)
	require.Zero(t, immutables.DeployedAt)
	require.Equal(t, uint64(1_000_000), stamped.DeployedAt)
	require.Equal(t, uint64(1_000_005), stamped.Windows().WithdrawalAt)
}
