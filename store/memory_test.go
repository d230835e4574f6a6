package store

import (
	"context"
	"testing"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/stretchr/testify/require"
)

func newOrder(hash, user string) *types.SwapOrder {
	return &types.SwapOrder{
		OrderHash: hash,
		Intent: types.UserIntent{
			SrcChainID:  1,
			DstChainID:  2,
			UserAddress: user,
		},
		Status: types.StatusBuilt,
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newOrder("0xAAA", "0xuser")))

	order, err := s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	require.Equal(t, types.StatusBuilt, order.Status)
	require.False(t, order.CreatedAt.IsZero())

	// Duplicate hashes are rejected, case-insensitively.
	err = s.Create(ctx, newOrder("0xaaa", "0xuser"))
	require.ErrorIs(t, err, relayerrors.ErrDuplicateOrder)

	_, err = s.Get(ctx, "0xmissing")
	require.ErrorIs(t, err, relayerrors.ErrOrderNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newOrder("0xaaa", "0xuser")))

	first, err := s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	first.Status = types.StatusFailed

	second, err := s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	require.Equal(t, types.StatusBuilt, second.Status)
}

func TestListByUserNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	older := newOrder("0xaaa", "0xUser")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newOrder("0xbbb", "0xuser")
	newer.CreatedAt = time.Now()
	other := newOrder("0xccc", "0xsomeoneelse")

	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, newer))
	require.NoError(t, s.Create(ctx, other))

	orders, err := s.ListByUser(ctx, "0xUSER")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "0xbbb", orders[0].OrderHash)
	require.Equal(t, "0xaaa", orders[1].OrderHash)

	orders, err = s.ListByUser(ctx, "0xnobody")
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestSettersAreFirstWriteWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newOrder("0xaaa", "0xuser")))

	require.NoError(t, s.SetSignature(ctx, "0xaaa", "0xsig1"))
	require.NoError(t, s.SetSignature(ctx, "0xaaa", "0xsig2"))

	require.NoError(t, s.SetSecret(ctx, "0xaaa", "0xsecret1"))
	require.NoError(t, s.SetSecret(ctx, "0xaaa", "0xsecret2"))

	require.NoError(t, s.SetEscrow(ctx, "0xaaa", htlc.SideSource, "0xescrow1", "0xtx1", 100))
	require.NoError(t, s.SetEscrow(ctx, "0xaaa", htlc.SideSource, "0xescrow2", "0xtx2", 200))

	require.NoError(t, s.SetWithdrawTx(ctx, "0xaaa", htlc.SideDestination, "0xw1"))
	require.NoError(t, s.SetWithdrawTx(ctx, "0xaaa", htlc.SideDestination, "0xw2"))

	require.NoError(t, s.SetCancelTx(ctx, "0xaaa", htlc.SideDestination, "0xc1"))
	require.NoError(t, s.SetCancelTx(ctx, "0xaaa", htlc.SideDestination, "0xc2"))

	order, err := s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	require.Equal(t, "0xsig1", order.Signature)
	require.Equal(t, "0xsecret1", order.Secret)
	require.Equal(t, "0xescrow1", order.Src.Escrow)
	require.Equal(t, "0xtx1", order.Src.DeployTx)
	require.Equal(t, uint64(100), order.Src.DeployedAt)
	require.Equal(t, "0xw1", order.Dst.WithdrawTx)
	require.Equal(t, "0xc1", order.Dst.CancelTx)
}

func TestSettersRejectUnknownOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.ErrorIs(t, s.SetSignature(ctx, "0xmissing", "0xsig"), relayerrors.ErrOrderNotFound)
	require.ErrorIs(t, s.SetStatus(ctx, "0xmissing", types.StatusSigned), relayerrors.ErrOrderNotFound)
}

func TestStatusTransitionsStopAtTerminal(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newOrder("0xaaa", "0xuser")))

	require.NoError(t, s.SetStatus(ctx, "0xaaa", types.StatusSigned))
	require.NoError(t, s.MarkFailed(ctx, "0xaaa", "something broke"))

	// Terminal status is sticky.
	require.NoError(t, s.SetStatus(ctx, "0xaaa", types.StatusCompleted))
	require.NoError(t, s.MarkFailed(ctx, "0xaaa", "another cause"))

	order, err := s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	require.Equal(t, types.StatusFailed, order.Status)
	require.Equal(t, "something broke", order.FailureReason)
}

func TestFailurePreservesProgress(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newOrder("0xaaa", "0xuser")))

	require.NoError(t, s.SetEscrow(ctx, "0xaaa", htlc.SideSource, "0xescrow", "0xtx", 100))
	require.NoError(t, s.MarkFailed(ctx, "0xaaa", "destination deployment reverted"))

	order, err := s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	require.Equal(t, types.StatusFailed, order.Status)
	require.Equal(t, "0xescrow", order.Src.Escrow)

	// Recorded references survive even after failure.
	require.NoError(t, s.SetCancelTx(ctx, "0xaaa", htlc.SideSource, "0xcancel"))
	order, err = s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	require.Equal(t, "0xcancel", order.Src.CancelTx)
}

func TestCompletedStampsExecutedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newOrder("0xaaa", "0xuser")))

	require.NoError(t, s.SetStatus(ctx, "0xaaa", types.StatusCompleted))

	order, err := s.Get(ctx, "0xaaa")
	require.NoError(t, err)
	require.NotNil(t, order.ExecutedAt)
}
