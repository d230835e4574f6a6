package relayer

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/atomicport/relay-lib/orchestrator"
	"github.com/atomicport/relay-lib/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestRelayer(t *testing.T) (*Relayer, store.OrderStore) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	timelocks, err := htlc.NewTimeLocks(htlc.TimeLocks{
		SrcWithdrawal:       10 * time.Second,
		SrcPublicWithdrawal: 20 * time.Second,
		SrcCancellation:     30 * time.Second,
		DstWithdrawal:       5 * time.Second,
		DstPublicWithdrawal: 15 * time.Second,
		DstCancellation:     25 * time.Second,
	})
	require.NoError(t, err)

	orders := store.NewMemoryStore()
	relay := New(orders, orchestrator.Config{TimeLocks: timelocks}, logger)
	t.Cleanup(relay.Close)

	return relay, orders
}

func seedOrder(t *testing.T, orders store.OrderStore, deployed bool) string {
	t.Helper()

	order := &types.SwapOrder{
		OrderHash: "0xorder",
		Intent: types.UserIntent{
			SrcChainID:  1,
			DstChainID:  2,
			UserAddress: "0xuser",
			HashLock:    htlc.HashLockFromSecret(testSecret).Hex(),
		},
		Status: types.StatusBuilt,
	}
	if deployed {
		order.Status = types.StatusDstDeployed
		order.Src = types.EscrowSide{Escrow: "0xsrcescrow", DeployedAt: 100}
		order.Dst = types.EscrowSide{Escrow: "0xdstescrow", DeployedAt: 100}
	}
	require.NoError(t, orders.Create(context.Background(), order))

	return order.OrderHash
}

func TestBuildSwapWithoutChainsListsRegistered(t *testing.T) {
	relay, _ := newTestRelayer(t)

	_, err := relay.BuildSwap(context.Background(), &types.UserIntent{
		SrcChainID: 1,
		DstChainID: 2,
	})
	require.ErrorIs(t, err, relayerrors.ErrUnsupportedChain)
	require.Contains(t, err.Error(), "registered chains")

	require.Empty(t, relay.SupportedChains())
}

func TestGetOrderUnknownHash(t *testing.T) {
	relay, _ := newTestRelayer(t)

	_, err := relay.GetOrder(context.Background(), "0xmissing")
	require.ErrorIs(t, err, relayerrors.ErrOrderNotFound)
}

func TestGetOrdersForRequiresAddress(t *testing.T) {
	relay, orders := newTestRelayer(t)
	seedOrder(t, orders, false)

	_, err := relay.GetOrdersFor(context.Background(), "  ")
	require.ErrorIs(t, err, relayerrors.ErrValidation)

	listed, err := relay.GetOrdersFor(context.Background(), "0xuser")
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestRevealRejectsWrongSecretSynchronously(t *testing.T) {
	relay, orders := newTestRelayer(t)
	orderHash := seedOrder(t, orders, true)

	wrong := "0x" + hex.EncodeToString([]byte("ffffffffffffffffffffffffffffffff"))
	err := relay.Reveal(context.Background(), orderHash, wrong)
	require.ErrorIs(t, err, relayerrors.ErrInvalidSecret)
}

func TestRevealRejectsUndeployedEscrowsSynchronously(t *testing.T) {
	relay, orders := newTestRelayer(t)
	orderHash := seedOrder(t, orders, false)

	secret := "0x" + hex.EncodeToString(testSecret)
	err := relay.Reveal(context.Background(), orderHash, secret)
	require.ErrorIs(t, err, relayerrors.ErrEscrowNotDeployed)
}

func TestRevealUnknownOrder(t *testing.T) {
	relay, _ := newTestRelayer(t)

	secret := "0x" + hex.EncodeToString(testSecret)
	err := relay.Reveal(context.Background(), "0xmissing", secret)
	require.ErrorIs(t, err, relayerrors.ErrOrderNotFound)
}

func TestSubmitSignatureUnknownOrder(t *testing.T) {
	relay, _ := newTestRelayer(t)

	err := relay.SubmitSignatureAndExecute(context.Background(), "0xmissing", "0xsig")
	require.ErrorIs(t, err, relayerrors.ErrOrderNotFound)
}
