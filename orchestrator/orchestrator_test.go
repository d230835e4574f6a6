package orchestrator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"sync"
	"testing"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/atomicport/relay-lib/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testSrcChainID = uint64(1)
	testDstChainID = uint64(2)

	testMaker    = "0x1111111111111111111111111111111111111111"
	testReceiver = "0x2222222222222222222222222222222222222222"
	testSrcToken = "0x3333333333333333333333333333333333333333"
	testDstToken = "0x4444444444444444444444444444444444444444"

	testDeployedAt = uint64(1_000_000)
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// callLog records adapter invocations across both fake resolvers so tests
// can assert cross-chain ordering.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeResolver is an in-memory chain adapter with scriptable failures.
type fakeResolver struct {
	config *types.ChainConfig
	log    *callLog

	mu             sync.Mutex
	balance        *big.Int
	deploySrcErr   error
	deployDstErr   error
	withdrawSrcErr error
	withdrawDstErr error
	cancelErr      error
}

func newFakeResolver(chainID uint64, log *callLog) *fakeResolver {
	return &fakeResolver{
		config: &types.ChainConfig{
			Name:      "fake",
			ChainType: types.EVM,
			ChainID:   chainID,
		},
		log:     log,
		balance: new(big.Int).Lsh(big.NewInt(1), 120),
	}
}

func (f *fakeResolver) setError(target *error, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*target = err
}

func (f *fakeResolver) DeploySource(_ context.Context, immutables *htlc.Immutables, _ string) (*types.DeployResult, error) {
	f.log.record("deploySrc")
	f.mu.Lock()
	err := f.deploySrcErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &types.DeployResult{
		Tx:         &types.Transaction{Hash: "0xsrcdeploy", ChainID: f.config.ChainID, OrderHash: immutables.OrderHash},
		Escrow:     "0xsrcescrow",
		DeployedAt: testDeployedAt,
	}, nil
}

func (f *fakeResolver) DeployDestination(_ context.Context, immutables *htlc.Immutables) (*types.DeployResult, error) {
	f.log.record("deployDst")
	f.mu.Lock()
	err := f.deployDstErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &types.DeployResult{
		Tx:         &types.Transaction{Hash: "0xdstdeploy", ChainID: f.config.ChainID, OrderHash: immutables.OrderHash},
		Escrow:     "0xdstescrow",
		DeployedAt: testDeployedAt,
	}, nil
}

func (f *fakeResolver) WithdrawSource(_ context.Context, _ string, _ []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	f.log.record("withdrawSrc")
	f.mu.Lock()
	err := f.withdrawSrcErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &types.Transaction{Hash: "0xsrcwithdraw", ChainID: f.config.ChainID, OrderHash: immutables.OrderHash}, nil
}

func (f *fakeResolver) WithdrawDestination(_ context.Context, _ string, _ []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	f.log.record("withdrawDst")
	f.mu.Lock()
	err := f.withdrawDstErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &types.Transaction{Hash: "0xdstwithdraw", ChainID: f.config.ChainID, OrderHash: immutables.OrderHash}, nil
}

func (f *fakeResolver) CancelSource(_ context.Context, _ string, immutables *htlc.Immutables) (*types.Transaction, error) {
	f.log.record("cancelSrc")
	f.mu.Lock()
	err := f.cancelErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &types.Transaction{Hash: "0xsrccancel", ChainID: f.config.ChainID, OrderHash: immutables.OrderHash}, nil
}

func (f *fakeResolver) CancelDestination(_ context.Context, _ string, immutables *htlc.Immutables) (*types.Transaction, error) {
	f.log.record("cancelDst")
	f.mu.Lock()
	err := f.cancelErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &types.Transaction{Hash: "0xdstcancel", ChainID: f.config.ChainID, OrderHash: immutables.OrderHash}, nil
}

func (f *fakeResolver) GetTokenBalance(_ context.Context, _ string, _ string) (*big.Int, error) {
	f.log.record("getBalance")
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeResolver) ResolverAddress() string {
	return "0x9999999999999999999999999999999999999999"
}

func (f *fakeResolver) GetConfig() *types.ChainConfig { return f.config }

func (f *fakeResolver) ValidateAddress(address string) bool { return address != "" }

// fakeRegistry serves pre-built resolvers by chain id.
type fakeRegistry struct {
	resolvers map[uint64]types.Resolver
}

func (r *fakeRegistry) Add(_ context.Context, _ *types.ChainConfig) error { return nil }
func (r *fakeRegistry) Get(chainID uint64) types.Resolver                 { return r.resolvers[chainID] }
func (r *fakeRegistry) Remove(chainID uint64)                             { delete(r.resolvers, chainID) }
func (r *fakeRegistry) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(r.resolvers))
	for id := range r.resolvers {
		ids = append(ids, id)
	}
	return ids
}

type testHarness struct {
	orchestrator *Orchestrator
	orders       store.OrderStore
	src          *fakeResolver
	dst          *fakeResolver
	log          *callLog
}

func testTimeLocks(t *testing.T) htlc.TimeLocks {
	t.Helper()
	timelocks, err := htlc.NewTimeLocks(htlc.TimeLocks{
		SrcWithdrawal:         10 * time.Second,
		SrcPublicWithdrawal:   20 * time.Second,
		SrcCancellation:       30 * time.Second,
		SrcPublicCancellation: 40 * time.Second,
		DstWithdrawal:         5 * time.Second,
		DstPublicWithdrawal:   15 * time.Second,
		DstCancellation:       25 * time.Second,
	})
	require.NoError(t, err)
	return timelocks
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	log := &callLog{}
	src := newFakeResolver(testSrcChainID, log)
	dst := newFakeResolver(testDstChainID, log)
	registry := &fakeRegistry{resolvers: map[uint64]types.Resolver{
		testSrcChainID: src,
		testDstChainID: dst,
	}}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	orders := store.NewMemoryStore()
	o := New(registry, orders, Config{
		TimeLocks:     testTimeLocks(t),
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		MaxWindowWait: 0,
	}, logger)

	// Fixed clock, well past every window anchored at testDeployedAt.
	o.now = func() time.Time { return time.Unix(int64(testDeployedAt)+3600, 0) }

	return &testHarness{orchestrator: o, orders: orders, src: src, dst: dst, log: log}
}

func testIntent() *types.UserIntent {
	return &types.UserIntent{
		SrcChainID:  testSrcChainID,
		DstChainID:  testDstChainID,
		UserAddress: testMaker,
		Receiver:    testReceiver,
		SrcToken:    testSrcToken,
		DstToken:    testDstToken,
		Amount:      "1.5",
		HashLock:    htlc.HashLockFromSecret(testSecret).Hex(),
	}
}

// buildSigned creates an order and attaches a signature.
func (h *testHarness) buildSigned(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	payload, err := h.orchestrator.Build(ctx, testIntent())
	require.NoError(t, err)
	require.NoError(t, h.orchestrator.AttachSignature(ctx, payload.OrderHash, "0xsignature"))

	return payload.OrderHash
}

func TestBuildCreatesOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	payload, err := h.orchestrator.Build(ctx, testIntent())
	require.NoError(t, err)
	require.NotEmpty(t, payload.OrderHash)
	require.Equal(t, types.EVM, payload.ChainType)
	require.NotEmpty(t, payload.Payload)

	var typed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload.Payload, &typed))
	require.Contains(t, typed, "domain")

	order, err := h.orchestrator.orders.Get(ctx, payload.OrderHash)
	require.NoError(t, err)
	require.Equal(t, types.StatusBuilt, order.Status)
	require.Equal(t, testMaker, order.Intent.UserAddress)
	require.NotEmpty(t, order.Salt)
}

func TestBuildSameIntentTwiceYieldsDistinctOrders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.orchestrator.Build(ctx, testIntent())
	require.NoError(t, err)
	second, err := h.orchestrator.Build(ctx, testIntent())
	require.NoError(t, err)

	require.NotEqual(t, first.OrderHash, second.OrderHash)
}

func TestBuildRejectsUnknownChain(t *testing.T) {
	h := newHarness(t)

	intent := testIntent()
	intent.DstChainID = 999

	_, err := h.orchestrator.Build(context.Background(), intent)
	require.ErrorIs(t, err, relayerrors.ErrUnsupportedChain)
}

func TestBuildRejectsInvalidIntent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*types.UserIntent)
	}{
		{"same chains", func(i *types.UserIntent) { i.DstChainID = i.SrcChainID }},
		{"bad hash lock", func(i *types.UserIntent) { i.HashLock = "0x1234" }},
		{"bad amount", func(i *types.UserIntent) { i.Amount = "not-a-number" }},
		{"zero amount", func(i *types.UserIntent) { i.Amount = "0" }},
		{"empty maker", func(i *types.UserIntent) { i.UserAddress = "" }},
		{"empty receiver", func(i *types.UserIntent) { i.Receiver = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := testIntent()
			tt.mutate(intent)
			_, err := h.orchestrator.Build(ctx, intent)
			require.ErrorIs(t, err, relayerrors.ErrValidation)
		})
	}
}

func TestImmutablesNameResolverAsTaker(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	payload, err := h.orchestrator.Build(ctx, testIntent())
	require.NoError(t, err)
	order, err := h.orders.Get(ctx, payload.OrderHash)
	require.NoError(t, err)

	src, err := h.orchestrator.buildImmutables(order, htlc.SideSource, h.src, h.dst)
	require.NoError(t, err)
	require.Equal(t, testMaker, src.Maker)
	require.Equal(t, h.src.ResolverAddress(), src.Taker)

	// The destination escrow is resolver-funded in favor of the receiver,
	// but the resolver stays the taker on both sides.
	dst, err := h.orchestrator.buildImmutables(order, htlc.SideDestination, h.src, h.dst)
	require.NoError(t, err)
	require.Equal(t, testReceiver, dst.Maker)
	require.Equal(t, h.dst.ResolverAddress(), dst.Taker)
}

func TestAttachSignature(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	payload, err := h.orchestrator.Build(ctx, testIntent())
	require.NoError(t, err)

	require.NoError(t, h.orchestrator.AttachSignature(ctx, payload.OrderHash, "0xsignature"))

	order, err := h.orders.Get(ctx, payload.OrderHash)
	require.NoError(t, err)
	require.Equal(t, types.StatusSigned, order.Status)
	require.Equal(t, "0xsignature", order.Signature)

	// Re-attaching the same signature is a no-op.
	require.NoError(t, h.orchestrator.AttachSignature(ctx, payload.OrderHash, "0xsignature"))

	// A different signature is rejected.
	err = h.orchestrator.AttachSignature(ctx, payload.OrderHash, "0xother")
	require.ErrorIs(t, err, relayerrors.ErrValidation)

	// An empty signature is rejected.
	err = h.orchestrator.AttachSignature(ctx, payload.OrderHash, "")
	require.ErrorIs(t, err, relayerrors.ErrValidation)
}

func TestExecuteDeploysSourceThenDestination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)

	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	require.Equal(t, []string{"getBalance", "deploySrc", "deployDst"}, h.log.snapshot())

	order, err := h.orders.Get(ctx, orderHash)
	require.NoError(t, err)
	require.Equal(t, types.StatusDstDeployed, order.Status)
	require.Equal(t, "0xsrcescrow", order.Src.Escrow)
	require.Equal(t, "0xdstescrow", order.Dst.Escrow)
	require.Equal(t, testDeployedAt, order.Src.DeployedAt)
	require.Equal(t, testDeployedAt, order.Dst.DeployedAt)
}

func TestExecuteRequiresSignature(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	payload, err := h.orchestrator.Build(ctx, testIntent())
	require.NoError(t, err)

	err = h.orchestrator.Execute(ctx, payload.OrderHash)
	require.ErrorIs(t, err, relayerrors.ErrValidation)
	require.Empty(t, h.log.snapshot())
}

func TestExecuteInsufficientBalanceFailsBeforeDeployment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)

	h.dst.mu.Lock()
	h.dst.balance = big.NewInt(1)
	h.dst.mu.Unlock()

	err := h.orchestrator.Execute(ctx, orderHash)
	require.Error(t, err)
	require.NotContains(t, h.log.snapshot(), "deploySrc")

	order, getErr := h.orders.Get(ctx, orderHash)
	require.NoError(t, getErr)
	require.Equal(t, types.StatusFailed, order.Status)
	require.Contains(t, order.FailureReason, "insufficient resolver balance")
}

func TestExecuteTransientFaultLeavesOrderResumable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)

	h.src.setError(&h.src.deploySrcErr, relayerrors.ErrChainUnavailable)

	err := h.orchestrator.Execute(ctx, orderHash)
	require.ErrorIs(t, err, relayerrors.ErrChainUnavailable)

	order, getErr := h.orders.Get(ctx, orderHash)
	require.NoError(t, getErr)
	require.Equal(t, types.StatusSigned, order.Status)
	require.Empty(t, order.Src.Escrow)

	// Chain recovers; re-entry resumes and finishes the deployment.
	h.src.setError(&h.src.deploySrcErr, nil)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	order, getErr = h.orders.Get(ctx, orderHash)
	require.NoError(t, getErr)
	require.Equal(t, types.StatusDstDeployed, order.Status)
}

func TestExecuteRevertMarksOrderFailed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)

	h.src.setError(&h.src.deploySrcErr, errors.Wrap(relayerrors.ErrTransactionReverted, "out of gas"))

	err := h.orchestrator.Execute(ctx, orderHash)
	require.ErrorIs(t, err, relayerrors.ErrTransactionReverted)

	order, getErr := h.orders.Get(ctx, orderHash)
	require.NoError(t, getErr)
	require.Equal(t, types.StatusFailed, order.Status)
	require.Contains(t, order.FailureReason, "out of gas")
}

func TestExecuteSkipsAlreadyDeployedSource(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)

	// Source deployment already on record from a previous run.
	require.NoError(t, h.orders.SetEscrow(ctx, orderHash, htlc.SideSource, "0xsrcescrow", "0xsrcdeploy", testDeployedAt))
	require.NoError(t, h.orders.SetStatus(ctx, orderHash, types.StatusSrcDeployed))

	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))
	require.NotContains(t, h.log.snapshot(), "deploySrc")
	require.Contains(t, h.log.snapshot(), "deployDst")
}

func TestRevealWithdrawsDestinationBeforeSource(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	require.NoError(t, h.orchestrator.RevealSecret(ctx, orderHash, "0x"+hex.EncodeToString(testSecret)))

	calls := h.log.snapshot()
	require.Equal(t, []string{"getBalance", "deploySrc", "deployDst", "withdrawDst", "withdrawSrc"}, calls)

	order, err := h.orders.Get(ctx, orderHash)
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, order.Status)
	require.Equal(t, "0xdstwithdraw", order.Dst.WithdrawTx)
	require.Equal(t, "0xsrcwithdraw", order.Src.WithdrawTx)
	require.NotNil(t, order.ExecutedAt)
}

func TestRevealRejectsWrongSecretWithoutChainCalls(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	before := len(h.log.snapshot())
	err := h.orchestrator.RevealSecret(ctx, orderHash, "0x"+hex.EncodeToString([]byte("ffffffffffffffffffffffffffffffff")))
	require.ErrorIs(t, err, relayerrors.ErrInvalidSecret)
	require.Len(t, h.log.snapshot(), before)

	order, getErr := h.orders.Get(ctx, orderHash)
	require.NoError(t, getErr)
	require.Equal(t, types.StatusDstDeployed, order.Status)
	require.Empty(t, order.Secret)
}

func TestRevealBeforeDeploymentRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)

	err := h.orchestrator.RevealSecret(ctx, orderHash, "0x"+hex.EncodeToString(testSecret))
	require.ErrorIs(t, err, relayerrors.ErrEscrowNotDeployed)
}

func TestRevealBeforeWindowRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	// Clock just after deployment: the destination window is still closed
	// and MaxWindowWait is zero, so the reveal fails instead of blocking.
	h.orchestrator.now = func() time.Time { return time.Unix(int64(testDeployedAt)+1, 0) }

	err := h.orchestrator.RevealSecret(ctx, orderHash, "0x"+hex.EncodeToString(testSecret))
	require.ErrorIs(t, err, relayerrors.ErrWithdrawalNotOpen)
	require.NotContains(t, h.log.snapshot(), "withdrawDst")
}

func TestRevealPartialWithdrawalIsRetryable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	h.src.setError(&h.src.withdrawSrcErr, errors.Wrap(relayerrors.ErrTransactionReverted, "nonce gap"))

	secret := "0x" + hex.EncodeToString(testSecret)
	err := h.orchestrator.RevealSecret(ctx, orderHash, secret)
	require.ErrorIs(t, err, relayerrors.ErrPartialWithdrawal)

	order, getErr := h.orders.Get(ctx, orderHash)
	require.NoError(t, getErr)
	require.Equal(t, types.StatusDstWithdrawn, order.Status)
	require.Equal(t, "0xdstwithdraw", order.Dst.WithdrawTx)
	require.Empty(t, order.Src.WithdrawTx)

	// Retry after the fault clears: the destination leg is not re-withdrawn.
	h.src.setError(&h.src.withdrawSrcErr, nil)
	dstWithdrawals := countCalls(h.log.snapshot(), "withdrawDst")
	require.NoError(t, h.orchestrator.RevealSecret(ctx, orderHash, secret))
	require.Equal(t, dstWithdrawals, countCalls(h.log.snapshot(), "withdrawDst"))

	order, getErr = h.orders.Get(ctx, orderHash)
	require.NoError(t, getErr)
	require.Equal(t, types.StatusCompleted, order.Status)
}

func TestRevealCompletedOrderIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	secret := "0x" + hex.EncodeToString(testSecret)
	require.NoError(t, h.orchestrator.RevealSecret(ctx, orderHash, secret))

	before := len(h.log.snapshot())
	require.NoError(t, h.orchestrator.RevealSecret(ctx, orderHash, secret))
	require.Len(t, h.log.snapshot(), before)
}

func TestCancelUnwindsDestinationThenSource(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	require.NoError(t, h.orchestrator.Cancel(ctx, orderHash))

	calls := h.log.snapshot()
	require.Equal(t, []string{"getBalance", "deploySrc", "deployDst", "cancelDst", "cancelSrc"}, calls)

	order, err := h.orders.Get(ctx, orderHash)
	require.NoError(t, err)
	require.Equal(t, types.StatusCancelled, order.Status)
	require.Equal(t, "0xdstcancel", order.Dst.CancelTx)
	require.Equal(t, "0xsrccancel", order.Src.CancelTx)
}

func TestCancelBeforeWindowRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)
	require.NoError(t, h.orchestrator.Execute(ctx, orderHash))

	h.orchestrator.now = func() time.Time { return time.Unix(int64(testDeployedAt)+1, 0) }

	err := h.orchestrator.Cancel(ctx, orderHash)
	require.ErrorIs(t, err, relayerrors.ErrCancellationNotOpen)
	require.NotContains(t, h.log.snapshot(), "cancelDst")
}

func TestCancelWithoutEscrowsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	orderHash := h.buildSigned(t)

	err := h.orchestrator.Cancel(ctx, orderHash)
	require.ErrorIs(t, err, relayerrors.ErrValidation)
}

func countCalls(calls []string, name string) int {
	n := 0
	for _, call := range calls {
		if call == name {
			n++
		}
	}
	return n
}
