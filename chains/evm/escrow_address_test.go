package evm

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/atomicport/relay-lib/chains/evm/generated"
	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testFactory      = "0x5555555555555555555555555555555555555555"
	testInitCodeHash = "0x96d5a8cbf2f2fa30312bd9e3c79f44b9e4b6b623bb7ddf374fec9a667bb0b1ab"
)

func testImmutables() *htlc.Immutables {
	timelocks, _ := htlc.NewTimeLocks(htlc.TimeLocks{
		SrcWithdrawal:       10 * time.Second,
		SrcPublicWithdrawal: 20 * time.Second,
		SrcCancellation:     30 * time.Second,
		DstWithdrawal:       5 * time.Second,
		DstPublicWithdrawal: 15 * time.Second,
		DstCancellation:     25 * time.Second,
	})

	return &htlc.Immutables{
		OrderHash:     "0x" + strings.Repeat("ab", 32),
		HashLock:      htlc.HashLockFromSecret([]byte("0123456789abcdef0123456789abcdef")),
		Maker:         "0x1111111111111111111111111111111111111111",
		Taker:         "0x2222222222222222222222222222222222222222",
		Token:         "0x3333333333333333333333333333333333333333",
		Amount:        big.NewInt(1_500_000),
		SafetyDeposit: big.NewInt(1_000),
		TimeLocks:     timelocks,
		Side:          htlc.SideSource,
	}
}

func testChain(t *testing.T, initCodeHash string) *evm {
	t.Helper()

	factoryAbi, err := abi.JSON(strings.NewReader(generated.EscrowFactoryABI))
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return &evm{
		config: &types.ChainConfig{
			Name:               "testchain",
			ChainType:          types.EVM,
			ChainID:            1,
			EscrowFactory:      testFactory,
			EscrowInitCodeHash: initCodeHash,
		},
		logger:         logger,
		factoryAddress: common.HexToAddress(testFactory),
		factoryAbi:     factoryAbi,
	}
}

func TestEscrowFromReceiptUsesCreationEvent(t *testing.T) {
	chain := testChain(t, "")
	immutables := testImmutables()

	event := chain.factoryAbi.Events["SrcEscrowCreated"]
	escrow := common.HexToAddress("0x7777777777777777777777777777777777777777")
	data, err := event.Inputs.NonIndexed().Pack(escrow)
	require.NoError(t, err)

	receipt := &ethtypes.Receipt{
		TxHash: common.HexToHash("0x01"),
		Logs: []*ethtypes.Log{
			{
				// Unrelated log from another contract is skipped.
				Address: common.HexToAddress("0x6666666666666666666666666666666666666666"),
				Topics:  []common.Hash{event.ID},
				Data:    data,
			},
			{
				Address: chain.factoryAddress,
				Topics:  []common.Hash{event.ID, common.HexToHash(immutables.OrderHash)},
				Data:    data,
			},
		},
	}

	resolved, err := chain.escrowFromReceipt(receipt, "SrcEscrowCreated", immutables)
	require.NoError(t, err)
	require.Equal(t, escrow.Hex(), resolved)
}

func TestEscrowFromReceiptFallsBackToDerivation(t *testing.T) {
	chain := testChain(t, testInitCodeHash)
	immutables := testImmutables()

	receipt := &ethtypes.Receipt{TxHash: common.HexToHash("0x01")}

	derived, err := chain.escrowFromReceipt(receipt, "SrcEscrowCreated", immutables)
	require.NoError(t, err)
	require.True(t, common.IsHexAddress(derived))

	// Derivation is deterministic over the immutables.
	again, err := chain.computeEscrowAddress(immutables)
	require.NoError(t, err)
	require.Equal(t, derived, again)
}

func TestEscrowResolutionFailsWithoutEventOrInitCodeHash(t *testing.T) {
	chain := testChain(t, "")
	receipt := &ethtypes.Receipt{TxHash: common.HexToHash("0x01")}

	_, err := chain.escrowFromReceipt(receipt, "SrcEscrowCreated", testImmutables())
	require.ErrorIs(t, err, relayerrors.ErrEscrowResolutionFailed)
}

func TestEncodeImmutablesPinsDeploymentTimestamp(t *testing.T) {
	immutables := testImmutables()

	before, err := encodeImmutables(immutables)
	require.NoError(t, err)

	// The CREATE2 salt must not move once the deployment confirms.
	stamped := immutables.WithDeployedAt(1_000_000)
	after, err := encodeImmutables(&stamped)
	require.NoError(t, err)

	require.Equal(t, before, after)
}
