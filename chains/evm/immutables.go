package evm

import (
	"math/big"

	"github.com/atomicport/relay-lib/htlc"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// abiImmutables mirrors the escrow contracts' Immutables tuple for ABI packing.
type abiImmutables struct {
	OrderHash     [32]byte
	Hashlock      [32]byte
	Maker         common.Address
	Taker         common.Address
	Token         common.Address
	Amount        *big.Int
	SafetyDeposit *big.Int
	Timelocks     *big.Int
}

// toABIImmutables converts the orchestrator-owned immutables into the
// contract tuple. The timelocks word carries the escrow's deployment
// timestamp when one is known.
func toABIImmutables(imm *htlc.Immutables) abiImmutables {
	out := abiImmutables{
		Hashlock:      imm.HashLock,
		Maker:         common.HexToAddress(imm.Maker),
		Taker:         common.HexToAddress(imm.Taker),
		Token:         common.HexToAddress(imm.Token),
		Amount:        imm.Amount,
		SafetyDeposit: imm.SafetyDeposit,
		Timelocks:     imm.TimeLocks.Pack(imm.DeployedAt, imm.Side),
	}
	copy(out.OrderHash[:], common.FromHex(imm.OrderHash))
	return out
}

// immutablesArguments is the ABI argument list used to encode the tuple for
// offline escrow address derivation.
var immutablesArguments = func() abi.Arguments {
	tupleType, err := abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "orderHash", Type: "bytes32"},
		{Name: "hashlock", Type: "bytes32"},
		{Name: "maker", Type: "address"},
		{Name: "taker", Type: "address"},
		{Name: "token", Type: "address"},
		{Name: "amount", Type: "uint256"},
		{Name: "safetyDeposit", Type: "uint256"},
		{Name: "timelocks", Type: "uint256"},
	})
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: tupleType}}
}()

// encodeImmutables ABI-encodes the tuple the factory hashes into the CREATE2
// salt. The factory derives the salt before the deployment confirms, so the
// timelocks word is packed with a zero deployment timestamp here.
func encodeImmutables(imm *htlc.Immutables) ([]byte, error) {
	pinned := *imm
	pinned.DeployedAt = 0

	encoded, err := immutablesArguments.Pack(toABIImmutables(&pinned))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode immutables")
	}
	return encoded, nil
}
