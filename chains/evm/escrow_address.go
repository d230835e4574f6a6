package evm

import (
	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// escrowFromReceipt resolves the deployed escrow address for a confirmed
// factory transaction. The creation event in the receipt is authoritative;
// when it is absent the address is derived offline from the immutables and
// the configured escrow init code hash. If neither path yields an address
// the deployment is confirmed but untracked, which is surfaced distinctly.
//
// Parameters:
// - receipt: the confirmed deployment receipt.
// - eventName: SrcEscrowCreated or DstEscrowCreated.
// - immutables: the escrow parameter set the factory hashed.
//
// Returns:
// - string: the escrow contract address.
// - error: ErrEscrowResolutionFailed when no address can be resolved.
func (e *evm) escrowFromReceipt(receipt *ethtypes.Receipt, eventName string, immutables *htlc.Immutables) (string, error) {
	event, ok := e.factoryAbi.Events[eventName]
	if !ok {
		return "", errors.Errorf("unknown factory event: %s", eventName)
	}

	for _, log := range receipt.Logs {
		if log.Address != e.factoryAddress || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}

		values, err := e.factoryAbi.Unpack(eventName, log.Data)
		if err != nil {
			e.logger.WithError(err).WithField("event", eventName).Warn("Failed to unpack escrow creation event")
			continue
		}
		if len(values) == 0 {
			continue
		}

		escrow, ok := values[0].(common.Address)
		if !ok {
			continue
		}
		return escrow.Hex(), nil
	}

	if e.config.EscrowInitCodeHash != "" {
		return e.computeEscrowAddress(immutables)
	}

	return "", errors.Wrapf(relayerrors.ErrEscrowResolutionFailed,
		"no %s event in receipt %s and no init code hash configured", eventName, receipt.TxHash.Hex())
}

// computeEscrowAddress derives the escrow address offline via the factory's
// CREATE2 formula: the salt is the keccak256 of the ABI-encoded immutables.
//
// Parameters:
// - immutables: the escrow parameter set the factory hashed.
//
// Returns:
// - string: the derived escrow contract address.
// - error: an error if encoding fails.
func (e *evm) computeEscrowAddress(immutables *htlc.Immutables) (string, error) {
	encoded, err := encodeImmutables(immutables)
	if err != nil {
		return "", errors.Wrap(relayerrors.ErrEscrowResolutionFailed, err.Error())
	}

	var salt [32]byte
	copy(salt[:], crypto.Keccak256(encoded))

	initCodeHash := common.FromHex(e.config.EscrowInitCodeHash)
	if len(initCodeHash) != 32 {
		return "", errors.Wrap(relayerrors.ErrEscrowResolutionFailed, "escrow init code hash must be 32 bytes")
	}

	escrow := crypto.CreateAddress2(e.factoryAddress, salt, initCodeHash)
	return escrow.Hex(), nil
}
