package evm

import (
	"context"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// waitMined polls for the transaction receipt until the configured number of
// confirmation blocks have passed, then returns the receipt together with the
// inclusion block's timestamp.
//
// Parameters:
// - ctx: the context for managing the wait.
// - txHash: the hash of the submitted transaction.
//
// Returns:
// - *ethtypes.Receipt: the confirmed receipt.
// - uint64: the unix timestamp of the inclusion block.
// - error: ErrTransactionReverted if the transaction failed on-chain,
//   ErrChainUnavailable on RPC faults or timeout.
func (e *evm) waitMined(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, uint64, error) {
	client := e.getClient()
	if client == nil {
		return nil, 0, errors.Wrap(relayerrors.ErrChainUnavailable, "client not initialized")
	}

	deadline := time.Now().Add(confirmationTimeout)
	ticker := time.NewTicker(confirmationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.WithField("txHash", txHash.Hex()).Error("waitMined: context done")
			return nil, 0, ctx.Err()

		case <-ticker.C:
			if time.Now().After(deadline) {
				return nil, 0, errors.Wrapf(relayerrors.ErrChainUnavailable, "transaction %s not confirmed within %s", txHash.Hex(), confirmationTimeout)
			}

			receipt, err := client.TransactionReceipt(ctx, txHash)
			if err != nil {
				if errors.Is(err, ethereum.NotFound) {
					continue
				}
				return nil, 0, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to get transaction receipt: %v", err)
			}

			currentBlock, err := client.BlockNumber(ctx)
			if err != nil {
				return nil, 0, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to get current block number: %v", err)
			}

			// Wait for required block confirmations
			if currentBlock < receipt.BlockNumber.Uint64()+e.config.WaitNBlocks {
				continue
			}

			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return nil, 0, errors.Wrapf(relayerrors.ErrTransactionReverted, "transaction %s reverted", txHash.Hex())
			}

			header, err := client.HeaderByNumber(ctx, receipt.BlockNumber)
			if err != nil {
				return nil, 0, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to get inclusion block header: %v", err)
			}

			return receipt, header.Time, nil
		}
	}
}
