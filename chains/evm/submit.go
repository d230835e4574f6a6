package evm

import (
	"context"
	"math/big"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// submitTransaction builds, signs and sends a transaction against the given
// contract. Nonce assignment and send are serialized under nonceMutex because
// every escrow transaction on this chain shares the resolver's signing key.
//
// Parameters:
// - ctx: the context for managing the request.
// - to: the target contract address.
// - value: the native value to attach.
// - data: the packed call data.
//
// Returns:
// - *ethtypes.Transaction: the submitted transaction.
// - error: an error if preparation, signing or submission fails.
func (e *evm) submitTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (*ethtypes.Transaction, error) {
	client := e.getClient()
	if client == nil {
		return nil, errors.Wrap(relayerrors.ErrChainUnavailable, "client not initialized")
	}

	e.signerMutex.RLock()
	chainSigner := e.signer
	e.signerMutex.RUnlock()

	e.nonceMutex.Lock()
	defer e.nonceMutex.Unlock()

	nonce, err := client.PendingNonceAt(ctx, chainSigner.Address())
	if err != nil {
		return nil, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to get nonce: %v", err)
	}

	estimatedGas, err := e.EstimateGas(ctx, to.Hex(), value, data)
	if err != nil {
		e.logger.WithField("chain", e.config.Name).WithError(err).Warn("Failed to estimate gas")
		return nil, errors.Wrapf(relayerrors.ErrTransactionReverted, "failed to estimate gas: %v", err)
	}
	gasLimit := uint64(float64(estimatedGas) * 1.1)

	gasPriceData, err := e.getGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to get gas price: %v", err)
	}

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(e.config.ChainID),
		Nonce:     nonce,
		GasFeeCap: gasPriceData.MaxFeePerGas,
		GasTipCap: gasPriceData.MaxPriorityFeePerGas,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signedTx, err := chainSigner.SignTx(tx, new(big.Int).SetUint64(e.config.ChainID))
	if err != nil {
		e.logger.WithError(err).Error("Failed to sign transaction")
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err = client.SendTransaction(ctx, signedTx); err != nil {
		e.logger.WithError(err).Error("Failed to send transaction")
		return nil, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to send transaction: %v", err)
	}

	return signedTx, nil
}
