package evm

import (
	"context"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DeploySource submits the source escrow deployment through the factory,
// blocks until the chain confirms it, and resolves the escrow address.
// The maker's funds move under the maker's order signature; the resolver
// attaches the configured safety deposit as native value.
//
// Parameters:
// - ctx: the context for managing the request.
// - immutables: the escrow parameter set built by the orchestrator.
// - signature: the maker's hex-encoded signature over the order payload.
//
// Returns:
// - *types.DeployResult: the confirmed transaction, escrow address and deployment timestamp.
// - error: an error if submission, confirmation or escrow resolution fails.
func (e *evm) DeploySource(ctx context.Context, immutables *htlc.Immutables, signature string) (*types.DeployResult, error) {
	sigBytes := common.FromHex(signature)
	if len(sigBytes) == 0 {
		return nil, errors.New("empty order signature")
	}

	data, err := e.factoryAbi.Pack("deploySrc", toABIImmutables(immutables), sigBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack deploySrc data")
	}

	tx, err := e.submitTransaction(ctx, e.factoryAddress, immutables.SafetyDeposit, data)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"chain":     e.config.Name,
		"orderHash": immutables.OrderHash,
		"txHash":    tx.Hash().Hex(),
	}).Info("Source escrow deployment submitted")

	receipt, deployedAt, err := e.waitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}

	escrow, err := e.escrowFromReceipt(receipt, "SrcEscrowCreated", immutables)
	if err != nil {
		return nil, err
	}

	return &types.DeployResult{
		Tx: &types.Transaction{
			Hash:      tx.Hash().Hex(),
			From:      e.ResolverAddress(),
			To:        e.factoryAddress.Hex(),
			Nonce:     tx.Nonce(),
			ChainID:   e.config.ChainID,
			OrderHash: immutables.OrderHash,
		},
		Escrow:     escrow,
		DeployedAt: deployedAt,
	}, nil
}
