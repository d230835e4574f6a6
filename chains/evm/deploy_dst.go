package evm

import (
	"context"
	"math/big"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DeployDestination submits the destination escrow deployment through the
// factory, blocks until the chain confirms it, and resolves the escrow
// address. The resolver fronts the escrowed amount itself: for native-token
// swaps the amount travels as transaction value on top of the safety
// deposit, for ERC20 swaps the factory pulls the tokens from the resolver's
// pre-approved allowance.
//
// Parameters:
// - ctx: the context for managing the request.
// - immutables: the escrow parameter set built by the orchestrator from the
//   confirmed source order, with the resolver's own address as taker.
//
// Returns:
// - *types.DeployResult: the confirmed transaction, escrow address and deployment timestamp.
// - error: an error if submission, confirmation or escrow resolution fails.
func (e *evm) DeployDestination(ctx context.Context, immutables *htlc.Immutables) (*types.DeployResult, error) {
	data, err := e.factoryAbi.Pack("deployDst", toABIImmutables(immutables))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack deployDst data")
	}

	value := new(big.Int).Set(immutables.SafetyDeposit)
	if immutables.Token == "" || immutables.Token == ZeroAddress {
		value.Add(value, immutables.Amount)
	}

	tx, err := e.submitTransaction(ctx, e.factoryAddress, value, data)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"chain":     e.config.Name,
		"orderHash": immutables.OrderHash,
		"txHash":    tx.Hash().Hex(),
	}).Info("Destination escrow deployment submitted")

	receipt, deployedAt, err := e.waitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}

	escrow, err := e.escrowFromReceipt(receipt, "DstEscrowCreated", immutables)
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
