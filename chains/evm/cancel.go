package evm

import (
	"context"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CancelSource returns the maker's locked funds on the source chain.
func (e *evm) CancelSource(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	return e.cancel(ctx, escrow, immutables)
}

// CancelDestination returns the resolver's fronted funds on the destination chain.
func (e *evm) CancelDestination(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	return e.cancel(ctx, escrow, immutables)
}

// cancel submits the cancellation call against a deployed escrow and blocks
// until the chain confirms it. The escrow contract enforces that the
// cancellation window is open.
func (e *evm) cancel(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	data, err := e.escrowAbi.Pack("cancel", toABIImmutables(immutables))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack cancel data")
	}

	escrowAddress := common.HexToAddress(escrow)
	tx, err := e.submitTransaction(ctx, escrowAddress, nil, data)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"chain":     e.config.Name,
		"orderHash": immutables.OrderHash,
		"escrow":    escrow,
		"txHash":    tx.Hash().Hex(),
	}).Info("Escrow cancellation submitted")

	if _, _, err := e.waitMined(ctx, tx.Hash()); err != nil {
		return nil, err
	}

	return &types.Transaction{
		Hash:      tx.Hash().Hex(),
		From:      e.ResolverAddress(),
		To:        escrow,
		Nonce:     tx.Nonce(),
		ChainID:   e.config.ChainID,
		OrderHash: immutables.OrderHash,
	}, nil
}
