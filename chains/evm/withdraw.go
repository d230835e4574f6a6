package evm

import (
	"context"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// WithdrawSource reveals the secret on the source escrow, releasing the
// maker's funds to the resolver.
func (e *evm) WithdrawSource(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	return e.withdraw(ctx, escrow, secret, immutables)
}

// WithdrawDestination reveals the secret on the destination escrow,
// releasing the resolver's fronted funds to the receiver.
func (e *evm) WithdrawDestination(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	return e.withdraw(ctx, escrow, secret, immutables)
}

// withdraw submits the secret-reveal call against a deployed escrow and
// blocks until the chain confirms it. The escrow contract independently
// re-verifies the secret and the window boundaries.
func (e *evm) withdraw(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	var secret32 [32]byte
	if len(secret) != len(secret32) {
		return nil, errors.Errorf("secret must be %d bytes, got %d", len(secret32), len(secret))
	}
	copy(secret32[:], secret)

	data, err := e.escrowAbi.Pack("withdraw", secret32, toABIImmutables(immutables))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack withdraw data")
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
	}).Info("Escrow withdrawal submitted")

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
