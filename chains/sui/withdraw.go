package sui

import (
	"context"
	"encoding/hex"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// WithdrawSource reveals the secret on the source escrow object, releasing
// the maker's coins to the resolver.
func (s *suiChain) WithdrawSource(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	return s.withdraw(ctx, escrow, secret, immutables)
}

// WithdrawDestination reveals the secret on the destination escrow object,
// releasing the resolver's fronted coins to the receiver.
func (s *suiChain) WithdrawDestination(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	return s.withdraw(ctx, escrow, secret, immutables)
}

// withdraw executes the secret-reveal entry function against a deployed
// escrow object. The Move module independently re-verifies the secret and
// the window boundaries against the on-chain clock.
func (s *suiChain) withdraw(ctx context.Context, escrow string, secret []byte, immutables *htlc.Immutables) (*types.Transaction, error) {
	if len(secret) != 32 {
		return nil, errors.Errorf("secret must be 32 bytes, got %d", len(secret))
	}

	response, err := s.executeMoveCall(ctx, "withdraw",
		[]interface{}{coinTypeOf(immutables.Token)},
		[]interface{}{
			escrow,
			"0x" + hex.EncodeToString(secret),
		})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chain":     s.config.Name,
		"orderHash": immutables.OrderHash,
		"escrow":    escrow,
		"digest":    response.Digest,
	}).Info("Escrow withdrawal executed")

	return &types.Transaction{
		Hash:      response.Digest,
		From:      s.ResolverAddress(),
		To:        escrow,
		ChainID:   s.config.ChainID,
		OrderHash: immutables.OrderHash,
	}, nil
}
