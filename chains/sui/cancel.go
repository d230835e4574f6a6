package sui

import (
	"context"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/sirupsen/logrus"
)

// CancelSource returns the maker's locked coins on the source chain.
func (s *suiChain) CancelSource(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	return s.cancel(ctx, escrow, immutables)
}

// CancelDestination returns the resolver's fronted coins on the destination chain.
func (s *suiChain) CancelDestination(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	return s.cancel(ctx, escrow, immutables)
}

// cancel executes the cancellation entry function against a deployed escrow
// object. The Move module enforces that the cancellation window is open.
func (s *suiChain) cancel(ctx context.Context, escrow string, immutables *htlc.Immutables) (*types.Transaction, error) {
	response, err := s.executeMoveCall(ctx, "cancel",
		[]interface{}{coinTypeOf(immutables.Token)},
		[]interface{}{escrow})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chain":     s.config.Name,
		"orderHash": immutables.OrderHash,
		"escrow":    escrow,
		"digest":    response.Digest,
	}).Info("Escrow cancellation executed")

	return &types.Transaction{
		Hash:      response.Digest,
		From:      s.ResolverAddress(),
		To:        escrow,
		ChainID:   s.config.ChainID,
		OrderHash: immutables.OrderHash,
	}, nil
}
