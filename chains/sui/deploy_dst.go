package sui

import (
	"context"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/sirupsen/logrus"
)

// DeployDestination locks the resolver's own coins in a fresh destination
// escrow object. The entry function splits the amount and the safety deposit
// from the resolver's coins, so no prior approval step exists on this chain.
//
// Parameters:
// - ctx: the context for managing the request.
// - immutables: the escrow parameter set built by the orchestrator from the
//   confirmed source order, with the resolver's own address as taker.
//
// Returns:
// - *types.DeployResult: the confirmed transaction, escrow object ID and deployment timestamp.
// - error: an error if submission, execution or escrow resolution fails.
func (s *suiChain) DeployDestination(ctx context.Context, immutables *htlc.Immutables) (*types.DeployResult, error) {
	response, err := s.executeMoveCall(ctx, "deploy_dst",
		[]interface{}{coinTypeOf(immutables.Token)},
		[]interface{}{
			immutables.OrderHash,
			immutables.HashLock.Hex(),
			immutables.Maker,
			immutables.Taker,
			immutables.Amount.String(),
			immutables.SafetyDeposit.String(),
			immutables.TimeLocks.Pack(0, htlc.SideDestination).String(),
		})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chain":     s.config.Name,
		"orderHash": immutables.OrderHash,
		"digest":    response.Digest,
	}).Info("Destination escrow deployment executed")

	escrow, err := escrowFromChanges(response)
	if err != nil {
		return nil, err
	}

	deployedAt, err := timestampOf(response)
	if err != nil {
		return nil, err
	}

	return &types.DeployResult{
		Tx: &types.Transaction{
			Hash:      response.Digest,
			From:      s.ResolverAddress(),
			To:        s.config.EscrowFactory,
			ChainID:   s.config.ChainID,
			OrderHash: immutables.OrderHash,
		},
		Escrow:     escrow,
		DeployedAt: deployedAt,
	}, nil
}
