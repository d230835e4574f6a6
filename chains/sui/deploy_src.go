package sui

import (
	"context"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/atomicport/relay-lib/htlc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DeploySource locks the maker's coins in a fresh source escrow object.
// The maker's funds move under the maker's signature over the order payload;
// the entry function verifies it against the maker address before pulling
// the coins, and the resolver attaches the safety deposit from its own gas
// coin.
//
// Parameters:
// - ctx: the context for managing the request.
// - immutables: the escrow parameter set built by the orchestrator.
// - signature: the maker's base64-encoded signature over the order payload.
//
// Returns:
// - *types.DeployResult: the confirmed transaction, escrow object ID and deployment timestamp.
// - error: an error if submission, execution or escrow resolution fails.
func (s *suiChain) DeploySource(ctx context.Context, immutables *htlc.Immutables, signature string) (*types.DeployResult, error) {
	if signature == "" {
		return nil, errors.New("empty order signature")
	}

	response, err := s.executeMoveCall(ctx, "deploy_src",
		[]interface{}{coinTypeOf(immutables.Token)},
		[]interface{}{
			immutables.OrderHash,
			immutables.HashLock.Hex(),
			immutables.Maker,
			immutables.Taker,
			immutables.Amount.String(),
			immutables.SafetyDeposit.String(),
			immutables.TimeLocks.Pack(0, htlc.SideSource).String(),
			signature,
		})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chain":     s.config.Name,
		"orderHash": immutables.OrderHash,
		"digest":    response.Digest,
	}).Info("Source escrow deployment executed")

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
