package sui

import (
	"context"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/block-vision/sui-go-sdk/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// executeMoveCall builds, signs and executes a Move call against the escrow
// package, waiting for local execution so effects and object changes are
// available on return.
//
// Parameters:
// - ctx: the context for managing the request.
// - function: the entry function inside the escrow module.
// - typeArgs: the generic type arguments, usually the escrowed coin type.
// - args: the plain-value arguments for the call.
//
// Returns:
// - *models.SuiTransactionBlockResponse: the executed transaction response.
// - error: an error if the call could not be built, submitted or executed.
func (s *suiChain) executeMoveCall(ctx context.Context, function string, typeArgs []interface{}, args []interface{}) (*models.SuiTransactionBlockResponse, error) {
	client := s.getClient()
	if client == nil {
		return nil, errors.New("client not initialized")
	}

	s.signerMutex.RLock()
	chainSigner := s.signer
	s.signerMutex.RUnlock()

	metadata, err := client.MoveCall(ctx, models.MoveCallRequest{
		Signer:          chainSigner.Address,
		PackageObjectId: s.config.EscrowFactory,
		Module:          escrowModule,
		Function:        function,
		TypeArguments:   typeArgs,
		Arguments:       args,
		GasBudget:       defaultGasBudget,
	})
	if err != nil {
		return nil, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to build %s call: %v", function, err)
	}

	response, err := client.SignAndExecuteTransactionBlock(ctx, models.SignAndExecuteTransactionBlockRequest{
		TxnMetaData: metadata,
		PriKey:      chainSigner.PriKey,
		Options: models.SuiTransactionBlockOptions{
			ShowEffects:       true,
			ShowObjectChanges: true,
		},
		RequestType: "WaitForLocalExecution",
	})
	if err != nil {
		return nil, errors.Wrapf(relayerrors.ErrChainUnavailable, "failed to execute %s call: %v", function, err)
	}

	if response.Effects.Status.Status != "success" {
		s.logger.WithFields(logrus.Fields{
			"chain":    s.config.Name,
			"function": function,
			"digest":   response.Digest,
			"status":   response.Effects.Status.Status,
			"error":    response.Effects.Status.Error,
		}).Error("Move call execution failed")
		return nil, errors.Wrapf(relayerrors.ErrTransactionReverted, "%s: %s", function, response.Effects.Status.Error)
	}

	return &response, nil
}
