package sui

import (
	"context"
	"encoding/json"

	"github.com/atomicport/relay-lib/htlc"
	"github.com/block-vision/sui-go-sdk/models"
	"github.com/pkg/errors"
)

// signingPayload is what a Sui maker signs to authorize a source deployment.
// The transaction bytes are pre-built by the resolver, which also sponsors
// the gas, so the maker only contributes the authorizing signature.
type signingPayload struct {
	TxBytes   string `json:"txBytes"`
	PackageID string `json:"packageId"`
	Function  string `json:"function"`
	OrderHash string `json:"orderHash"`
}

// BuildSigningPayload builds the sponsored transaction bytes the maker must
// sign before the source escrow can be deployed on this chain.
//
// Parameters:
// - ctx: the context for managing the request.
// - immutables: the escrow parameter set the payload commits to.
//
// Returns:
// - json.RawMessage: the chain-specific signing payload.
// - error: an error if the transaction could not be built.
func (s *suiChain) BuildSigningPayload(ctx context.Context, immutables *htlc.Immutables) (json.RawMessage, error) {
	client := s.getClient()
	if client == nil {
		return nil, errors.New("client not initialized")
	}

	s.signerMutex.RLock()
	sponsor := s.signer.Address
	s.signerMutex.RUnlock()

	metadata, err := client.MoveCall(ctx, models.MoveCallRequest{
		Signer:          sponsor,
		PackageObjectId: s.config.EscrowFactory,
		Module:          escrowModule,
		Function:        "deploy_src",
		TypeArguments:   []interface{}{coinTypeOf(immutables.Token)},
		Arguments: []interface{}{
			immutables.OrderHash,
			immutables.HashLock.Hex(),
			immutables.Maker,
			immutables.Taker,
			immutables.Amount.String(),
			immutables.SafetyDeposit.String(),
			immutables.TimeLocks.Pack(0, htlc.SideSource).String(),
			"0x", // signature slot, filled once the maker signs
		},
		GasBudget: defaultGasBudget,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build signing payload transaction")
	}

	payload, err := json.Marshal(signingPayload{
		TxBytes:   metadata.TxBytes,
		PackageID: s.config.EscrowFactory,
		Function:  "deploy_src",
		OrderHash: immutables.OrderHash,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal signing payload")
	}

	return payload, nil
}
