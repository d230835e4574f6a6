package sui

import (
	"strconv"
	"strings"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/block-vision/sui-go-sdk/models"
	"github.com/pkg/errors"
)

// suiCoinType is the coin type of the native SUI token.
const suiCoinType = "0x2::sui::SUI"

// coinTypeOf maps the order's token field to a Move coin type. An empty
// token means the native coin.
func coinTypeOf(token string) string {
	if token == "" {
		return suiCoinType
	}
	return token
}

// escrowFromChanges finds the escrow object created by a deployment
// transaction. The escrow package publishes a single Escrow struct, so the
// created object whose type lives in the escrow module is the one.
//
// Parameters:
// - response: the executed deployment transaction response.
//
// Returns:
// - string: the created escrow object ID.
// - error: ErrEscrowResolutionFailed when no escrow object was created.
func escrowFromChanges(response *models.SuiTransactionBlockResponse) (string, error) {
	for _, change := range response.ObjectChanges {
		if change.Type != "created" {
			continue
		}
		if strings.Contains(change.ObjectType, "::"+escrowModule+"::Escrow") {
			return change.ObjectId, nil
		}
	}

	return "", errors.Wrapf(relayerrors.ErrEscrowResolutionFailed,
		"no escrow object among %d object changes in %s", len(response.ObjectChanges), response.Digest)
}

// timestampOf converts the response's millisecond timestamp to unix seconds.
func timestampOf(response *models.SuiTransactionBlockResponse) (uint64, error) {
	if response.TimestampMs == "" {
		return 0, errors.New("transaction response has no timestamp")
	}
	ms, err := strconv.ParseUint(response.TimestampMs, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse transaction timestamp")
	}
	return ms / 1000, nil
}
