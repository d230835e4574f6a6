// Package orderid derives the canonical order identity for a swap.
//
// EVM-originated orders hash as EIP-712 typed data so the same digest the
// maker signs doubles as the correlation key for the whole swap lifecycle.
// Sui-originated orders have no on-chain typed-order equivalent, so their
// identity is the keccak256 of a canonical JSON rendering of the intent.
//
// Identity is nonce-randomized: every build draws a fresh salt, so
// resubmitting an identical intent always produces a distinct order hash.
package orderid

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/atomicport/relay-lib/common/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	domainName    = "AtomicPortRelay"
	domainVersion = "1"
)

// Identity is the derived order identity plus the payload the maker signs.
type Identity struct {
	// Hash is the 0x-prefixed hex order hash.
	Hash string
	// Salt is the 0x-prefixed hex salt drawn for this build.
	Salt string
	// SigningPayload is the chain-appropriate signing payload: the full
	// EIP-712 typed data for EVM-originated orders, the canonical order
	// JSON for Sui-originated ones.
	SigningPayload json.RawMessage
}

// NewSalt draws a fresh 32-byte salt from a random UUID.
//
// Returns:
// - [32]byte: the salt.
func NewSalt() [32]byte {
	var salt [32]byte
	id := uuid.New()
	copy(salt[:], crypto.Keccak256(id[:]))
	return salt
}

// Compute derives the order identity for the given intent and salt.
//
// Parameters:
// - intent: the validated swap intent.
// - salt: the per-build salt.
// - origin: the chain family the order originates on (the source chain's family).
//
// Returns:
// - *Identity: the order hash, salt and signing payload.
// - error: an error if hashing fails.
func Compute(intent *types.UserIntent, salt [32]byte, origin types.ChainType) (*Identity, error) {
	switch origin {
	case types.EVM:
		return computeTypedData(intent, salt)
	case types.SUI:
		return computeContentHash(intent, salt)
	default:
		return nil, errors.Errorf("unsupported origin chain type: %s", origin)
	}
}

// computeTypedData hashes the intent as an EIP-712 typed-data struct under
// the relay's signing domain on the source chain.
func computeTypedData(intent *types.UserIntent, salt [32]byte) (*Identity, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"CrossChainOrder": []apitypes.Type{
				{Name: "salt", Type: "bytes32"},
				{Name: "maker", Type: "address"},
				{Name: "receiver", Type: "string"},
				{Name: "srcChainId", Type: "uint256"},
				{Name: "dstChainId", Type: "uint256"},
				{Name: "srcToken", Type: "address"},
				{Name: "dstToken", Type: "string"},
				{Name: "amount", Type: "string"},
				{Name: "hashLock", Type: "bytes32"},
			},
		},
		PrimaryType: "CrossChainOrder",
		Domain: apitypes.TypedDataDomain{
			Name:    domainName,
			Version: domainVersion,
			ChainId: math.NewHexOrDecimal256(int64(intent.SrcChainID)),
		},
		Message: apitypes.TypedDataMessage{
			"salt":       hexutil.Encode(salt[:]),
			"maker":      intent.UserAddress,
			"receiver":   intent.Receiver,
			"srcChainId": new(big.Int).SetUint64(intent.SrcChainID),
			"dstChainId": new(big.Int).SetUint64(intent.DstChainID),
			"srcToken":   intent.SrcToken,
			"dstToken":   intent.DstToken,
			"amount":     intent.Amount,
			"hashLock":   normalizeHex(intent.HashLock),
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash typed data")
	}

	payload, err := json.Marshal(typedData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal typed data")
	}

	return &Identity{
		Hash:           hexutil.Encode(digest),
		Salt:           hexutil.Encode(salt[:]),
		SigningPayload: payload,
	}, nil
}

// canonicalOrder is the deterministic rendering hashed for Sui-originated
// orders. Field order is fixed by the struct definition.
type canonicalOrder struct {
	Salt       string `json:"salt"`
	Maker      string `json:"maker"`
	Receiver   string `json:"receiver"`
	SrcChainID uint64 `json:"srcChainId"`
	DstChainID uint64 `json:"dstChainId"`
	SrcToken   string `json:"srcToken"`
	DstToken   string `json:"dstToken"`
	Amount     string `json:"amount"`
	HashLock   string `json:"hashLock"`
}

// computeContentHash hashes a canonical JSON rendering of the intent plus salt.
func computeContentHash(intent *types.UserIntent, salt [32]byte) (*Identity, error) {
	canonical := canonicalOrder{
		Salt:       hexutil.Encode(salt[:]),
		Maker:      intent.UserAddress,
		Receiver:   intent.Receiver,
		SrcChainID: intent.SrcChainID,
		DstChainID: intent.DstChainID,
		SrcToken:   intent.SrcToken,
		DstToken:   intent.DstToken,
		Amount:     intent.Amount,
		HashLock:   normalizeHex(intent.HashLock),
	}

	payload, err := json.Marshal(canonical)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal canonical order")
	}

	digest := crypto.Keccak256(payload)

	return &Identity{
		Hash:           hexutil.Encode(digest),
		Salt:           hexutil.Encode(salt[:]),
		SigningPayload: payload,
	}, nil
}

// normalizeHex lowercases a hex string and ensures a 0x prefix.
func normalizeHex(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "0x"))
	return fmt.Sprintf("0x%s", s)
}
