package types

import (
	"encoding/json"
	"time"
)

// UserIntent is a user-submitted swap request. Immutable once accepted.
//
// Fields:
// - SrcChainID: the chain id the maker's funds are locked on.
// - DstChainID: the chain id the receiver is paid on.
// - UserAddress: the maker's address in the source chain's format.
// - Receiver: the receiver's address in the destination chain's format.
// - SrcToken: the source asset identifier.
// - DstToken: the destination asset identifier.
// - Amount: the token amount as a decimal string; chain-native precision is applied by the adapters.
// - HashLock: the hex-encoded keccak256 commitment of the maker's secret.
type UserIntent struct {
	SrcChainID  uint64 `json:"srcChainId"`
	DstChainID  uint64 `json:"dstChainId"`
	UserAddress string `json:"userAddress"`
	Receiver    string `json:"receiver"`
	SrcToken    string `json:"srcToken"`
	DstToken    string `json:"dstToken"`
	Amount      string `json:"amount"`
	HashLock    string `json:"hashLock"`
}

// EscrowSide holds the per-chain escrow references of one swap half.
//
// Fields:
// - Escrow: the escrow contract address (EVM) or object id (SUI).
// - DeployTx: the deployment transaction reference.
// - DeployedAt: the unix timestamp at which the deployment confirmed.
// - WithdrawTx: the withdrawal transaction reference, set on secret reveal.
// - CancelTx: the cancellation transaction reference, set on cancel.
type EscrowSide struct {
	Escrow     string `json:"escrow,omitempty"`
	DeployTx   string `json:"deployTx,omitempty"`
	DeployedAt uint64 `json:"deployedAt,omitempty"`
	WithdrawTx string `json:"withdrawTx,omitempty"`
	CancelTx   string `json:"cancelTx,omitempty"`
}

// SwapOrder is the order of record for one cross-chain swap.
// All mutations are append-only: transaction references recorded during
// orchestration are never rolled back, so operators can always reconstruct
// how far a swap progressed.
type SwapOrder struct {
	OrderHash string      `json:"orderHash"`
	Intent    UserIntent  `json:"intent"`
	Salt      string      `json:"salt"`
	Status    OrderStatus `json:"status"`
	Signature string      `json:"signature,omitempty"`
	Secret    string      `json:"secret,omitempty"`

	Src EscrowSide `json:"src"`
	Dst EscrowSide `json:"dst"`

	FailureReason string     `json:"failureReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	ExecutedAt    *time.Time `json:"executedAt,omitempty"`
}

// SigningPayload is returned from order building: the order hash plus the
// chain-appropriate payload the maker signs (an EIP-712 struct for
// EVM-originated orders, sponsored transaction bytes for Sui-originated ones).
type SigningPayload struct {
	OrderHash string          `json:"orderHash"`
	ChainType ChainType       `json:"chainType"`
	Payload   json.RawMessage `json:"payload"`
}
