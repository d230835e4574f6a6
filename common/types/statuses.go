package types

// OrderStatus tracks a swap order through the orchestration state machine.
type OrderStatus string

const (
	// StatusBuilt is set when the order is created and awaiting the maker's signature.
	StatusBuilt OrderStatus = "BUILT"
	// StatusSigned is set when the maker's signature is attached.
	StatusSigned OrderStatus = "SIGNED"
	// StatusSrcDeployed is set when the source escrow deployment confirmed.
	StatusSrcDeployed OrderStatus = "SRC_DEPLOYED"
	// StatusDstDeployed is set when the destination escrow deployment confirmed.
	StatusDstDeployed OrderStatus = "DST_DEPLOYED"
	// StatusSecretRevealed is set when a valid secret is received.
	StatusSecretRevealed OrderStatus = "SECRET_REVEALED"
	// StatusDstWithdrawn is set when the destination withdrawal confirmed.
	// An order left in this state is a partial withdrawal: the source
	// withdrawal is still pending and safe to retry.
	StatusDstWithdrawn OrderStatus = "DST_WITHDRAWN"
	// StatusCompleted is terminal: both withdrawals confirmed.
	StatusCompleted OrderStatus = "COMPLETED"
	// StatusCancelled is terminal: escrows cancelled after their windows opened.
	StatusCancelled OrderStatus = "CANCELLED"
	// StatusFailed is terminal and reachable from any non-terminal state.
	// Prior progress (escrow references, transaction hashes) is preserved.
	StatusFailed OrderStatus = "FAILED"
)

// Terminal reports whether no further transitions are possible from the status.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}
