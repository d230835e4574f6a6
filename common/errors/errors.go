package errors

import "github.com/pkg/errors"

var (
	// ErrValidation indicates a malformed or incompatible swap intent.
	// Rejected before any chain interaction; no order is created.
	ErrValidation = errors.New("invalid swap intent")

	// ErrChainUnavailable indicates a transient RPC or network fault.
	// Retried with backoff at the adapter boundary before surfacing.
	ErrChainUnavailable = errors.New("chain unavailable")

	// ErrTransactionReverted indicates an on-chain assertion failure.
	// Fatal for the attempt; the order is marked failed with the cause.
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrEscrowResolutionFailed indicates a confirmed deployment whose escrow
	// reference could not be located. Funds may be locked without a tracked
	// handle, so this is surfaced distinctly and never silently retried.
	ErrEscrowResolutionFailed = errors.New("failed to resolve escrow reference")

	// ErrInvalidSecret indicates a reveal attempted with a secret that does
	// not match the order's hash lock. The order is unaffected.
	ErrInvalidSecret = errors.New("secret does not match hash lock")

	// ErrEscrowNotDeployed indicates a reveal attempted before both escrows
	// confirmed. Retryable once deployment completes.
	ErrEscrowNotDeployed = errors.New("escrow not deployed")

	// ErrWithdrawalNotOpen indicates a withdrawal attempted before the
	// escrow's private withdrawal window opened.
	ErrWithdrawalNotOpen = errors.New("withdrawal window not open")

	// ErrPartialWithdrawal indicates the destination withdrawal succeeded but
	// the source withdrawal failed. Retryable: the secret is already public
	// and the source window stays open until the source cancellation time.
	ErrPartialWithdrawal = errors.New("destination withdrawn, source withdrawal failed")

	// ErrCancellationNotOpen indicates a cancel attempted before the escrow's
	// cancellation window opened.
	ErrCancellationNotOpen = errors.New("cancellation window not open")

	// ErrUnsupportedChain indicates no adapter is registered for the chain id.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrDuplicateOrder indicates an order with the same hash already exists.
	ErrDuplicateOrder = errors.New("order already exists")

	// ErrOrderNotFound indicates no order is stored under the given hash.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTimeLocks indicates a timelock configuration violating the
	// strict ordering invariant.
	ErrInvalidTimeLocks = errors.New("invalid timelock configuration")

	// ErrNotImplemented indicates a capability the chain adapter does not provide.
	ErrNotImplemented = errors.New("functionality not implemented")
)
