package htlc

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// HashLockSize is the size of a hash lock commitment in bytes.
const HashLockSize = 32

// SecretSize is the required size of a secret preimage in bytes. The escrow
// contracts on both chains reject any other length, so parsing enforces it
// up front.
const SecretSize = 32

// HashLock wraps a 32-byte keccak256 commitment to a secret.
// Presenting a preimage that hashes to the commitment is the sole
// gate for any withdrawal on either chain.
type HashLock [HashLockSize]byte

// HashLockFromSecret computes the commitment for the given secret.
//
// Parameters:
// - secret: the raw secret bytes.
//
// Returns:
// - HashLock: the keccak256 commitment of the secret.
func HashLockFromSecret(secret []byte) HashLock {
	var lock HashLock
	copy(lock[:], crypto.Keccak256(secret))
	return lock
}

// ParseHashLock parses a hex-encoded 32-byte commitment, with or without 0x prefix.
//
// Parameters:
// - s: the hex-encoded commitment.
//
// Returns:
// - HashLock: the parsed hash lock.
// - error: an error if the value is not exactly 32 hex-encoded bytes.
func ParseHashLock(s string) (HashLock, error) {
	var lock HashLock

	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return lock, errors.Wrap(err, "failed to decode hash lock hex")
	}
	if len(raw) != HashLockSize {
		return lock, errors.Errorf("invalid hash lock length: expected %d bytes, got %d", HashLockSize, len(raw))
	}

	copy(lock[:], raw)
	return lock, nil
}

// Verify reports whether the given secret is the preimage of the commitment.
// The comparison is constant time.
//
// Parameters:
// - secret: the candidate secret bytes.
//
// Returns:
// - bool: true if keccak256(secret) equals the commitment.
func (h HashLock) Verify(secret []byte) bool {
	computed := HashLockFromSecret(secret)
	return subtle.ConstantTimeCompare(h[:], computed[:]) == 1
}

// Hex returns the 0x-prefixed hex encoding of the commitment.
func (h HashLock) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Bytes returns a copy of the commitment bytes.
func (h HashLock) Bytes() []byte {
	out := make([]byte, HashLockSize)
	copy(out, h[:])
	return out
}

// ParseSecret decodes a hex-encoded secret, with or without 0x prefix.
//
// Parameters:
// - s: the hex-encoded secret.
//
// Returns:
// - []byte: the raw secret bytes.
// - error: an error if the value is not exactly 32 hex-encoded bytes.
func ParseSecret(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode secret hex")
	}
	if len(raw) != SecretSize {
		return nil, errors.Errorf("invalid secret length: expected %d bytes, got %d", SecretSize, len(raw))
	}
	return raw, nil
}
