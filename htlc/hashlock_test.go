package htlc

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashLockRoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	lock := HashLockFromSecret(secret)

	parsed, err := ParseHashLock(lock.Hex())
	require.NoError(t, err)
	require.Equal(t, lock, parsed)

	// Prefix is optional.
	parsed, err = ParseHashLock(strings.TrimPrefix(lock.Hex(), "0x"))
	require.NoError(t, err)
	require.Equal(t, lock, parsed)
}

func TestHashLockVerify(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	lock := HashLockFromSecret(secret)

	require.True(t, lock.Verify(secret))
	require.False(t, lock.Verify([]byte("ffffffffffffffffffffffffffffffff")))
	require.False(t, lock.Verify(nil))
}

func TestParseHashLockRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short", "0x1234"},
		{"long", "0x" + strings.Repeat("ab", 33)},
		{"not hex", "0x" + strings.Repeat("zz", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHashLock(tt.input)
			require.Error(t, err)
		})
	}
}

func TestParseSecret(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	raw, err := ParseSecret("0x" + hex.EncodeToString(secret))
	require.NoError(t, err)
	require.Equal(t, secret, raw)

	// Prefix is optional.
	raw, err = ParseSecret(hex.EncodeToString(secret))
	require.NoError(t, err)
	require.Equal(t, secret, raw)
}

func TestParseSecretRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short", "0xdeadbeef"},
		{"long", "0x" + strings.Repeat("ab", 33)},
		{"not hex", "0xzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSecret(tt.input)
			require.Error(t, err)
		})
	}
}
