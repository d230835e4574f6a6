package types

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ScaleAmount converts a decimal string amount into base units for a token
// with the given precision. The decimals value always comes from chain
// configuration, never from call sites.
//
// Parameters:
// - amount: the human-readable decimal amount, e.g. "100" or "0.25".
// - decimals: the token's decimal precision, e.g. 6 for USDC or 9 for SUI coins.
//
// Returns:
// - *big.Int: the amount in base units.
// - error: an error if the amount is malformed, negative or over-precise.
func ScaleAmount(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, errors.New("negative amount")
	}

	whole := amount
	frac := ""
	if idx := strings.IndexByte(amount, '.'); idx >= 0 {
		whole, frac = amount[:idx], amount[idx+1:]
	}
	if len(frac) > int(decimals) {
		return nil, errors.Errorf("amount %s exceeds %d decimal places", amount, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	scaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Errorf("invalid decimal amount: %s", amount)
	}

	return scaled, nil
}
