package sui

import (
	"context"
	"math/big"

	"github.com/block-vision/sui-go-sdk/models"
	"github.com/pkg/errors"
)

// GetTokenBalance gets the coin balance for the given address.
// For native SUI balances, use token as empty string.
//
// Parameters:
// - ctx: the context for managing the request
// - address: the address to check balance for
// - token: the coin type, e.g. "0x2::sui::SUI"
//
// Returns:
// - *big.Int: the coin balance in base units
// - error: an error if the balance check fails
func (s *suiChain) GetTokenBalance(ctx context.Context, address string, token string) (*big.Int, error) {
	client := s.getClient()
	if client == nil {
		return nil, errors.New("client not initialized")
	}

	balance, err := client.SuiXGetBalance(ctx, models.SuiXGetBalanceRequest{
		Owner:    address,
		CoinType: coinTypeOf(token),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get coin balance")
	}

	total, ok := new(big.Int).SetString(balance.TotalBalance, 10)
	if !ok {
		return nil, errors.Errorf("invalid balance value %q", balance.TotalBalance)
	}

	return total, nil
}
