package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ZeroAddress is the conventional native-token placeholder address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// GetTokenBalance gets token balance for the given address.
// For native token balances, use token as empty string or ZeroAddress.
//
// Parameters:
// - ctx: the context for managing the request
// - address: the address to check balance for
// - token: the token contract address
//
// Returns:
// - *big.Int: the token balance
// - error: an error if the balance check fails
func (e *evm) GetTokenBalance(ctx context.Context, address string, token string) (*big.Int, error) {
	client := e.getClient()
	if client == nil {
		return nil, errors.New("client not initialized")
	}

	// Check if requesting native token balance
	if token == "" || token == ZeroAddress {
		balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get native token balance")
		}
		return balance, nil
	}

	data, err := e.erc20Abi.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack balanceOf data")
	}

	tokenAddr := common.HexToAddress(token)
	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &tokenAddr,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call balanceOf")
	}

	if len(result) == 0 {
		return nil, errors.New("empty result from balanceOf call")
	}

	return new(big.Int).SetBytes(result), nil
}
