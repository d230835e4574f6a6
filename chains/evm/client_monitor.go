package evm

import (
	"context"

	"github.com/atomicport/relay-lib/connectionmonitor"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// initMonitor creates and starts the connection monitor for this chain.
func (e *evm) initMonitor(ctx context.Context) error {
	monitor := connectionmonitor.NewConnectionMonitor(e, e.logger, e.config.Name)
	if err := monitor.Start(ctx); err != nil {
		return err
	}

	e.monitorMutex.Lock()
	e.monitor = monitor
	e.monitorMutex.Unlock()

	return nil
}

// CheckConnection checks if the RPC connection is alive.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if the connection is down.
func (e *evm) CheckConnection(ctx context.Context) error {
	client := e.getClient()
	if client == nil {
		return errors.New("client not initialized")
	}

	if _, err := client.BlockNumber(ctx); err != nil {
		return errors.Wrap(err, "failed to get block number")
	}

	return nil
}

// Reconnect re-dials the configured RPC endpoint and swaps the client.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if the reconnection fails.
func (e *evm) Reconnect(ctx context.Context) error {
	client, err := ethclient.DialContext(ctx, e.config.RpcUrl)
	if err != nil {
		return errors.Wrap(err, "failed to dial RPC endpoint")
	}

	e.clientMutex.Lock()
	if e.client != nil {
		e.client.Close()
	}
	e.client = client
	e.clientMutex.Unlock()

	return nil
}
