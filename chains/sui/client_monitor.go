package sui

import (
	"context"

	"github.com/atomicport/relay-lib/connectionmonitor"
	"github.com/block-vision/sui-go-sdk/sui"
	"github.com/pkg/errors"
)

// initMonitor creates and starts the connection monitor for this chain.
func (s *suiChain) initMonitor(ctx context.Context) error {
	monitor := connectionmonitor.NewConnectionMonitor(s, s.logger, s.config.Name)
	if err := monitor.Start(ctx); err != nil {
		return err
	}

	s.monitorMutex.Lock()
	s.monitor = monitor
	s.monitorMutex.Unlock()

	return nil
}

// CheckConnection checks if the RPC connection is alive.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if the connection is down.
func (s *suiChain) CheckConnection(ctx context.Context) error {
	client := s.getClient()
	if client == nil {
		return errors.New("client not initialized")
	}

	if _, err := client.SuiGetLatestCheckpointSequenceNumber(ctx); err != nil {
		return errors.Wrap(err, "failed to get latest checkpoint")
	}

	return nil
}

// Reconnect replaces the RPC client with a freshly constructed one.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if the new client fails its first health check.
func (s *suiChain) Reconnect(ctx context.Context) error {
	client := sui.NewSuiClient(s.config.RpcUrl)

	if _, err := client.SuiGetLatestCheckpointSequenceNumber(ctx); err != nil {
		return errors.Wrap(err, "new client failed health check")
	}

	s.clientMutex.Lock()
	s.client = client
	s.clientMutex.Unlock()

	return nil
}
