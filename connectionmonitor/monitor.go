package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultProbeInterval defines interval between connection health probes
	defaultProbeInterval = 30 * time.Second
	// reconnectDelay defines the pause between reconnection attempts
	reconnectDelay = 5 * time.Second
	// maxReconnectAttempts defines maximum number of reconnection attempts per probe
	maxReconnectAttempts = 3
)

// ConnectionMonitor represents connection state monitoring interface
type ConnectionMonitor interface {
	// Start starts connection monitoring
	Start(ctx context.Context) error
	// Stop stops connection monitoring
	Stop()
}

// BlockchainClient represents blockchain client interface
type BlockchainClient interface {
	// CheckConnection checks if connection is alive
	CheckConnection(ctx context.Context) error
	// Reconnect attempts to reconnect to blockchain node
	Reconnect(ctx context.Context) error
}

type connectionMonitor struct {
	client    BlockchainClient
	logger    *logrus.Logger
	chainName string
	interval  time.Duration

	stateMutex sync.Mutex
	stopChan   chan struct{}
	running    bool
}

// NewConnectionMonitor creates a new connection monitor instance.
//
// Parameters:
// - client: the blockchain client to monitor.
// - logger: the logger for logging purposes.
// - chainName: the name of the blockchain chain.
//
// Returns:
// - ConnectionMonitor: the new connection monitor instance.
func NewConnectionMonitor(
	client BlockchainClient,
	logger *logrus.Logger,
	chainName string,
) ConnectionMonitor {
	return &connectionMonitor{
		client:    client,
		logger:    logger,
		chainName: chainName,
		interval:  defaultProbeInterval,
		stopChan:  make(chan struct{}),
	}
}

// Start starts connection monitoring in a background goroutine.
//
// Parameters:
// - ctx: the context bounding the monitoring loop.
//
// Returns:
// - error: an error if the connection monitor is already running.
func (m *connectionMonitor) Start(ctx context.Context) error {
	m.stateMutex.Lock()
	defer m.stateMutex.Unlock()

	if m.running {
		return errors.Errorf("connection monitor is already running for chain %s", m.chainName)
	}
	m.running = true

	go m.loop(ctx)
	return nil
}

// Stop stops connection monitoring.
func (m *connectionMonitor) Stop() {
	m.stateMutex.Lock()
	defer m.stateMutex.Unlock()

	if !m.running {
		return
	}

	close(m.stopChan)
	m.running = false
}

// loop probes the connection on every tick until stopped.
func (m *connectionMonitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("chain", m.chainName).Info("Connection monitoring stopped due to context cancellation")
			return

		case <-m.stopChan:
			m.logger.WithField("chain", m.chainName).Info("Connection monitoring stopped")
			return

		case <-ticker.C:
			if err := m.probe(ctx); err != nil {
				m.logger.WithFields(logrus.Fields{
					"chain": m.chainName,
					"error": err,
				}).Error("Connection probe failed")
			}
		}
	}
}

// probe checks the connection and drives the reconnection attempts when the
// check fails.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if the connection could not be restored.
func (m *connectionMonitor) probe(ctx context.Context) error {
	if err := m.client.CheckConnection(ctx); err == nil {
		m.logger.WithField("chain", m.chainName).Debug("Connection probe successful")
		return nil
	} else {
		m.logger.WithFields(logrus.Fields{
			"chain": m.chainName,
			"error": err,
		}).Warn("Connection check failed, attempting to reconnect")
	}

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		err := m.client.Reconnect(ctx)
		if err == nil {
			m.logger.WithFields(logrus.Fields{
				"chain":   m.chainName,
				"attempt": attempt,
			}).Info("Client successfully reconnected")
			return nil
		}

		m.logger.WithFields(logrus.Fields{
			"chain":   m.chainName,
			"attempt": attempt,
			"error":   err,
		}).Error("Reconnection attempt failed")

		if attempt == maxReconnectAttempts {
			return errors.Wrapf(err, "failed to reconnect to chain %s", m.chainName)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}

	return nil
}
