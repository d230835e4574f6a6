package orchestrator

import (
	"context"
	"time"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// withRetry runs fn, retrying only transient chain faults. Any other error
// surfaces immediately; after the attempts are exhausted the last transient
// error surfaces so the caller can leave the order resumable.
//
// Parameters:
// - ctx: the context bounding all attempts.
// - logger: the logger for logging retry attempts.
// - operation: a short operation name for log correlation.
// - fn: the operation to run.
//
// Returns:
// - error: nil on success, the last error otherwise.
func (o *Orchestrator) withRetry(ctx context.Context, logger *logrus.Entry, operation string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= o.retryAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, relayerrors.ErrChainUnavailable) {
			return lastErr
		}

		logger.WithFields(logrus.Fields{
			"operation": operation,
			"attempt":   attempt,
			"error":     lastErr,
		}).Warn("Transient chain fault, will retry")

		if attempt == o.retryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.retryDelay):
		}
	}

	return lastErr
}
