package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// retryPolicy bounds how long we wait for a database that is still coming
// up, e.g. a PostGIS container started alongside the CLI.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
	maxDelay time.Duration
}

var connectRetry = retryPolicy{attempts: 5, backoff: 250 * time.Millisecond, maxDelay: 4 * time.Second}

// do runs fn until it succeeds, fails with a non-connection error, the
// attempts run out or ctx is done. The last error is returned unchanged.
func (p retryPolicy) do(ctx context.Context, op string, fn func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil || !isConnectionError(err) || attempt >= p.attempts || ctx.Err() != nil {
			return err
		}

		zap.L().Warn("store: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// delay doubles per attempt up to maxDelay, with +/-12.5% jitter.
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.backoff << (attempt - 1)
	if d <= 0 || d > p.maxDelay {
		d = p.maxDelay
	}
	return d - d/8 + time.Duration(rand.Int64N(int64(d/4)+1))
}

func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
