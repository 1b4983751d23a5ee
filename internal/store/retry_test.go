package store

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = retryPolicy{attempts: 3, backoff: time.Millisecond, maxDelay: 2 * time.Millisecond}

func dialErr() error {
	return eris.Wrap(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, "postgres: ping")
}

func TestRetryPolicy_SucceedsAfterConnectionErrors(t *testing.T) {
	calls := 0
	err := fastRetry.do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return dialErr()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_GivesUp(t *testing.T) {
	calls := 0
	err := fastRetry.do(context.Background(), "test", func(context.Context) error {
		calls++
		return dialErr()
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_OtherErrorsAreFinal(t *testing.T) {
	calls := 0
	err := fastRetry.do(context.Background(), "test", func(context.Context) error {
		calls++
		return eris.New("postgres: parse config")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastRetry.do(ctx, "test", func(context.Context) error {
		calls++
		cancel()
		return dialErr()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := retryPolicy{attempts: 10, backoff: 100 * time.Millisecond, maxDelay: time.Second}
	tests := []struct {
		attempt int
		base    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{60, time.Second},
	}
	for _, tt := range tests {
		d := p.delay(tt.attempt)
		assert.GreaterOrEqual(t, d, tt.base-tt.base/8, "attempt %d", tt.attempt)
		assert.LessOrEqual(t, d, tt.base+tt.base/8, "attempt %d", tt.attempt)
	}
}
