package retry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesRetryableError(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	authErr := errs.NewWithCode(errs.ErrorTypeAuth, "session expired", 401)

	err := Do(func() error {
		calls++
		return authErr
	}, testConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var scrapeErr *errs.Error
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, errs.ErrorTypeAuth, scrapeErr.Type)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.NewWithCode(errs.ErrorTypeServerError, "internal error", 500)
	}, testConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts")
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(3)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Second}

	err := Do(func() error {
		return errs.New(errs.ErrorTypeNetwork, "timeout")
	}, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, "flaky")
		}
		return "ok", nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"network error", errs.New(errs.ErrorTypeNetwork, "x"), true},
		{"rate limit error", errs.NewWithCode(errs.ErrorTypeRateLimit, "x", 429), true},
		{"auth error", errs.NewWithCode(errs.ErrorTypeAuth, "x", 401), false},
		{"parsing error", errs.New(errs.ErrorTypeParsing, "x"), false},
		{"context canceled", context.Canceled, false},
		{"unknown error", errors.New("something"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRetryIf(tt.err))
		})
	}
}

func TestExponentialBackoffGrows(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
		Multiplier: 2.0,
	}

	d1 := eb.NextDelay(1)
	d2 := eb.NextDelay(2)
	d3 := eb.NextDelay(3)

	assert.Equal(t, time.Second, d1)
	assert.Equal(t, 2*time.Second, d2)
	assert.Equal(t, 4*time.Second, d3)
}

func TestExponentialBackoffCapped(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
		Multiplier: 10.0,
	}

	assert.Equal(t, 5*time.Second, eb.NextDelay(5))
}

func TestLinearBackoff(t *testing.T) {
	lb := &LinearBackoff{
		BaseDelay: time.Second,
		MaxDelay:  time.Minute,
		Increment: time.Second,
	}

	assert.Equal(t, time.Second, lb.NextDelay(1))
	assert.Equal(t, 2*time.Second, lb.NextDelay(2))
}

func TestWaitRespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Wait(ctx, time.Second)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestErrorTypeBackoffSelection(t *testing.T) {
	etb := NewErrorTypeBackoff()

	assert.Same(t, etb.NetworkErrorBackoff, etb.GetBackoffForError("network"))
	assert.Same(t, etb.RateLimitBackoff, etb.GetBackoffForError("rate_limit"))
	assert.Same(t, etb.ServerErrorBackoff, etb.GetBackoffForError("server_error"))
	assert.Same(t, etb.DefaultBackoff, etb.GetBackoffForError("other"))
}

// countingBackoff records how often its delay was consulted
type countingBackoff struct {
	mu    sync.Mutex
	calls int
}

func (c *countingBackoff) NextDelay(attempt int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 0
}

func (c *countingBackoff) Reset() {}

func (c *countingBackoff) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestHTTPRetrierUsesErrorTypeBackoff(t *testing.T) {
	retrier := NewHTTPRetrier(3, logger.NewNopLogger())
	rateLimitBackoff := &countingBackoff{}
	retrier.errorTypeBackoff.RateLimitBackoff = rateLimitBackoff

	calls := 0
	err := retrier.DoWithErrorType(func() error {
		calls++
		if calls == 1 {
			return errs.NewWithCode(errs.ErrorTypeRateLimit, "rate limit exceeded", 429)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	// The delay after the rate-limited attempt came from the rate limit backoff
	assert.Equal(t, 1, rateLimitBackoff.Calls())
}

func TestHTTPRetrierSharedAcrossGoroutines(t *testing.T) {
	retrier := NewHTTPRetrier(2, logger.NewNopLogger())
	retrier.errorTypeBackoff.NetworkErrorBackoff = &ConstantBackoff{Delay: time.Millisecond}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := retrier.DoWithErrorType(func() error {
				return errs.New(errs.ErrorTypeNetwork, "connection reset")
			})
			if err == nil {
				t.Error("expected error after exhausting attempts")
			}
		}()
	}
	wg.Wait()
}
