package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/logger"
)

// Retry policy defaults.
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 2 * time.Second
	DefaultMaxJitter   = time.Second
)

// ModelInvoker calls a GenerativeModel with retry on overload.
//
// Overload (HTTP 503 or an "overloaded" message) is retried with
// exponential backoff plus jitter. Other failures return immediately.
// An optional token bucket throttles every attempt.
type ModelInvoker struct {
	model       driven.GenerativeModel
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	jitter      func() time.Duration
	log         logger.Scoped
}

// InvokerOption configures a ModelInvoker.
type InvokerOption func(*ModelInvoker)

// WithRequestsPerSecond throttles model calls. Non-positive values disable throttling.
func WithRequestsPerSecond(rps float64) InvokerOption {
	return func(m *ModelInvoker) {
		if rps > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMaxAttempts sets the total number of attempts.
func WithMaxAttempts(n int) InvokerOption {
	return func(m *ModelInvoker) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first backoff delay.
func WithBaseDelay(d time.Duration) InvokerOption {
	return func(m *ModelInvoker) {
		if d >= 0 {
			m.baseDelay = d
		}
	}
}

// WithSleeper replaces the backoff sleep, for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) InvokerOption {
	return func(m *ModelInvoker) {
		m.sleep = sleep
	}
}

// WithJitter replaces the jitter source, for tests.
func WithJitter(jitter func() time.Duration) InvokerOption {
	return func(m *ModelInvoker) {
		m.jitter = jitter
	}
}

// NewModelInvoker creates an invoker over model.
func NewModelInvoker(model driven.GenerativeModel, opts ...InvokerOption) *ModelInvoker {
	m := &ModelInvoker{
		model:       model,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       sleepContext,
		jitter: func() time.Duration {
			return time.Duration(rand.Int64N(int64(DefaultMaxJitter)))
		},
		log: logger.For("invoker"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Invoke sends prompt to the model and returns the trimmed reply.
//
// Errors:
//   - domain.ErrModelOverloaded once every attempt hit overload
//   - domain.ErrModelRequest for any other model failure
//   - domain.ErrEmptyResponse when the reply is blank (not retried)
func (m *ModelInvoker) Invoke(ctx context.Context, modelID, prompt string, cfg driven.GenerationConfig) (string, error) {
	req := driven.GenerateRequest{Model: modelID, Prompt: prompt, Config: cfg}

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("%w: %w", domain.ErrModelRequest, err)
			}
		}

		text, err := m.model.Generate(ctx, req)
		if err == nil {
			text = strings.TrimSpace(text)
			if text == "" {
				return "", domain.ErrEmptyResponse
			}
			if attempt > 1 {
				m.log.Info("succeeded on attempt %d", attempt)
			}
			return text, nil
		}

		if !isOverload(err) {
			return "", fmt.Errorf("%w: %w", domain.ErrModelRequest, err)
		}
		lastErr = err

		if attempt == m.maxAttempts {
			break
		}

		delay := m.baseDelay*time.Duration(1<<(attempt-1)) + m.jitter()
		m.log.Warn("model overloaded (attempt %d/%d), retrying in %s", attempt, m.maxAttempts, delay.Round(time.Millisecond))
		if err := m.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrModelRequest, err)
		}
	}

	m.log.Error("model still overloaded after %d attempts", m.maxAttempts)
	return "", fmt.Errorf("%w after %d attempts: %w", domain.ErrModelOverloaded, m.maxAttempts, lastErr)
}

// isOverload reports whether err is worth retrying.
func isOverload(err error) bool {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "overloaded")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
