package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/bitelog/bite/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerClient stops calling a provider that keeps failing and fails fast
// until it has had time to recover.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[string]
	name  string
}

func NewBreakerClient(inner Client) *BreakerClient {
	return newBreakerClient(inner, gobreaker.Settings{
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	})
}

func newBreakerClient(inner Client, settings gobreaker.Settings) *BreakerClient {
	name := "llm-" + inner.Name()
	settings.Name = name

	// A caller that went away says nothing about the provider.
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		slog.Warn("circuit breaker state transition", "name", name, "from", from.String(), "to", to.String())
		metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &BreakerClient{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[string](settings),
		name:  name,
	}
}

func (b *BreakerClient) Name() string {
	return b.inner.Name()
}

func (b *BreakerClient) Complete(ctx context.Context, img Image) (string, error) {
	text, err := b.cb.Execute(func() (string, error) {
		return b.inner.Complete(ctx, img)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		slog.Warn("LLM request rejected by circuit breaker", "name", b.name, "error", err)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	}

	return text, err
}

func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Close releases the wrapped client when it holds resources.
func (b *BreakerClient) Close() error {
	if closer, ok := b.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
