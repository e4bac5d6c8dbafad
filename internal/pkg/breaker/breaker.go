// Package breaker wraps LLM calls in a circuit breaker so a failing
// upstream provider stops being hammered by every Generator worker at
// once, grounded on the same gobreaker/v2 usage cartographus applies to
// its NATS publisher.
package breaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

// New builds a circuit breaker named for the collaborator it protects
// (e.g. "llm-chat", "llm-embeddings").
func New(name string) *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

// Do runs fn through cb, discarding the generic zero-value result and
// returning only the error — the shape every LLM streaming call in this
// codebase needs, since the useful output is delivered incrementally
// through a callback rather than returned.
func Do(cb *gobreaker.CircuitBreaker[any], fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := cb.Execute(func() (any, error) {
			return nil, fn(ctx)
		})
		return err
	}
}
