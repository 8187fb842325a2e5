// Package resilience provides fault-tolerance patterns for the gateway:
// circuit breaker and bulkhead. Calls are never retried here; retry policy
// belongs to the caller.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig holds circuit breaker parameters. Zero values take defaults.
type BreakerConfig struct {
	MaxRequests uint32        // half-open: requests let through
	Interval    time.Duration // closed: counter reset period
	Timeout     time.Duration // open -> half-open delay
}

// NewCircuitBreaker creates a circuit breaker that trips once at least five
// calls were seen and 60% of them failed.
func NewCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsCallerAborted(err)
		},
	})
}

// abortedError marks a call that ended because its caller gave up, not
// because the protected resource failed.
type abortedError struct {
	err error
}

func (e *abortedError) Error() string {
	return "caller aborted: " + e.err.Error()
}

func (e *abortedError) Unwrap() error {
	return e.err
}

// CallerAborted wraps err so the circuit breaker does not count it as a
// failure. Use it when the caller's own context is done.
func CallerAborted(err error) error {
	if err == nil {
		return nil
	}
	return &abortedError{err: err}
}

// IsCallerAborted reports whether err was wrapped by CallerAborted.
func IsCallerAborted(err error) bool {
	var aborted *abortedError
	return errors.As(err, &aborted)
}

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency (at least 1).
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is available or context is cancelled.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}

// InFlight reports how many slots are taken.
func (b *Bulkhead) InFlight() int {
	return len(b.sem)
}
