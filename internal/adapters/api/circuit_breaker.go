package api

import (
	"errors"
	"sync"
	"time"

	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// ErrCircuitOpen is returned while the breaker refuses requests
var ErrCircuitOpen = errors.New("circuit breaker open")

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// circuitBreaker keeps a run of API failures from hammering the server.
// After maxFailures consecutive failures it opens for timeout, then lets one
// probe request through.
type circuitBreaker struct {
	maxFailures int
	timeout     time.Duration
	clock       shared.Clock

	mu          sync.Mutex
	state       circuitState
	failures    int
	lastFailure time.Time
}

func newCircuitBreaker(maxFailures int, timeout time.Duration, clock shared.Clock) *circuitBreaker {
	return &circuitBreaker{
		maxFailures: maxFailures,
		timeout:     timeout,
		clock:       clock,
	}
}

// Call runs fn unless the circuit is open. The lock is not held during fn,
// so slow retries never block other characters' requests.
func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == circuitOpen {
		if cb.clock.Now().Sub(cb.lastFailure) < cb.timeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = circuitHalfOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		// Game decision codes are the caller's problem, not an outage
		var se *StatusError
		if errors.As(err, &se) && (se.Code < 500 || se.Code == CodeContentNotFound) {
			return err
		}
		cb.failures++
		cb.lastFailure = cb.clock.Now()
		if cb.state == circuitHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = circuitOpen
		}
		return err
	}

	cb.failures = 0
	if cb.state == circuitHalfOpen {
		cb.state = circuitClosed
	}
	return nil
}
