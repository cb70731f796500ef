package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrOpen is returned without calling the guarded function while the breaker rejects requests.
var ErrOpen = errors.New("circuit breaker is open")

// halfOpenRetry is how often a call turned away by a busy half-open breaker checks back.
const halfOpenRetry = 10 * time.Millisecond

// Config describes when a Breaker trips and how it recovers. SuccessThreshold is both the
// number of trial calls admitted at once while half-open and the number of consecutive
// successes that close the breaker again.
type Config struct {
	Name             string        `json:"name"`
	FailThreshold    int           `json:"fail_threshold"`
	SuccessThreshold int           `json:"success_threshold"`
	Timeout          time.Duration `json:"timeout"`
	// IsFailure decides which errors count against the breaker. Nil counts every error.
	IsFailure func(err error) bool `json:"-"`
}

// Breaker guards calls to one upstream with a gobreaker state machine.
type Breaker struct {
	cb      *gobreaker.CircuitBreaker
	metrics *Metrics
}

// Metrics counts calls seen by a Breaker.
type Metrics struct {
	totalRequests    atomic.Int64
	rejectedRequests atomic.Int64
	stateChanges     atomic.Int32
}

// New creates a closed Breaker. State changes are logged at warn level.
func New(config Config, logger zerolog.Logger) *Breaker {
	b := &Breaker{metrics: &Metrics{}}

	failThreshold := uint32(max(config.FailThreshold, 1))
	isFailure := config.IsFailure

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: uint32(max(config.SuccessThreshold, 1)),
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if isFailure == nil {
				return false
			}
			return !isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.metrics.stateChanges.Add(1)
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
	return b
}

// Execute runs fn unless the breaker is open. Errors from fn are returned unchanged.
// While half-open, calls beyond the trial allowance wait for the trial outcome instead of
// failing. A waiting call gives up with the context error when ctx is done first.
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	b.metrics.totalRequests.Add(1)

	for {
		_, err := b.cb.Execute(func() (interface{}, error) {
			return nil, fn()
		})
		switch {
		case errors.Is(err, gobreaker.ErrTooManyRequests):
			timer := time.NewTimer(halfOpenRetry)
			select {
			case <-ctx.Done():
				timer.Stop()
				b.metrics.rejectedRequests.Add(1)
				return fmt.Errorf("%s: waiting for half-open trial: %w", b.cb.Name(), ctx.Err())
			case <-timer.C:
			}
		case errors.Is(err, gobreaker.ErrOpenState):
			b.metrics.rejectedRequests.Add(1)
			return fmt.Errorf("%s: %w", b.cb.Name(), ErrOpen)
		default:
			return err
		}
	}
}

// State returns "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Failures returns the current run of consecutive failures.
func (b *Breaker) Failures() int {
	return int(b.cb.Counts().ConsecutiveFailures)
}

// Metrics returns a snapshot of the breaker counters and its current state.
func (b *Breaker) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:    b.metrics.totalRequests.Load(),
		RejectedRequests: b.metrics.rejectedRequests.Load(),
		StateChanges:     b.metrics.stateChanges.Load(),
		CurrentState:     b.State(),
	}
}

// MetricsSnapshot is a point-in-time capture of breaker statistics.
type MetricsSnapshot struct {
	TotalRequests    int64
	RejectedRequests int64
	StateChanges     int32
	CurrentState     string
}
