package circuitbreaker

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker is open")

// State represents the breaker state.
type State int

const (
	StateClosed   State = iota // normal operation
	StateOpen                  // failing, rejecting calls
	StateHalfOpen              // probing whether the collaborator recovered
)

// Breaker guards an external collaborator: after FailureThreshold
// consecutive failures it rejects calls for OpenTimeout, then lets probes
// through until SuccessThreshold consecutive successes close it again.
type Breaker struct {
	mu            sync.Mutex
	name          string
	state         State
	failures      int
	probeHits     int
	lastFailureAt time.Time

	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	logger           *slog.Logger
}

// Config configures a breaker. Zero fields take the defaults noted inline.
type Config struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening (default 5)
	SuccessThreshold int           // half-open probes needed to close (default 2)
	OpenTimeout      time.Duration // open duration before probing (default 30s)
	Logger           *slog.Logger
}

func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Breaker{
		name:             cfg.Name,
		state:            StateClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
		logger:           cfg.Logger.With("component", "circuitbreaker", "breaker", cfg.Name),
	}
}

// Allow reports whether a call may proceed. An open breaker transitions to
// half-open once the open timeout has elapsed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.lastFailureAt) <= b.openTimeout {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
	}
	return nil
}

// RecordSuccess records a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateHalfOpen {
		b.probeHits++
		if b.probeHits >= b.successThreshold {
			b.transition(StateClosed)
		}
	}
}

// RecordFailure records a failed call.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.probeHits = 0
	b.lastFailureAt = time.Now()

	switch {
	case b.state == StateHalfOpen:
		b.transition(StateOpen)
	case b.state == StateClosed && b.failures >= b.failureThreshold:
		b.transition(StateOpen)
	}
}

// CurrentState returns the breaker state, applying the open → half-open
// timeout transition if due.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && time.Since(b.lastFailureAt) > b.openTimeout {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.probeHits = 0
	if to == StateClosed {
		b.failures = 0
	}
	b.logger.Warn("circuit breaker state change", "from", from.String(), "to", to.String())
}

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
