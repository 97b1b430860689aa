package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"legendemer/internal/domain"
)

// PollPolicy bounds the wait for a video operation. The first status query
// happens after InitialInterval; later ones back off by Multiplier up to
// MaxInterval. Polling stops after MaxAttempts queries or once Timeout has
// elapsed, whichever comes first.
type PollPolicy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxAttempts     int
	Timeout         time.Duration
}

// DefaultPollPolicy keeps the 5 second cadence for the first queries and gives
// up after ten minutes.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialInterval: 5 * time.Second,
		Multiplier:      1.5,
		MaxInterval:     30 * time.Second,
		MaxAttempts:     60,
		Timeout:         10 * time.Minute,
	}
}

func (p PollPolicy) withDefaults() PollPolicy {
	d := DefaultPollPolicy()
	if p.InitialInterval <= 0 {
		p.InitialInterval = d.InitialInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = d.Multiplier
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = max(d.MaxInterval, p.InitialInterval)
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	return p
}

func (p PollPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = p.Multiplier
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.Timeout
	b.RandomizationFactor = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(p.MaxAttempts))
}

type pollFunc func(ctx context.Context, op domain.AsyncOperation) (*domain.AsyncOperation, error)

// await waits one interval, queries the status, and repeats until the
// operation is done. A failed status query ends the wait immediately.
func (p PollPolicy) await(ctx context.Context, op domain.AsyncOperation, poll pollFunc, onAttempt func(int)) (*domain.AsyncOperation, error) {
	b := p.backOff()
	current := op
	for attempt := 1; ; attempt++ {
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return nil, fmt.Errorf("operation %s after %d status queries: %w", op.Name, attempt-1, domain.ErrPollTimeout)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if onAttempt != nil {
			onAttempt(attempt)
		}
		next, err := poll(ctx, current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("operation %s: empty status", op.Name)
		}
		if next.Name == "" {
			next.Name = current.Name
		}
		if next.Done {
			return next, nil
		}
		current = *next
	}
}
