// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit paces calls to external sources.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between successive calls. It wraps a
// token bucket with burst 1, so the first call passes immediately and each
// later call waits until interval has elapsed since the previous one.
// A Pacer is safe for concurrent use.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
	name     string
}

// NewPacer returns a Pacer for the given interval. A non-positive interval
// disables pacing.
func NewPacer(name string, interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
		name:     name,
	}
}

// Wait blocks until the next call may proceed. It returns an error if ctx
// is cancelled first.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing %s: %w", p.name, err)
	}
	return nil
}

// Interval returns the configured minimum interval.
func (p *Pacer) Interval() time.Duration {
	if p == nil {
		return 0
	}
	return p.interval
}
