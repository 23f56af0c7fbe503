// Package ratelimit provides a wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with convenience methods.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter that admits one event per interval with no burst.
// A non-positive interval admits everything.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(every(interval), 1),
	}
}

// Delay reserves the next token and returns how long the caller must wait
// before acting on it. The reservation is always kept.
func (l *Limiter) Delay() time.Duration {
	return l.DelayFrom(time.Now())
}

// DelayFrom is Delay measured from now.
func (l *Limiter) DelayFrom(now time.Time) time.Duration {
	return l.limiter.ReserveN(now, 1).DelayFrom(now)
}

// Interval returns the time between tokens.
func (l *Limiter) Interval() time.Duration {
	lim := l.limiter.Limit()
	if lim == rate.Inf || lim <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(lim))
}

func every(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}
