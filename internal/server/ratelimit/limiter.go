// Package ratelimit implements the per-IP sliding-window limiter guarding the
// public register and login endpoints.
package ratelimit

import (
	"context"
	"net/netip"
	"sync"
	"time"

	"github.com/dmitrijs2005/motek/internal/logging"
)

// Window is the span over which attempts are counted.
const Window = time.Hour

// IPLimiter admits at most perHour attempts per address within any trailing
// Window. State lives in memory only, so every process keeps its own counts
// and a restart forgets them.
type IPLimiter struct {
	mu       sync.Mutex
	attempts map[netip.Addr][]time.Time

	name    string
	perHour int
	now     func() time.Time
	logger  logging.Logger
}

type Option func(*IPLimiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *IPLimiter) { l.now = now }
}

func WithLogger(logger logging.Logger) Option {
	return func(l *IPLimiter) { l.logger = logger }
}

// WithName labels log records, e.g. "login" or "register".
func WithName(name string) Option {
	return func(l *IPLimiter) { l.name = name }
}

func NewIPLimiter(perHour int, opts ...Option) *IPLimiter {
	l := &IPLimiter{
		attempts: make(map[netip.Addr][]time.Time),
		perHour:  perHour,
		now:      time.Now,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("module", "ratelimit", "limiter", l.name)
	return l
}

// Allow records an attempt from ip and reports whether it is admitted.
// Rejected attempts are not recorded, so a blocked client regains access
// exactly Window after its oldest admitted attempt.
func (l *IPLimiter) Allow(ip netip.Addr) bool {
	ip = ip.Unmap()

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	window := prune(l.attempts[ip], now)

	if len(window) >= l.perHour {
		l.attempts[ip] = window
		l.logger.Info(context.Background(), "rate limit exceeded", "ip", ip.String(), "attempts", len(window), "limit", l.perHour)
		return false
	}

	l.attempts[ip] = append(window, now)
	l.logger.Debug(context.Background(), "attempt admitted", "ip", ip.String(), "attempts", len(window)+1, "limit", l.perHour)
	return true
}

// Sweep forgets addresses with no attempts inside the window and returns how
// many were dropped.
func (l *IPLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	dropped := 0
	for ip, ts := range l.attempts {
		window := prune(ts, now)
		if len(window) == 0 {
			delete(l.attempts, ip)
			dropped++
			continue
		}
		l.attempts[ip] = window
	}
	return dropped
}

// Tracked returns the number of addresses currently held.
func (l *IPLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// prune keeps the instants younger than Window, reusing ts's backing array.
func prune(ts []time.Time, now time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if now.Sub(t) < Window {
			kept = append(kept, t)
		}
	}
	return kept
}
