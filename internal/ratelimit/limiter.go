// Package ratelimit bounds per-caller request rates inside a fixed trailing
// time window using a sliding-window log.
package ratelimit

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Defaults match the production configuration: 100 requests per 15 minutes.
const (
	DefaultWindow      = 15 * time.Minute
	DefaultMaxRequests = 100

	// sweepInterval is how often the background sweep prunes idle logs.
	sweepInterval = time.Minute

	// AnonymousKey is the shared bucket for callers with neither an IP nor
	// a user-agent. All such callers share one budget.
	AnonymousKey = "anonymous"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed      bool `json:"allowed"`
	Remaining    int  `json:"remaining"`
	ResetSeconds int  `json:"resetTime"`
	Total        int  `json:"totalRequests"`
}

// Limiter is a sliding-window log rate limiter keyed by caller identity.
// All access to the per-caller logs is serialized by one mutex, so the
// background sweep never races a Check on the same log.
type Limiter struct {
	logs   map[string][]time.Time
	stopCh chan struct{}
	now    func() time.Time
	window time.Duration
	max    int
	mu     sync.Mutex
	once   sync.Once
}

// New creates a limiter and starts its background sweep. Close stops it.
func New(window time.Duration, maxRequests int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	l := &Limiter{
		window: window,
		max:    maxRequests,
		logs:   make(map[string][]time.Time),
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	go l.sweepLoop()
	return l
}

// DeriveKey maps caller identity to a limiter key: IP address first, then
// user-agent, then the shared anonymous bucket.
func DeriveKey(ip, userAgent string) string {
	if ip != "" {
		return ip
	}
	if userAgent != "" {
		return userAgent
	}
	return AnonymousKey
}

// Check records a request for key if the caller is under budget and returns
// the decision. Denied requests are not recorded.
func (l *Limiter) Check(key string) Decision {
	if key == "" {
		key = AnonymousKey
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entries := l.logs[key]

	// Reset time comes from the oldest timestamp still in the pre-prune
	// window, clamped to zero.
	resetSeconds := 0
	if len(entries) > 0 {
		until := entries[0].Add(l.window).Sub(now)
		if until > 0 {
			resetSeconds = int(until.Seconds())
		}
	}

	pruned := pruneBefore(entries, now.Add(-l.window))

	if len(pruned) >= l.max {
		l.logs[key] = pruned
		return Decision{
			Allowed:      false,
			Remaining:    0,
			ResetSeconds: resetSeconds,
			Total:        len(pruned),
		}
	}

	pruned = append(pruned, now)
	l.logs[key] = pruned
	return Decision{
		Allowed:      true,
		Remaining:    l.max - len(pruned),
		ResetSeconds: resetSeconds,
		Total:        len(pruned),
	}
}

// Reset clears the log for a single caller. Administrative use only.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.logs, key)
}

// ResetAll clears every caller's log. Administrative use only.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = make(map[string][]time.Time)
}

// Stats returns a snapshot of limiter configuration and load.
func (l *Limiter) Stats() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, entries := range l.logs {
		total += len(entries)
	}
	return map[string]any{
		"window_ms":       l.window.Milliseconds(),
		"max_requests":    l.max,
		"active_callers":  len(l.logs),
		"tracked_entries": total,
	}
}

// Close stops the background sweep. Safe to call more than once.
func (l *Limiter) Close() {
	l.once.Do(func() {
		close(l.stopCh)
	})
}

// sweepLoop prunes every caller's log once per minute and drops empty logs,
// bounding memory independent of request volume.
func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	removed := 0
	for key, entries := range l.logs {
		pruned := pruneBefore(entries, cutoff)
		if len(pruned) == 0 {
			delete(l.logs, key)
			removed++
			continue
		}
		l.logs[key] = pruned
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Rate limiter sweep pruned idle callers")
	}
}

// pruneBefore drops timestamps at or before cutoff. Entries are in insertion
// order, so the first retained index bounds the copy.
func pruneBefore(entries []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(entries) && !entries[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return entries
	}
	out := make([]time.Time, len(entries)-idx)
	copy(out, entries[idx:])
	return out
}
