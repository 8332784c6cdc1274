// Package ratelimit implements a per-key sliding window counter limiter.
//
// Each key keeps the request counts of the current and the previous fixed
// window. The previous count is weighted by how much of it still overlaps
// the sliding window, so a burst straddling a window boundary is still
// limited. Keys are spread over independently locked shards, and keys that
// stay idle for PurgeAfter windows are swept from their shard.
package ratelimit

import (
	"hash/maphash"
	"math"
	"sync"
	"time"
)

const (
	DefaultLimit      = 60
	DefaultWindow     = time.Minute
	DefaultPurgeAfter = 5

	// minPurgeAfter keeps a key until its previous window no longer counts.
	minPurgeAfter = 2

	shardCount = 32
)

// Config configures a Limiter. Zero values fall back to the defaults.
type Config struct {
	Limit      int
	Window     time.Duration
	PurgeAfter int
	// Now overrides the clock.
	Now func() time.Time
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Stats describes the limiter configuration and its tracked keys.
type Stats struct {
	Limit         int     `json:"limit"`
	WindowSeconds float64 `json:"window_seconds"`
	ActiveKeys    int     `json:"active_keys"`
}

type window struct {
	start time.Time
	prev  int
	cur   int
}

// advance moves w to the fixed window containing now.
func (w *window) advance(now time.Time, size time.Duration) {
	n := now.Sub(w.start) / size
	if n <= 0 {
		return
	}

	if n == 1 {
		w.prev = w.cur
	} else {
		w.prev = 0
	}
	w.cur = 0
	w.start = w.start.Add(n * size)
}

// estimate is the weighted request count of the sliding window ending at now.
func (w *window) estimate(now time.Time, size time.Duration) float64 {
	overlap := float64(size-now.Sub(w.start)) / float64(size)
	return float64(w.prev)*overlap + float64(w.cur)
}

type shard struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// Limiter allows about Limit requests per key in any sliding window.
type Limiter struct {
	limit      int
	window     time.Duration
	purgeAfter time.Duration
	now        func() time.Time
	seed       maphash.Seed
	shards     [shardCount]*shard
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.PurgeAfter <= 0 {
		cfg.PurgeAfter = DefaultPurgeAfter
	}
	if cfg.PurgeAfter < minPurgeAfter {
		cfg.PurgeAfter = minPurgeAfter
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	l := &Limiter{
		limit:      cfg.Limit,
		window:     cfg.Window,
		purgeAfter: time.Duration(cfg.PurgeAfter) * cfg.Window,
		now:        cfg.Now,
		seed:       maphash.MakeSeed(),
	}

	now := cfg.Now()
	for i := range l.shards {
		l.shards[i] = &shard{
			windows:   make(map[string]*window),
			lastSweep: now,
		}
	}

	return l
}

func (l *Limiter) shardFor(key string) *shard {
	return l.shards[maphash.String(l.seed, key)%shardCount]
}

// Allow counts a request for key and reports whether it fits in the sliding
// window ending now. A denied request is not counted.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	l.sweep(s, now)

	w, ok := s.windows[key]
	if !ok {
		w = &window{start: now}
		s.windows[key] = w
	}
	w.advance(now, l.window)

	if w.estimate(now, l.window)+1 > float64(l.limit) {
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: l.retryAfter(w, now),
		}
	}

	w.cur++

	remaining := int(math.Floor(float64(l.limit) - w.estimate(now, l.window)))
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: remaining,
	}
}

// retryAfter returns how long until one more request fits, assuming no
// further requests arrive for the key meanwhile.
func (l *Limiter) retryAfter(w *window, now time.Time) time.Duration {
	size := float64(l.window)
	elapsed := float64(now.Sub(w.start))
	budget := float64(l.limit - 1)

	var wait float64
	if float64(w.cur) > budget {
		// Only fits in the next window, once the current count has decayed:
		// cur*(size-e)/size <= budget.
		wait = size - elapsed + size*(1-budget/float64(w.cur))
	} else {
		// prev*(size-e)/size <= budget-cur within the current window.
		wait = size*(1-(budget-float64(w.cur))/float64(w.prev)) - elapsed
	}

	d := time.Duration(math.Ceil(wait))
	if d < 0 {
		d = 0
	}
	return d
}

// sweep drops idle keys at most once per window. Callers hold s.mu.
func (l *Limiter) sweep(s *shard, now time.Time) {
	if now.Sub(s.lastSweep) < l.window {
		return
	}

	for key, w := range s.windows {
		if now.Sub(w.start) >= l.purgeAfter {
			delete(s.windows, key)
		}
	}

	s.lastSweep = now
}

// Stats returns the limiter configuration and the number of tracked keys.
func (l *Limiter) Stats() Stats {
	var active int
	for _, s := range l.shards {
		s.mu.Lock()
		active += len(s.windows)
		s.mu.Unlock()
	}

	return Stats{
		Limit:         l.limit,
		WindowSeconds: l.window.Seconds(),
		ActiveKeys:    active,
	}
}
