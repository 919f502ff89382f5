package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultLimiterCleanup = 5 * time.Minute

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalIPLimiter keeps one token bucket per IP in process memory. It is used
// when no Redis is configured, so limits are per replica.
type LocalIPLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// NewLocalIPLimiter creates a LocalIPLimiter and starts evicting idle buckets.
// Call Stop to end the background goroutine.
func NewLocalIPLimiter(rps float64, burst int) *LocalIPLimiter {
	l := &LocalIPLimiter{
		rps:             rate.Limit(rps),
		burst:           burst,
		limiters:        make(map[string]*ipLimiter),
		cleanupInterval: defaultLimiterCleanup,
		stopCh:          make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// AllowIP consumes one token for ip.
func (l *LocalIPLimiter) AllowIP(_ context.Context, ip string) (*RateLimitResult, error) {
	now := time.Now()
	limiter := l.get(ip, now)

	res := &RateLimitResult{
		Limit:   l.burst,
		ResetAt: now.Add(time.Duration(float64(time.Second) / float64(l.rps))),
	}

	if limiter.AllowN(now, 1) {
		res.Allowed = true
		res.Remaining = int64(math.Floor(limiter.TokensAt(now)))
		return res, nil
	}

	retry := math.Ceil(1.0 / float64(l.rps))
	if retry < 1 {
		retry = 1
	}
	res.RetryAfter = time.Duration(retry) * time.Second
	return res, nil
}

// Len returns the number of tracked IPs.
func (l *LocalIPLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Stop ends the cleanup goroutine.
func (l *LocalIPLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LocalIPLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.limiters[ip]; ok {
		entry.lastAccess = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters[ip] = &ipLimiter{limiter: limiter, lastAccess: now}
	return limiter
}

func (l *LocalIPLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

// evictIdle drops buckets untouched for two cleanup intervals.
func (l *LocalIPLimiter) evictIdle(now time.Time) {
	ttl := l.cleanupInterval * 2

	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > ttl {
			delete(l.limiters, ip)
		}
	}
}
