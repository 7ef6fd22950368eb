package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Sweep cadence for the limiter table.
const (
	sweepInterval = 5 * time.Minute
	staleAfter    = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token-bucket limiter keyed per caller. Authenticated
// requests are budgeted per session, anonymous ones per remote IP, so one
// abusive session cannot hide behind a shared NAT address. OTP issuance and
// session creation sit behind this.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	burst   int
}

// NewRateLimiter creates a limiter allowing r requests/second with bursts up
// to burst requests per caller.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		r:       r,
		burst:   burst,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = time.Now()
		return b.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.buckets[key] = &bucket{limiter: l, lastSeen: time.Now()}
	return l
}

func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(sweepInterval)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if time.Since(b.lastSeen) > staleAfter {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// limiterKey picks the budget owner for a request: the authenticated session
// when there is one, the remote address otherwise.
func limiterKey(r *http.Request) string {
	if sid, ok := SessionFromContext(r.Context()); ok {
		return "session:" + sid
	}
	return "ip:" + r.RemoteAddr
}

// Limit is the middleware handler enforcing the per-caller budget.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(limiterKey(r)).Allow() {
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
