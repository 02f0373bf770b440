package main

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juju/ratelimit"
)

// Per-client rate limiting

type RateLimiter struct {
	clients map[string]*ratelimit.Bucket
	mu      sync.RWMutex
	done    chan struct{}
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*ratelimit.Bucket),
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			// Create bucket: 3 tokens per second, max 1000 tokens
			bucket = ratelimit.NewBucketWithRate(3, 1000)
			rl.clients[clientIP] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket
}

// cleanup removes idle clients (full buckets) every 30 minutes.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, bucket := range rl.clients {
				if bucket.Available() == bucket.Capacity() {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop terminates the background cleanup.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// getTokenCost weighs endpoints by how much upstream work they can trigger.
func getTokenCost(r *http.Request) int64 {
	path := r.URL.Path

	switch path {
	case "/":
		return 0
	case "/favicon.ico":
		return 0
	case "/health":
		return 5
	case "/health/apis":
		return 50 // probes both external APIs
	case "/metrics":
		return 5
	case "/interactions/check":
		return 100 // may fan out to OpenFDA per pair
	case "/schedule":
		return 100
	}

	switch {
	case strings.HasPrefix(path, "/medications/search/"):
		return 100 // fans out to RxNorm and OpenFDA
	case strings.HasPrefix(path, "/medications/"):
		return 50
	case strings.HasPrefix(path, "/user-medications"):
		return 20
	}

	return 20
}

func rateLimitHandler(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket := rl.getBucket(r.RemoteAddr)
			tokenCost := getTokenCost(r)

			w.Header().Set("X-RateLimit-Limit", "1000")
			w.Header().Set("X-RateLimit-Rate", "3")

			if bucket.TakeAvailable(tokenCost) < tokenCost {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))

			h.ServeHTTP(w, r)
		})
	}
}
