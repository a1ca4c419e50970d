package themed

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RateLimitConfig defines the token bucket for one method.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustainable rate (tokens added per second).
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst.
	BurstSize int
}

// DefaultRateLimits keeps mutators well below what a UI would ever send while
// leaving reads effectively unlimited.
var DefaultRateLimits = map[string]RateLimitConfig{
	MethodSetTheme:            {RequestsPerSecond: 20, BurstSize: 40},
	MethodToggleDarkMode:      {RequestsPerSecond: 20, BurstSize: 40},
	MethodUpdateCustomization: {RequestsPerSecond: 50, BurstSize: 100},
	MethodResetCustomization:  {RequestsPerSecond: 10, BurstSize: 20},

	MethodGetState:   {RequestsPerSecond: 500, BurstSize: 1000},
	MethodListThemes: {RequestsPerSecond: 500, BurstSize: 1000},
	MethodGetCSS:     {RequestsPerSecond: 500, BurstSize: 1000},
	MethodPing:       {RequestsPerSecond: 1000, BurstSize: 1000},
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
	ratePerSec float64
	maxTokens  float64
	now        func() time.Time
}

func newTokenBucket(cfg RateLimitConfig, now func() time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(cfg.BurstSize),
		lastUpdate: now(),
		ratePerSec: cfg.RequestsPerSecond,
		maxTokens:  float64(cfg.BurstSize),
		now:        now,
	}
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tb.tokens += now.Sub(tb.lastUpdate).Seconds() * tb.ratePerSec
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastUpdate = now

	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter applies per-method token buckets to unary calls.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	configs map[string]RateLimitConfig
	now     func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithMethodLimits overrides limits for specific methods.
func WithMethodLimits(limits map[string]RateLimitConfig) RateLimiterOption {
	return func(rl *RateLimiter) {
		for method, cfg := range limits {
			rl.configs[method] = cfg
		}
	}
}

// WithNow replaces the time source.
func WithNow(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter creates a rate limiter seeded with DefaultRateLimits.
func NewRateLimiter(opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		configs: make(map[string]RateLimitConfig, len(DefaultRateLimits)),
		now:     time.Now,
	}
	for method, cfg := range DefaultRateLimits {
		rl.configs[method] = cfg
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow reports whether a call to method may proceed. Methods without a
// configured limit are always allowed.
func (rl *RateLimiter) Allow(method string) bool {
	rl.mu.Lock()
	bucket, ok := rl.buckets[method]
	if !ok {
		cfg, hasCfg := rl.configs[method]
		if !hasCfg {
			rl.mu.Unlock()
			return true
		}
		bucket = newTokenBucket(cfg, rl.now)
		rl.buckets[method] = bucket
	}
	rl.mu.Unlock()

	return bucket.allow()
}

// UnaryServerInterceptor returns a gRPC unary interceptor that applies rate limiting.
func (rl *RateLimiter) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !rl.Allow(info.FullMethod) {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for method %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}
