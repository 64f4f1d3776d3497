package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"artemiz/internal/ratelimit/metrics"
	"artemiz/internal/ratelimit/models"
	"artemiz/internal/ratelimit/store/bucket"
	"artemiz/pkg/platform/circuit"
	"artemiz/pkg/platform/httputil"
	"artemiz/pkg/requestcontext"
)

// BucketStore is the sliding window backing the limiter.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limit is the budget for one endpoint class.
type Limit struct {
	Requests int
	Window   time.Duration
}

type Middleware struct {
	store    BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limits   map[models.EndpointClass]Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// WithFallback replaces the in-memory store used while the primary store is
// failing.
func WithFallback(store BucketStore) Option {
	return func(m *Middleware) {
		m.fallback = store
	}
}

// WithBreaker replaces the breaker guarding the primary store.
func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.breaker = b
	}
}

// WithLimit sets the budget of class.
func WithLimit(class models.EndpointClass, limit Limit) Option {
	return func(m *Middleware) {
		m.limits[class] = limit
	}
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:    store,
		fallback: bucket.NewInMemoryBucketStore(),
		breaker:  circuit.New("ratelimit-store", circuit.WithFailureThreshold(3), circuit.WithCooldown(10*time.Second)),
		limits:   map[models.EndpointClass]Limit{models.ClassSubmit: {Requests: 5, Window: time.Minute}},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests of class per client IP. While the primary store
// fails, checks go to the in-memory fallback and responses carry
// X-RateLimit-Status: degraded. Only a failing fallback lets a request through
// unchecked.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit, ok := m.limits[class]
			if m.disabled || !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			result, degraded, err := m.check(ctx, models.KeyFor(class, ip), limit)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check IP rate limit", "error", err, "ip_prefix", anonymizeIP(ip))
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", string(class),
					"ip_prefix", anonymizeIP(ip),
					"request_id", requestcontext.RequestID(ctx),
				)
				if m.metrics != nil {
					m.metrics.IncrementRejections(string(class))
				}
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// check asks the primary store unless the breaker is open and falls back to
// the in-memory store on any primary error.
func (m *Middleware) check(ctx context.Context, key string, limit Limit) (*models.RateLimitResult, bool, error) {
	if m.breaker.Allow() {
		result, err := m.store.Allow(ctx, key, limit.Requests, limit.Window)
		if err == nil {
			if _, change := m.breaker.RecordSuccess(); change.Closed {
				m.logger.InfoContext(ctx, "rate limit store recovered, leaving fallback")
			}
			return result, false, nil
		}
		m.logger.WarnContext(ctx, "rate limit store failed, using fallback", "error", err)
		if _, change := m.breaker.RecordFailure(); change.Opened {
			m.logger.ErrorContext(ctx, "rate limit store circuit opened", "breaker", m.breaker.Name())
		}
	}

	if m.metrics != nil {
		m.metrics.IncrementFallbackChecks()
	}
	result, err := m.fallback.Allow(ctx, key, limit.Requests, limit.Window)
	return result, true, err
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:            "rate_limited",
		ErrorDescription: "Too many requests from this IP address. Please try again later.",
		RetryAfter:       result.RetryAfter,
	})
}

// anonymizeIP keeps the network part of an address for logs.
func anonymizeIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if v4 := parsed.To4(); v4 != nil {
		return strings.Join(strings.Split(v4.String(), ".")[:3], ".") + ".0"
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String()
}
