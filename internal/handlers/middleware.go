package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID assigns every request an id, reusing the caller's X-Request-ID
// when present, and carries it into the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(requestIDHeader, id)
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// CORS allows the given origins; "*" or an empty list allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}

const (
	bucketCleanupInterval = time.Minute
	minBucketIdle         = 5 * time.Minute
)

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP. With a Redis client
// attached the budget is shared across replicas; the local buckets remain
// the fallback when Redis errors. Buckets idle long enough to have refilled
// are dropped.
type IPRateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*ipBucket
	rps         rate.Limit
	burst       int
	staleAfter  time.Duration
	lastCleanup time.Time
	now         func() time.Time

	redisLimiter *redis_rate.Limiter
	redisLimit   redis_rate.Limit
	onError      func(error)
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	staleAfter := minBucketIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > staleAfter {
			staleAfter = refill
		}
	}
	return &IPRateLimiter{
		limiters:   make(map[string]*ipBucket),
		rps:        rate.Limit(rps),
		burst:      burst,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// WithRedis shares the limit through Redis. The rate is expressed per
// minute so fractional per-second rates survive the integer API.
func (l *IPRateLimiter) WithRedis(client *redis.Client, onError func(error)) *IPRateLimiter {
	if client == nil {
		return l
	}
	perMinute := int(math.Round(float64(l.rps) * 60))
	if perMinute < 1 {
		perMinute = 1
	}
	l.redisLimiter = redis_rate.NewLimiter(client)
	l.redisLimit = redis_rate.Limit{Rate: perMinute, Burst: l.burst, Period: time.Minute}
	l.onError = onError
	return l
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	bucket, ok := l.limiters[ip]
	if !ok {
		bucket = &ipBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter
}

// cleanup drops idle buckets at most once per bucketCleanupInterval.
// Callers hold mu.
func (l *IPRateLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < bucketCleanupInterval {
		return
	}
	l.lastCleanup = now
	for ip, bucket := range l.limiters {
		if now.Sub(bucket.lastSeen) > l.staleAfter {
			delete(l.limiters, ip)
		}
	}
}

func (l *IPRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *IPRateLimiter) allow(c *gin.Context, ip string) (bool, time.Duration) {
	if l.redisLimiter != nil {
		res, err := l.redisLimiter.Allow(c.Request.Context(), fmt.Sprintf("ratelimit:ip:%s", ip), l.redisLimit)
		if err == nil {
			return res.Allowed > 0, res.RetryAfter
		}
		if l.onError != nil {
			l.onError(err)
		}
	}
	return l.limiter(ip).Allow(), 0
}

// Middleware rejects requests beyond the client's budget with 429.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := l.allow(c, c.ClientIP())
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Message: "Rate limit exceeded",
				Code:    "rate_limited",
			})
			return
		}
		c.Next()
	}
}
