package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
)

// ErrCacheMiss is returned when a key is absent or the cache is disabled
var ErrCacheMiss = errors.New("cache miss")

// CacheService stores build results in Redis behind a circuit breaker.
// A nil client disables caching.
type CacheService struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	timeout time.Duration
	logger  *logrus.Logger
}

func NewCacheService(client *redis.Client, ttl time.Duration, threshold int, timeout time.Duration, logger *logrus.Logger) *CacheService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if threshold <= 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &CacheService{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
	}
}

// Enabled reports whether a Redis client is configured
func (s *CacheService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return nil, s.client.Set(ctx, key, data, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if !s.Enabled() {
		return ErrCacheMiss
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal(out.([]byte), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Ping checks Redis reachability for readiness probes
func (s *CacheService) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// State exposes the breaker state
func (s *CacheService) State() gobreaker.State {
	return s.breaker.State()
}

func (s *CacheService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// CachedBuild is the cached form of a successful build
type CachedBuild struct {
	BuildID string                 `json:"buildId"`
	Result  *optimizer.BuildResult `json:"result"`
}

// RequestHash fingerprints a request together with the options that shape its result
func RequestHash(req *optimizer.Request, opts optimizer.Options) (string, error) {
	// Parallel never changes the result
	opts.Parallel = false
	data, err := json.Marshal(struct {
		Request *optimizer.Request `json:"request"`
		Options optimizer.Options  `json:"options"`
	}{req, opts})
	if err != nil {
		return "", fmt.Errorf("failed to hash request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Cache key generators
func BuildCacheKey(requestHash string) string {
	return fmt.Sprintf("roster:build:%s", requestHash)
}
