package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cada identidad es un sorted set con score = timestamp de admision en ms.
// Los scripts podan la ventana antes de contar para que el check-and-record
// sea atomico del lado de Redis.
const redisAdmitScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
local count = redis.call("ZCARD", KEYS[1])
if count >= limit then
  return 0
end
redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], window)
return 1
`

const redisCountScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
return redis.call("ZCARD", KEYS[1])
`

const redisOldestScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
if #oldest == 0 then
  return -1
end
return tonumber(oldest[2])
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisSlidingWindowLimiter comparte la ventana deslizante entre instancias.
// Ante errores de Redis hace fail-open: admite y lo registra en el log.
type RedisSlidingWindowLimiter struct {
	client  redisEvaler
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewRedisSlidingWindowLimiter(client *redis.Client, logger *zap.Logger) *RedisSlidingWindowLimiter {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSlidingWindowLimiter{
		client:  client,
		prefix:  "bigfive:rl:",
		timeout: 500 * time.Millisecond,
		logger:  logger,
		now:     time.Now,
	}
}

func (l *RedisSlidingWindowLimiter) TryAdmit(identity string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return false
	}
	if l == nil || l.client == nil {
		return true
	}
	key := l.key(identity)
	window = normalizeWindow(window)

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	now := l.now()
	admitted, err := l.client.Eval(ctx, redisAdmitScript, []string{key},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString()).Int()
	if err != nil {
		l.logger.Warn("redis admission check failed, admitting", zap.String("key", key), zap.Error(err))
		return true
	}
	return admitted == 1
}

func (l *RedisSlidingWindowLimiter) Remaining(identity string, limit int, window time.Duration) int {
	if limit <= 0 {
		return 0
	}
	if l == nil || l.client == nil {
		return limit
	}
	key := l.key(identity)
	window = normalizeWindow(window)

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	used, err := l.client.Eval(ctx, redisCountScript, []string{key},
		l.now().UnixMilli(), window.Milliseconds()).Int()
	if err != nil {
		l.logger.Warn("redis remaining check failed", zap.String("key", key), zap.Error(err))
		return limit
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

func (l *RedisSlidingWindowLimiter) ResetAt(identity string, window time.Duration) time.Time {
	if l == nil || l.client == nil {
		return time.Now()
	}
	key := l.key(identity)
	window = normalizeWindow(window)

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	now := l.now()
	oldestMs, err := l.client.Eval(ctx, redisOldestScript, []string{key},
		now.UnixMilli(), window.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn("redis reset lookup failed", zap.String("key", key), zap.Error(err))
		return now
	}
	if oldestMs < 0 {
		return now
	}
	return time.UnixMilli(oldestMs).Add(window)
}

func (l *RedisSlidingWindowLimiter) key(identity string) string {
	return l.prefix + normalizeIdentity(identity)
}
