package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"rental-service/internal/dto"
	"rental-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WindowCounter — внешний (Redis) счётчик окна. Возвращает значение счётчика
// после инкремента.
type WindowCounter interface {
	IncrRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type bucket struct {
	count   int64
	resetAt time.Time
}

// RateLimiter ограничивает число запросов с одного IP в скользящем окне.
// При заданном WindowCounter счётчики живут в Redis (переживают рестарт
// и делятся между репликами), иначе — в памяти процесса.
type RateLimiter struct {
	limit   int64
	window  time.Duration
	counter WindowCounter
	log     *zap.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
	stopCh  chan struct{}
}

func NewRateLimiter(limit int, window time.Duration, counter WindowCounter, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limit:   int64(limit),
		window:  window,
		counter: counter,
		log:     log,
		buckets: make(map[string]*bucket),
		stopCh:  make(chan struct{}),
	}
}

// Start запускает фоновую чистку протухших вёдер in-memory режима.
func (rl *RateLimiter) Start() {
	go func() {
		ticker := time.NewTicker(rl.window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.sweep()
			case <-rl.stopCh:
				return
			}
		}
	}()
}

func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) sweep() {
	now := time.Now()
	rl.mu.Lock()
	removed := 0
	for key, b := range rl.buckets {
		if now.After(b.resetAt) {
			delete(rl.buckets, key)
			removed++
		}
	}
	rl.mu.Unlock()
	if removed > 0 {
		rl.log.Debug("Очистка rate-limit корзин", zap.Int("removed", removed))
	}
}

func (rl *RateLimiter) allowLocal(key string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || now.After(b.resetAt) {
		rl.buckets[key] = &bucket{count: 1, resetAt: now.Add(rl.window)}
		return true
	}
	b.count++
	return b.count <= rl.limit
}

func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	if rl.counter != nil {
		n, err := rl.counter.IncrRateLimit(ctx, "ratelimit:"+key, rl.window)
		if err != nil {
			// Redis недоступен — не наказываем клиентов, пропускаем
			rl.log.Warn("Счётчик rate-limit недоступен", zap.Error(err))
			return true
		}
		return n <= rl.limit
	}
	return rl.allowLocal(key)
}

// Middleware возвращает gin-обработчик ограничения частоты запросов.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.Request.Context(), c.ClientIP()) {
			metrics.RateLimitedRequests.Inc()
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewRateLimitedError("too many requests"))
			return
		}
		c.Next()
	}
}
