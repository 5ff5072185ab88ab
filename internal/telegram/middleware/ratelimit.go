package middleware

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	warningInterval   = 30 * time.Second
	inactiveThreshold = time.Hour
	cleanupInterval   = 10 * time.Minute
)

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastWarned time.Time
}

// RateLimiterMiddleware drops updates of users exceeding a per-minute token bucket
type RateLimiterMiddleware struct {
	mu         sync.Mutex
	buckets    map[int64]*bucket
	capacity   float64
	refillRate float64 // tokens per second
	notify     Notify
	warning    string
	logger     *zap.Logger
	now        func() time.Time
	stop       chan struct{}
}

// NewRateLimiterMiddleware allows perMinute updates per user on average and
// burst updates at once
func NewRateLimiterMiddleware(perMinute, burst int, notify Notify, warning string, logger *zap.Logger) *RateLimiterMiddleware {
	capacity := float64(burst)
	if capacity < 1 {
		capacity = float64(perMinute)
	}

	rl := &RateLimiterMiddleware{
		buckets:    make(map[int64]*bucket),
		capacity:   capacity,
		refillRate: float64(perMinute) / 60.0,
		notify:     notify,
		warning:    warning,
		logger:     logger,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next Next) {
	userID, chatID, _ := origin(update)
	if userID == 0 {
		next(update)
		return
	}

	if !rl.allow(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

// Stop ends the background cleanup
func (rl *RateLimiterMiddleware) Stop() {
	close(rl.stop)
}

func (rl *RateLimiterMiddleware) allow(userID, chatID int64) bool {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[userID]
	if !ok {
		b = &bucket{tokens: rl.capacity, lastRefill: now}
		rl.buckets[userID] = b
	}
	rl.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * rl.refillRate
	if b.tokens > rl.capacity {
		b.tokens = rl.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	if chatID != 0 && now.Sub(b.lastWarned) > warningInterval {
		b.lastWarned = now
		rl.notify(chatID, rl.warning)
	}
	return false
}

func (rl *RateLimiterMiddleware) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiterMiddleware) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, b := range rl.buckets {
		b.mu.Lock()
		idle := now.Sub(b.lastRefill) > inactiveThreshold
		b.mu.Unlock()
		if idle {
			delete(rl.buckets, userID)
		}
	}
}
