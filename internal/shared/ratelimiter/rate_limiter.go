package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded(ctx context.Context) error
}

// RateLimiter は、API呼び出しなどの操作の頻度を制限します。
// 複数の goroutine から同時に使用できます。
type RateLimiter struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimiter は interval あたり limit 回までの呼び出しを許可する RateLimiter を生成します。
// limit 回までは待たずに通過し、それ以降は均等な間隔で待機します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
		logger:  slog.Default(),
	}
}

// NewIntervalLimiter は呼び出しの間隔を最低 delay 空ける RateLimiter を生成します。
// delay が 0 以下の場合は制限しません。
func NewIntervalLimiter(delay time.Duration) *RateLimiter {
	if delay <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1), logger: slog.Default()}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(delay), 1), logger: slog.Default()}
}

// WithLogger sets the logger used for throttle messages.
func (rl *RateLimiter) WithLogger(logger *slog.Logger) *RateLimiter {
	if logger != nil {
		rl.logger = logger
	}
	return rl
}

// WaitIfNeeded はレートリミットの上限に達しているかを確認し、必要であれば待機します。
// ctx がキャンセルされた場合は待機を中断して ctx のエラーを返します。
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return rl.limiter.Wait(ctx)
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}
	if delay >= time.Second {
		rl.logger.Debug("rate limit reached, sleeping", "delay", delay)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
