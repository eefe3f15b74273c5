// Package breaker wraps a TickerLookup in a circuit breaker.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
)

// Config はサーキットブレーカーの設定です。
type Config struct {
	Name        string        // ブレーカー名（ログ用）
	MaxRequests uint32        // 半開状態で許可するリクエスト数
	Interval    time.Duration // 閉状態でカウンタをリセットする間隔
	Timeout     time.Duration // 開状態から半開状態へ移るまでの時間
	ReadyToTrip uint32        // 開状態へ移る連続失敗回数
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: 5,
	}
}

// Lookup decorates a TickerLookup. An unknown ticker is a successful call;
// only transport and provider errors count toward tripping the breaker.
// A cancelled or timed-out caller is not the provider's fault and is not counted.
type Lookup struct {
	next usecase.TickerLookup
	cb   *gobreaker.CircuitBreaker
}

var _ usecase.TickerLookup = (*Lookup)(nil)

// NewLookup は next をサーキットブレーカーで包んだ Lookup を生成します。
func NewLookup(next usecase.TickerLookup, cfg Config, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.ReadyToTrip
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Lookup{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// LookupTicker forwards to the wrapped lookup unless the breaker is open.
func (l *Lookup) LookupTicker(ctx context.Context, symbol string) (*entity.TickerInfo, error) {
	res, err := l.cb.Execute(func() (interface{}, error) {
		return l.next.LookupTicker(ctx, symbol)
	})
	if err != nil {
		return nil, fmt.Errorf("breaker %s: %w", l.cb.Name(), err)
	}
	info, _ := res.(*entity.TickerInfo)
	return info, nil
}

// State reports the breaker state ("closed", "half-open", "open").
func (l *Lookup) State() string {
	return l.cb.State().String()
}
