package usecase

import (
	"context"
	"log/slog"

	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/shared/ratelimiter"
)

// TickerLookup は外部の株価データサービスから銘柄のメタデータを取得するインターフェースです。
// 銘柄が存在しない場合は (nil, nil) を返します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type TickerLookup interface {
	LookupTicker(ctx context.Context, symbol string) (*entity.TickerInfo, error)
}

// TickerValidator は銘柄コードが外部サービスで解決できるかを判定します。
// すべてのフェッチャーで共有される rate limiter を経由して問い合わせます。
type TickerValidator struct {
	lookup      TickerLookup
	rateLimiter ratelimiter.RateLimiterInterface
	logger      *slog.Logger
}

// NewTickerValidator は新しい TickerValidator を作成します。
func NewTickerValidator(lookup TickerLookup, rateLimiter ratelimiter.RateLimiterInterface, logger *slog.Logger) *TickerValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TickerValidator{lookup: lookup, rateLimiter: rateLimiter, logger: logger}
}

// Exists は ticker のメタデータが取得できた場合に true を返します。
// 問い合わせの失敗はエラーログに記録したうえで false として扱い、呼び出し元には伝播しません。
func (v *TickerValidator) Exists(ctx context.Context, ticker string) bool {
	if ticker == "" || ticker == entity.InvalidTicker {
		return false
	}
	if v.rateLimiter != nil {
		if err := v.rateLimiter.WaitIfNeeded(ctx); err != nil {
			return false
		}
	}

	info, err := v.lookup.LookupTicker(ctx, ticker)
	if err != nil {
		if ctx.Err() == nil {
			v.logger.Error("ticker lookup failed", "ticker", ticker, "error", err)
		}
		return false
	}
	return info != nil
}
