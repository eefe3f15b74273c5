// Package usecase implements symbol acquisition for the configured exchanges.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
)

// TableSource は URL 上のページに含まれるすべての表を文書順に返します。
type TableSource interface {
	FetchTables(ctx context.Context, url string) ([]entity.SymbolTable, error)
}

// SymbolCache は取引所ごとのソース表を永続化します。
// Read はエントリが存在しない場合に ok=false を返し、壊れたエントリは domain.ErrDataFormat を返します。
type SymbolCache interface {
	Read(ctx context.Context, profile entity.ExchangeProfile) (table entity.SymbolTable, ok bool, err error)
	Write(ctx context.Context, profile entity.ExchangeProfile, table entity.SymbolTable) error
	Invalidate(ctx context.Context, profile entity.ExchangeProfile) error
}

// TickerChecker reports whether a ticker resolves at the market-data provider.
type TickerChecker interface {
	Exists(ctx context.Context, ticker string) bool
}

// ValidationPolicy controls whether tickers served from the cache are validated again.
type ValidationPolicy int

const (
	// RevalidateNever returns cached tickers as stored.
	RevalidateNever ValidationPolicy = iota
	// RevalidateOnRead validates cached tickers on every read.
	RevalidateOnRead
)

// SymbolFetcher runs the acquisition pipeline for a single exchange:
// cache check, remote fetch, normalization, cache write, validation.
type SymbolFetcher struct {
	source    TableSource
	cache     SymbolCache
	validator TickerChecker
	policy    ValidationPolicy
	logger    *slog.Logger
}

// NewSymbolFetcher は新しい SymbolFetcher を作成します。
func NewSymbolFetcher(source TableSource, cache SymbolCache, validator TickerChecker, policy ValidationPolicy, logger *slog.Logger) *SymbolFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SymbolFetcher{
		source:    source,
		cache:     cache,
		validator: validator,
		policy:    policy,
		logger:    logger,
	}
}

// Fetch returns one entry per source row: a normalized ticker or entity.InvalidTicker.
// On failure it returns an empty list together with the cause.
func (f *SymbolFetcher) Fetch(ctx context.Context, profile entity.ExchangeProfile) (entity.SymbolList, error) {
	log := f.logger.With("exchange", profile.Name)

	list, err := f.fetch(ctx, log, profile)
	if err != nil {
		log.Error("symbol fetch failed", "error", err)
		return entity.SymbolList{}, err
	}
	log.Info("symbol fetch finished", "count", len(list), "invalid", list.InvalidCount())
	return list, nil
}

// Refresh discards the cached table and fetches again from the source.
func (f *SymbolFetcher) Refresh(ctx context.Context, profile entity.ExchangeProfile) (entity.SymbolList, error) {
	if err := f.cache.Invalidate(ctx, profile); err != nil {
		f.logger.Error("cache invalidate failed", "exchange", profile.Name, "error", err)
		return entity.SymbolList{}, err
	}
	return f.Fetch(ctx, profile)
}

// CompanyNames returns the cached company-name column, aligned with the symbol list.
// Profiles without a name column, or exchanges not yet cached, yield nil.
func (f *SymbolFetcher) CompanyNames(ctx context.Context, profile entity.ExchangeProfile) ([]string, error) {
	if profile.NameColumn == "" {
		return nil, nil
	}
	table, ok, err := f.cache.Read(ctx, profile)
	if err != nil {
		return nil, wrapCacheErr(err)
	}
	if !ok {
		return nil, nil
	}
	return table.Column(profile.NameColumn)
}

func (f *SymbolFetcher) fetch(ctx context.Context, log *slog.Logger, profile entity.ExchangeProfile) (entity.SymbolList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cached, ok, err := f.cache.Read(ctx, profile)
	if err != nil {
		return nil, wrapCacheErr(err)
	}
	if ok {
		log.Debug("cache hit", "file", profile.CacheFilename)
		tickers, err := cached.Column(profile.TickerColumn)
		if err != nil {
			return nil, fmt.Errorf("%w: cached table: %v", domain.ErrDataFormat, err)
		}
		if f.policy == RevalidateNever {
			marks, recorded, err := cached.Validity()
			if err != nil {
				return nil, err
			}
			if recorded {
				return applyValidity(tickers, marks), nil
			}
		}
		// 検証結果が未記録（前回の検証が中断された等）か、毎回検証する設定
		return f.validateAndRecord(ctx, log, profile, cached, tickers)
	}

	log.Debug("cache miss, fetching source", "url", profile.SourceURL)
	tables, err := f.source.FetchTables(ctx, profile.SourceURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	if profile.TableIndex >= len(tables) {
		return nil, fmt.Errorf("%w: index %d, page has %d tables", domain.ErrTableNotFound, profile.TableIndex, len(tables))
	}

	table := tables[profile.TableIndex].Clone()
	if err := table.MapColumn(profile.TickerColumn, func(raw string) string {
		return entity.Normalize(raw, profile.Rule)
	}); err != nil {
		return nil, err
	}

	// 書き込み失敗は実行を止めない
	if err := f.cache.Write(ctx, profile, table); err != nil {
		log.Warn("cache write failed", "file", profile.CacheFilename, "error", err)
	}

	tickers, err := table.Column(profile.TickerColumn)
	if err != nil {
		return nil, err
	}
	return f.validateAndRecord(ctx, log, profile, table, tickers)
}

// validateAndRecord validates tickers and stores the outcome next to the cached
// table so a later cache hit returns the same list without calling the provider.
func (f *SymbolFetcher) validateAndRecord(ctx context.Context, log *slog.Logger, profile entity.ExchangeProfile, table entity.SymbolTable, tickers []string) (entity.SymbolList, error) {
	list, err := f.validate(ctx, tickers)
	if err != nil {
		return nil, err
	}
	marked, err := table.WithValidity(list)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Write(ctx, profile, marked); err != nil {
		log.Warn("cache write of validation result failed", "file", profile.CacheFilename, "error", err)
	}
	return list, nil
}

func applyValidity(tickers []string, marks []bool) entity.SymbolList {
	out := make([]string, len(tickers))
	for i, t := range tickers {
		if !marks[i] {
			t = entity.InvalidTicker
		}
		out[i] = t
	}
	return entity.NewSymbolList(out)
}

func (f *SymbolFetcher) validate(ctx context.Context, tickers []string) (entity.SymbolList, error) {
	out := make(entity.SymbolList, 0, len(tickers))
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		valid := f.validator.Exists(ctx, t)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !valid {
			t = entity.InvalidTicker
		}
		out = append(out, t)
	}
	return out, nil
}

func wrapCacheErr(err error) error {
	if errors.Is(err, domain.ErrDataFormat) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrDataFormat, err)
}
