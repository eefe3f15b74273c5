package usecase

import (
	"context"
	"fmt"
	"log/slog"

	exentity "symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/symbollist/domain/entity"
)

// SymbolWriter persists a market's symbol list.
type SymbolWriter interface {
	ReplaceMarket(ctx context.Context, market string, symbols []entity.Symbol) error
}

// SymbolSource provides freshly validated symbol lists per exchange.
type SymbolSource interface {
	Names() []string
	FetchOne(ctx context.Context, name string) (exentity.SymbolList, error)
	CompanyNames(ctx context.Context, name string) ([]string, error)
}

// SyncReport summarizes a SyncAll run.
type SyncReport struct {
	Synced map[string]int   // market -> rows written
	Failed map[string]error // market -> cause
}

// SyncUsecase は取引所の銘柄リストを取得し、データベースに永続化するユースケースです。
type SyncUsecase struct {
	source SymbolSource
	writer SymbolWriter
	logger *slog.Logger
}

// NewSyncUsecase は新しい SyncUsecase を作成します。
func NewSyncUsecase(source SymbolSource, writer SymbolWriter, logger *slog.Logger) *SyncUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncUsecase{source: source, writer: writer, logger: logger}
}

// SyncMarket は1つの取引所の銘柄リストを取得し、その市場の行を置き換えます。
// 取得に失敗した場合は既存の行を残したままエラーを返します。
func (u *SyncUsecase) SyncMarket(ctx context.Context, market string) (int, error) {
	list, err := u.source.FetchOne(ctx, market)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", market, err)
	}

	names, err := u.source.CompanyNames(ctx, market)
	if err != nil {
		// 社名は補助情報なので取得できなくても続行する
		u.logger.Warn("company names unavailable", "market", market, "error", err)
		names = nil
	}

	rows := BuildSymbols(market, list, names)
	if err := u.writer.ReplaceMarket(ctx, market, rows); err != nil {
		return 0, fmt.Errorf("persist %s: %w", market, err)
	}
	return len(rows), nil
}

// SyncAll は設定されたすべての取引所を同期します。
// 1つの取引所でエラーが発生しても処理を止めずにログに出力し、次の取引所を続けます。
func (u *SyncUsecase) SyncAll(ctx context.Context) SyncReport {
	report := SyncReport{Synced: map[string]int{}, Failed: map[string]error{}}
	for _, market := range u.source.Names() {
		if err := ctx.Err(); err != nil {
			report.Failed[market] = err
			continue
		}
		n, err := u.SyncMarket(ctx, market)
		if err != nil {
			u.logger.Error("failed to sync market", "market", market, "error", err)
			report.Failed[market] = err
			continue
		}
		u.logger.Info("market synced", "market", market, "rows", n)
		report.Synced[market] = n
	}
	return report
}

// BuildSymbols converts a symbol list into one row per position.
// names is aligned with list by position and may be shorter or nil.
func BuildSymbols(market string, list exentity.SymbolList, names []string) []entity.Symbol {
	rows := make([]entity.Symbol, 0, len(list))
	for i, code := range list {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		rows = append(rows, entity.Symbol{
			Code:     code,
			Name:     name,
			Market:   market,
			IsActive: code != exentity.InvalidTicker,
			SortKey:  i,
		})
	}
	return rows
}
