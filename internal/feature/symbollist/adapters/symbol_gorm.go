// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"symbol_backend/internal/feature/symbollist/domain/entity"
	"symbol_backend/internal/feature/symbollist/usecase"
)

// batchSize は一括INSERTの1回あたりの件数です。
const batchSize = 200

// symbolGorm はSymbolRepositoryインターフェースのgorm実装です（MySQL / PostgreSQL / SQLite）。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)
var _ usecase.SymbolWriter = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にアクティブな銘柄を返します。market が空の場合は全市場が対象です。
func (r *symbolGorm) ListActive(ctx context.Context, market string) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.active(ctx, market).
		Order("market ASC").
		Order("sort_key ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context, market string) ([]string, error) {
	var codes []string
	if err := r.active(ctx, market).
		Model(&entity.Symbol{}).
		Order("market ASC").
		Order("sort_key ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// ListMarkets は保存済みの市場名を昇順で返します。
func (r *symbolGorm) ListMarkets(ctx context.Context) ([]string, error) {
	var markets []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Distinct("market").
		Order("market ASC").
		Pluck("market", &markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

// ReplaceMarket は market の銘柄をすべて symbols に置き換えます。
// 置き換えは1トランザクションで行われ、途中で失敗した場合は元の状態に戻ります。
func (r *symbolGorm) ReplaceMarket(ctx context.Context, market string, symbols []entity.Symbol) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 新しいリストより後ろの位置を削除
		if err := tx.Where("market = ? AND sort_key >= ?", market, len(symbols)).
			Delete(&entity.Symbol{}).Error; err != nil {
			return err
		}
		if len(symbols) == 0 {
			return nil
		}
		for i := range symbols {
			symbols[i].ID = 0
			symbols[i].Market = market
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "market"}, {Name: "sort_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "name", "is_active", "updated_at"}),
		}).CreateInBatches(symbols, batchSize).Error
	})
}

func (r *symbolGorm) active(ctx context.Context, market string) *gorm.DB {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if market != "" {
		q = q.Where("market = ?", market)
	}
	return q
}
