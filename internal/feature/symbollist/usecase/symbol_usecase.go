// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"strings"

	"symbol_backend/internal/feature/symbollist/domain"
	"symbol_backend/internal/feature/symbollist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for symbol (stock ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context, market string) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context, market string) ([]string, error)
	ListMarkets(ctx context.Context) ([]string, error)
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns the active symbols of market, or of every market when market is empty.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context, market string) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx, strings.TrimSpace(market))
}

// ListActiveCodes returns only the ticker codes of market in stored order.
// Unlike ListActiveSymbols a market must be named.
func (u *SymbolUsecase) ListActiveCodes(ctx context.Context, market string) ([]string, error) {
	market = strings.TrimSpace(market)
	if market == "" {
		return nil, domain.ErrMarketRequired
	}
	return u.repo.ListActiveCodes(ctx, market)
}

// ListMarkets returns the markets that have persisted symbols.
func (u *SymbolUsecase) ListMarkets(ctx context.Context) ([]string, error) {
	return u.repo.ListMarkets(ctx)
}
