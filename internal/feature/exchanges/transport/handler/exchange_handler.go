// Package handler はexchangesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/transport/http/dto"
)

// ExchangeUsecase は取引所の銘柄リスト取得のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ExchangeUsecase interface {
	Profiles() []entity.ExchangeProfile
	FetchOne(ctx context.Context, name string) (entity.SymbolList, error)
	Refresh(ctx context.Context, name string) (entity.SymbolList, error)
}

// ExchangeHandler は取引所に関するHTTPリクエストを処理します。
type ExchangeHandler struct {
	uc ExchangeUsecase
}

// NewExchangeHandler は新しい ExchangeHandler を作成します。
func NewExchangeHandler(uc ExchangeUsecase) *ExchangeHandler {
	return &ExchangeHandler{uc: uc}
}

// List は設定されている取引所の一覧を返します。
//
// エンドポイント例:
// GET /exchanges
func (h *ExchangeHandler) List(c *gin.Context) {
	profiles := h.uc.Profiles()
	out := make([]dto.ExchangeItem, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, dto.ExchangeItem{
			Name:         p.Name,
			SourceURL:    p.SourceURL,
			TableIndex:   p.TableIndex,
			TickerColumn: p.TickerColumn,
			NameColumn:   p.NameColumn,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Symbols は取引所の銘柄リストを返します。
//
// エンドポイント例:
// GET /exchanges/:name/symbols
func (h *ExchangeHandler) Symbols(c *gin.Context) {
	name := c.Param("name")
	list, err := h.uc.FetchOne(c.Request.Context(), name)
	h.respond(c, name, list, err)
}

// Refresh はキャッシュを破棄して取引所の銘柄リストを再取得します。
//
// エンドポイント例:
// POST /exchanges/:name/refresh
func (h *ExchangeHandler) Refresh(c *gin.Context) {
	name := c.Param("name")
	list, err := h.uc.Refresh(c.Request.Context(), name)
	h.respond(c, name, list, err)
}

func (h *ExchangeHandler) respond(c *gin.Context, name string, list entity.SymbolList, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound || status == http.StatusInternalServerError {
			c.JSON(status, dto.ErrorResponse{Error: err.Error()})
			return
		}
		// 取得元の障害は空リストとして返す
		c.JSON(status, dto.SymbolsResponse{Exchange: name, Symbols: []string{}, Error: err.Error()})
		return
	}

	symbols := []string(list)
	if symbols == nil {
		symbols = []string{}
	}
	c.JSON(http.StatusOK, dto.SymbolsResponse{
		Exchange: name,
		Symbols:  symbols,
		Valid:    len(list.Valid()),
	})
}

// statusFor はドメインエラーをHTTPステータスに変換します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownExchange):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSourceUnavailable),
		errors.Is(err, domain.ErrTableNotFound),
		errors.Is(err, domain.ErrColumnNotFound):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
