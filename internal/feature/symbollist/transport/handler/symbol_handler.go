package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/feature/symbollist/domain"
	"symbol_backend/internal/feature/symbollist/domain/entity"
	"symbol_backend/internal/feature/symbollist/transport/http/dto"
)

// SymbolUsecase は保存済み銘柄の参照ユースケースです。
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context, market string) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context, market string) ([]string, error)
	ListMarkets(ctx context.Context) ([]string, error)
}

// SymbolHandler serves the persisted symbol lists written by the ingest job.
type SymbolHandler struct {
	uc SymbolUsecase
}

func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は GET /symbols を処理します。
//
//	?market=DJIA      その市場のみ（省略時は全市場）
//	?format=codes     ティッカーコードのみを返す（market 必須）
func (h *SymbolHandler) List(c *gin.Context) {
	market := c.Query("market")
	ctx := c.Request.Context()

	switch c.DefaultQuery("format", "full") {
	case "codes":
		codes, err := h.uc.ListActiveCodes(ctx, market)
		if err != nil {
			fail(c, err)
			return
		}
		if codes == nil {
			codes = []string{}
		}
		c.JSON(http.StatusOK, dto.CodesResponse{Market: market, Codes: codes})
	case "full":
		symbols, err := h.uc.ListActiveSymbols(ctx, market)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toItems(symbols))
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "format must be full or codes"})
	}
}

// Markets は GET /symbols/markets を処理します。
func (h *SymbolHandler) Markets(c *gin.Context) {
	markets, err := h.uc.ListMarkets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if markets == nil {
		markets = []string{}
	}
	c.JSON(http.StatusOK, dto.MarketsResponse{Markets: markets})
}

func toItems(symbols []entity.Symbol) []dto.SymbolItem {
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{Code: s.Code, Name: s.Name, Market: s.Market})
	}
	return out
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrMarketRequired) {
		status = http.StatusBadRequest
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
