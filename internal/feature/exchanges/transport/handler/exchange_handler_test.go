package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
)

// mockExchangeUsecase はExchangeUsecaseインターフェースのモック実装です。
type mockExchangeUsecase struct {
	profiles     []entity.ExchangeProfile
	FetchOneFunc func(ctx context.Context, name string) (entity.SymbolList, error)
	RefreshFunc  func(ctx context.Context, name string) (entity.SymbolList, error)
}

func (m *mockExchangeUsecase) Profiles() []entity.ExchangeProfile { return m.profiles }

func (m *mockExchangeUsecase) FetchOne(ctx context.Context, name string) (entity.SymbolList, error) {
	if m.FetchOneFunc != nil {
		return m.FetchOneFunc(ctx, name)
	}
	return entity.SymbolList{}, nil
}

func (m *mockExchangeUsecase) Refresh(ctx context.Context, name string) (entity.SymbolList, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, name)
	}
	return entity.SymbolList{}, nil
}

func newTestRouter(h *ExchangeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/exchanges", h.List)
	r.GET("/exchanges/:name/symbols", h.Symbols)
	r.POST("/exchanges/:name/refresh", h.Refresh)
	return r
}

// TestExchangeHandler_List は設定済み取引所の一覧がJSONで返されることを検証します。
func TestExchangeHandler_List(t *testing.T) {
	t.Parallel()

	p, err := entity.NewExchangeProfile("DJIA", "https://example.test/djia", 2, "Symbol", "symbols_djia.csv", entity.Suffix(""))
	require.NoError(t, err)
	h := NewExchangeHandler(&mockExchangeUsecase{profiles: []entity.ExchangeProfile{p.WithNameColumn("Company")}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/exchanges", nil)
	newTestRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"name":"DJIA","source_url":"https://example.test/djia","table_index":2,"ticker_column":"Symbol","name_column":"Company"}]`,
		w.Body.String())
}

// TestExchangeHandler_Symbols はエラー種別ごとのステータスコードをテーブル駆動テストで検証します。
func TestExchangeHandler_Symbols(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		fetch          func(ctx context.Context, name string) (entity.SymbolList, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: returns list with sentinel positions",
			fetch: func(context.Context, string) (entity.SymbolList, error) {
				return entity.SymbolList{"AAPL", entity.InvalidTicker, "MSFT"}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"exchange":"DJIA","symbols":["AAPL","invalid_ticker","MSFT"],"valid":2}`,
		},
		{
			name: "failure: unknown exchange is 404",
			fetch: func(_ context.Context, name string) (entity.SymbolList, error) {
				return entity.SymbolList{}, fmt.Errorf("%w: %q", domain.ErrUnknownExchange, name)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"unknown exchange: \"DJIA\""}`,
		},
		{
			name: "failure: source outage is 502 with empty list",
			fetch: func(context.Context, string) (entity.SymbolList, error) {
				return entity.SymbolList{}, fmt.Errorf("%w: timeout", domain.ErrSourceUnavailable)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"exchange":"DJIA","symbols":[],"valid":0,"error":"symbol source unavailable: timeout"}`,
		},
		{
			name: "failure: missing column is 502",
			fetch: func(context.Context, string) (entity.SymbolList, error) {
				return entity.SymbolList{}, domain.ErrColumnNotFound
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"exchange":"DJIA","symbols":[],"valid":0,"error":"ticker column not found"}`,
		},
		{
			name: "failure: corrupt cache is 500",
			fetch: func(context.Context, string) (entity.SymbolList, error) {
				return entity.SymbolList{}, domain.ErrDataFormat
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"malformed cached symbol table"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewExchangeHandler(&mockExchangeUsecase{FetchOneFunc: tt.fetch})
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/exchanges/DJIA/symbols", nil)
			newTestRouter(h).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestExchangeHandler_Refresh はRefreshがusecaseのRefreshを呼ぶことを検証します。
func TestExchangeHandler_Refresh(t *testing.T) {
	t.Parallel()

	var refreshed string
	h := NewExchangeHandler(&mockExchangeUsecase{
		RefreshFunc: func(_ context.Context, name string) (entity.SymbolList, error) {
			refreshed = name
			return entity.SymbolList{"HSBA.L"}, nil
		},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/exchanges/FTSE100/refresh", nil)
	newTestRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FTSE100", refreshed)
	assert.JSONEq(t, `{"exchange":"FTSE100","symbols":["HSBA.L"],"valid":1}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusBadGateway, statusFor(fmt.Errorf("x: %w", domain.ErrTableNotFound)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.Canceled))
}
