package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/feature/exchanges/domain/entity"
	exchangehandler "symbol_backend/internal/feature/exchanges/transport/handler"
	"symbol_backend/internal/platform/http/middleware"
	jwtmw "symbol_backend/internal/platform/jwt"
)

const testSecret = "router-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeExchanges は固定の結果を返すExchangeUsecaseです。
type fakeExchanges struct{}

func (fakeExchanges) Profiles() []entity.ExchangeProfile { return nil }

func (fakeExchanges) FetchOne(context.Context, string) (entity.SymbolList, error) {
	return entity.SymbolList{"AAPL"}, nil
}

func (fakeExchanges) Refresh(context.Context, string) (entity.SymbolList, error) {
	return entity.SymbolList{"MSFT"}, nil
}

func newTestRouter(origins ...string) *gin.Engine {
	return NewRouter(Deps{
		Exchanges:   exchangehandler.NewExchangeHandler(fakeExchanges{}),
		JWTSecret:   testSecret,
		CORSOrigins: origins,
	})
}

func TestNewRouter_Routes(t *testing.T) {
	t.Parallel()

	token, err := jwtmw.NewGenerator(testSecret, time.Hour).GenerateToken("operator")
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		path           string
		authorization  string
		expectedStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", expectedStatus: http.StatusOK},
		{name: "health head", method: http.MethodHead, path: "/healthz", expectedStatus: http.StatusOK},
		{name: "exchanges", method: http.MethodGet, path: "/exchanges", expectedStatus: http.StatusOK},
		{name: "symbols of exchange", method: http.MethodGet, path: "/exchanges/DJIA/symbols", expectedStatus: http.StatusOK},
		{name: "refresh without token", method: http.MethodPost, path: "/exchanges/DJIA/refresh", expectedStatus: http.StatusUnauthorized},
		{name: "refresh with bad token", method: http.MethodPost, path: "/exchanges/DJIA/refresh", authorization: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "refresh with token", method: http.MethodPost, path: "/exchanges/DJIA/refresh", authorization: "Bearer " + token, expectedStatus: http.StatusOK},
		{name: "persisted symbols not wired", method: http.MethodGet, path: "/symbols", expectedStatus: http.StatusNotFound},
	}

	r := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// TestNewRouter_RequestID はすべてのレスポンスにリクエストIDが付与されることを検証します。
func TestNewRouter_RequestID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/exchanges", nil)
	newTestRouter().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestNewRouter_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{name: "disabled", origins: nil, origin: "https://dash.example", wantHeader: ""},
		{name: "allowed origin", origins: []string{"https://dash.example"}, origin: "https://dash.example", wantHeader: "https://dash.example"},
		{name: "other origin", origins: []string{"https://dash.example"}, origin: "https://evil.example", wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/exchanges", nil)
			req.Header.Set("Origin", tt.origin)
			newTestRouter(tt.origins...).ServeHTTP(w, req)

			assert.Equal(t, tt.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
