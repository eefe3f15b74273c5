// Package router wires the HTTP routes of the API server.
package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	exchangehandler "symbol_backend/internal/feature/exchanges/transport/handler"
	symbollisthandler "symbol_backend/internal/feature/symbollist/transport/handler"
	"symbol_backend/internal/platform/http/handler"
	"symbol_backend/internal/platform/http/middleware"
	jwtmw "symbol_backend/internal/platform/jwt"
)

// Deps は NewRouter に渡すハンドラー群です。Symbols が nil の場合 /symbols は登録しません。
type Deps struct {
	Exchanges *exchangehandler.ExchangeHandler
	Symbols   *symbollisthandler.SymbolHandler
	Checks    []handler.HealthCheck
	JWTSecret string
	// CORSOrigins が空なら CORS ミドルウェアを登録しません。
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(d.Logger))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.Any("/healthz", handler.NewHealth(d.Checks...))

	r.GET("/exchanges", d.Exchanges.List)
	r.GET("/exchanges/:name/symbols", d.Exchanges.Symbols)
	if d.Symbols != nil {
		r.GET("/symbols", d.Symbols.List)
		r.GET("/symbols/markets", d.Symbols.Markets)
	}

	// 認証必須のルート
	// キャッシュを破棄して再取得するため、運用者トークンが必要
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(d.JWTSecret))
	{
		auth.POST("/exchanges/:name/refresh", d.Exchanges.Refresh)
	}

	return r
}
