// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck は依存先（Redis, DB など）の疎通確認です。
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// checkTimeout は各依存先の確認に使う最大時間です。
const checkTimeout = 2 * time.Second

// Health は依存先を確認しない /healthz エンドポイントです。
func Health(c *gin.Context) {
	NewHealth()(c)
}

// NewHealth はサービスヘルスチェック用の /healthz ハンドラーを返します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// いずれかの依存先が失敗した場合は 503 と失敗内容を返します。
func NewHealth(checks ...HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
			return
		}

		status := http.StatusOK
		results := make(gin.H, len(checks))
		for _, hc := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			err := hc.Check(ctx)
			cancel()
			if err != nil {
				status = http.StatusServiceUnavailable
				results[hc.Name] = err.Error()
				continue
			}
			results[hc.Name] = "ok"
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}

		body := gin.H{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(checks) > 0 {
			body["checks"] = results
		}
		c.JSON(status, body)
	}
}
