// Package jwtmw guards operator-only endpoints with HS256 bearer tokens.
package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextSubject is the gin context key holding the token subject.
const ContextSubject = "subject"

// Issuer and Audience are stamped on every token and required on every request.
const (
	Issuer   = "symbol_backend"
	Audience = "operator"
)

// AuthRequired は運用者トークンを検証する Gin ミドルウェアを返します。
// トークンは secret で HS256 署名され、Issuer / Audience / exp を持つ必要があります。
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		// server.jwt_secret 未設定はサーバー側の設定ミス
		if secret == "" {
			abort(c, http.StatusInternalServerError, "server misconfigured")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(tokenStr, claims,
			func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithAudience(Audience),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.Subject != "" {
			c.Set(ContextSubject, claims.Subject)
		}
		c.Next()
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
