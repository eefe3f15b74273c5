// Package http builds the outbound HTTP clients used for source pages and provider APIs.
package http

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig は外部呼び出し用HTTPクライアントの設定です。ゼロ値の項目はデフォルトを使います。
type ClientConfig struct {
	Timeout             time.Duration // whole request, including reading the body
	DialTimeout         time.Duration // default 5s
	TLSHandshakeTimeout time.Duration // default 5s
	MaxIdleConnsPerHost int           // default 4; source pages live on a handful of hosts
}

// NewHTTPClient は timeout 付きのHTTPクライアントを作成します。
// http.DefaultClient にはタイムアウトがないため、常にこちらを使用すること。
func NewHTTPClient(timeout time.Duration) *http.Client {
	return NewClient(ClientConfig{Timeout: timeout})
}

// NewClient creates a client with an explicitly configured transport.
// Proxies from HTTP_PROXY / HTTPS_PROXY are honored.
func NewClient(cfg ClientConfig) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   orDefault(cfg.DialTimeout, 5*time.Second),
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   orDefault(cfg.TLSHandshakeTimeout, 5*time.Second),
		ExpectContinueTimeout: time.Second,
	}
	if t.MaxIdleConnsPerHost <= 0 {
		t.MaxIdleConnsPerHost = 4
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: t}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
