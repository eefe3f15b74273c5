package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"symbol_backend/internal/feature/exchanges/adapters/twelvedata/dto"
	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
)

// exchangeBySuffix maps Yahoo-style ticker suffixes to Twelve Data exchange codes.
var exchangeBySuffix = map[string]string{
	".L":  "LSE",
	".SS": "SSE",
	".SZ": "SZSE",
	".AT": "ATHEX",
}

// TwelveDataLookup はTwelve Data外部APIの quote エンドポイントで銘柄を確認する TickerLookup 実装です。
type TwelveDataLookup struct {
	cfg    Config
	client *http.Client
}

// TwelveDataLookupがTickerLookupを実装していることをコンパイル時に検証します。
var _ usecase.TickerLookup = (*TwelveDataLookup)(nil)

// NewTwelveDataLookup は指定された設定とHTTPクライアントでTwelveDataLookupの新しいインスタンスを生成します。
func NewTwelveDataLookup(cfg Config, client *http.Client) *TwelveDataLookup {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &TwelveDataLookup{cfg: cfg, client: client}
}

// LookupTicker はTwelve Data APIから銘柄のメタデータを取得します。
// 銘柄が存在しない場合（HTTP 404、または API の code 400/404）は (nil, nil) を返します。
func (t *TwelveDataLookup) LookupTicker(ctx context.Context, symbol string) (*entity.TickerInfo, error) {
	code, exchange := splitSymbol(symbol)

	q := url.Values{}
	q.Set("symbol", code)
	if exchange != "" {
		q.Set("exchange", exchange)
	}
	q.Set("apikey", t.cfg.APIKey)

	u := fmt.Sprintf("%s/quote?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.QuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		// 存在しない銘柄は API エラーではなく「メタデータなし」として扱う
		if body.Code == http.StatusBadRequest || body.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}
	if body.Symbol == "" {
		return nil, nil
	}

	return &entity.TickerInfo{
		Symbol:   symbol,
		Name:     body.Name,
		Exchange: body.Exchange,
		Currency: body.Currency,
	}, nil
}

// splitSymbol separates a known exchange suffix from symbol.
func splitSymbol(symbol string) (code, exchange string) {
	i := strings.LastIndex(symbol, ".")
	if i <= 0 {
		return symbol, ""
	}
	if ex, ok := exchangeBySuffix[symbol[i:]]; ok {
		return symbol[:i], ex
	}
	return symbol, ""
}
