// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem represents a symbol in the API response.
// It contains only the public-facing fields needed by clients.
type SymbolItem struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// MarketsResponse lists the markets that have persisted symbols.
type MarketsResponse struct {
	Markets []string `json:"markets"`
}

// CodesResponse is the compact form of a market listing: ticker codes only.
type CodesResponse struct {
	Market string   `json:"market"`
	Codes  []string `json:"codes"`
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
