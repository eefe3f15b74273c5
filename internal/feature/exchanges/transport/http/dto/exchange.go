// Package dto defines data transfer objects for the exchanges HTTP API.
package dto

// ExchangeItem describes one configured exchange.
type ExchangeItem struct {
	Name         string `json:"name"`
	SourceURL    string `json:"source_url"`
	TableIndex   int    `json:"table_index"`
	TickerColumn string `json:"ticker_column"`
	NameColumn   string `json:"name_column,omitempty"`
}

// SymbolsResponse is the symbol list of one exchange.
// Symbols keeps invalid positions as the invalid-ticker sentinel so that
// indices line up with the source table.
type SymbolsResponse struct {
	Exchange string   `json:"exchange"`
	Symbols  []string `json:"symbols"`
	Valid    int      `json:"valid"`
	Error    string   `json:"error,omitempty"`
}

// ErrorResponse is returned for requests that produce no symbol list.
type ErrorResponse struct {
	Error string `json:"error"`
}
