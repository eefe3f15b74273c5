package entity

// InvalidTicker marks a position whose ticker failed validation.
const InvalidTicker = "invalid_ticker"

// SymbolList is the result of one pipeline run: one ticker per source row, in row order.
// Each element is a normalized ticker or InvalidTicker.
type SymbolList []string

// NewSymbolList converts cached ticker cells into a SymbolList, replacing empty cells with InvalidTicker.
func NewSymbolList(tickers []string) SymbolList {
	out := make(SymbolList, 0, len(tickers))
	for _, t := range tickers {
		if t == "" {
			t = InvalidTicker
		}
		out = append(out, t)
	}
	return out
}

// Valid returns the tickers that passed validation, preserving order.
func (l SymbolList) Valid() []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		if t != InvalidTicker {
			out = append(out, t)
		}
	}
	return out
}

// InvalidCount returns the number of sentinel positions.
func (l SymbolList) InvalidCount() int {
	return len(l) - len(l.Valid())
}

// TickerInfo is the metadata a market-data provider returns for a ticker.
type TickerInfo struct {
	Symbol   string
	Name     string
	Exchange string
	Currency string
}
