package config

// 米国の銘柄はそのまま、ロンドンは ".L"、アテネは ".AT"、
// 上海・深圳は取引所接頭辞に応じて ".SS" / ".SZ" を付与します。
var (
	usTicker     = []PatternConfig{{Pattern: `([A-Z]{1,5})`, Replacement: `${1}`}}
	londonTicker = []PatternConfig{{Pattern: `([A-Z]{2,4})`, Replacement: `${1}.L`}}
	athexTicker  = []PatternConfig{{Pattern: `Athex:\s*(\w*)\s*(\[.+)?`, Replacement: `${1}.AT`}}
	csiTicker    = []PatternConfig{
		{Pattern: `SSE:\s*(\d+)`, Replacement: `${1}.SS`},
		{Pattern: `SZSE:\s*(\d+)`, Replacement: `${1}.SZ`},
	}
)

// DefaultExchanges returns the built-in exchange list used when the config file has none.
func DefaultExchanges() []ExchangeConfig {
	return []ExchangeConfig{
		{
			Name:         "DJIA",
			URL:          "https://en.wikipedia.org/wiki/Dow_Jones_Industrial_Average",
			Table:        2,
			TickerColumn: "Symbol",
			NameColumn:   "Company",
			CacheFile:    "symbols_djia.csv",
			Rule:         RuleConfig{Patterns: usTicker},
		},
		{
			Name:         "SNP_500",
			URL:          "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies",
			Table:        0,
			TickerColumn: "Symbol",
			NameColumn:   "Security",
			CacheFile:    "symbols_snp_500.csv",
			Rule:         RuleConfig{Patterns: usTicker},
		},
		{
			Name:         "NASDAQ_100",
			URL:          "https://en.wikipedia.org/wiki/Nasdaq-100",
			Table:        4,
			TickerColumn: "Symbol",
			NameColumn:   "Company",
			CacheFile:    "symbols_nasdaq.csv",
			Rule:         RuleConfig{Patterns: usTicker},
		},
		{
			Name:         "FTSE_100",
			URL:          "https://en.wikipedia.org/wiki/FTSE_100_Index",
			Table:        4,
			TickerColumn: "Ticker",
			NameColumn:   "Company",
			CacheFile:    "symbols_ftse_100.csv",
			Rule:         RuleConfig{Patterns: londonTicker},
		},
		{
			Name:         "FTSE_250",
			URL:          "https://en.wikipedia.org/wiki/FTSE_250_Index",
			Table:        3,
			TickerColumn: "Ticker",
			NameColumn:   "Company",
			CacheFile:    "symbols_ftse_250.csv",
			Rule:         RuleConfig{Patterns: londonTicker},
		},
		{
			Name:         "ATHEX",
			URL:          "https://en.wikipedia.org/wiki/FTSE/Athex_Large_Cap",
			Table:        2,
			TickerColumn: "Traded as",
			NameColumn:   "Company",
			CacheFile:    "symbols_athex.csv",
			Rule:         RuleConfig{Patterns: athexTicker},
		},
		{
			Name:         "CSI_100",
			URL:          "https://en.wikipedia.org/wiki/CSI_100_Index",
			Table:        3,
			TickerColumn: "Ticker",
			NameColumn:   "Company",
			CacheFile:    "symbols_csi_100.csv",
			Rule:         RuleConfig{Patterns: csiTicker},
		},
		{
			Name:         "CSI_300",
			URL:          "https://en.wikipedia.org/wiki/CSI_300_Index",
			Table:        3,
			TickerColumn: "Ticker",
			NameColumn:   "Company",
			CacheFile:    "symbols_csi_300.csv",
			Rule:         RuleConfig{Patterns: csiTicker},
		},
	}
}
