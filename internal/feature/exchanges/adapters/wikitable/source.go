// Package wikitable extracts HTML tables from web pages (Wikipedia constituent lists).
package wikitable

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
)

// DefaultUserAgent is sent with every page request. Wikipedia rejects requests without one.
const DefaultUserAgent = "symbol_backend/1.0 (+https://github.com/symbol_backend)"

// maxSpan caps colspan/rowspan values to keep malformed pages from exploding the grid.
const maxSpan = 1000

// Source はWebページ上のすべての表を取得する TableSource 実装です。
type Source struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// SourceがTableSourceを実装していることをコンパイル時に検証します。
var _ usecase.TableSource = (*Source)(nil)

// NewSource は新しい Source を生成します。userAgent が空の場合は DefaultUserAgent を使用します。
func NewSource(client *http.Client, userAgent string, logger *slog.Logger) *Source {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{client: client, userAgent: userAgent, logger: logger}
}

// FetchTables downloads url and returns every table with at least one row, in document order.
// Transport failures and HTTP status >= 400 wrap domain.ErrSourceUnavailable.
func (s *Source) FetchTables(ctx context.Context, url string) ([]entity.SymbolTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			s.logger.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: wikitable http %d", domain.ErrSourceUnavailable, res.StatusCode)
	}
	return ParseTables(res.Body)
}

// ParseTables parses every <table> in r, nested tables included.
func ParseTables(r io.Reader) ([]entity.SymbolTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", domain.ErrSourceUnavailable, err)
	}
	doc.Find("style, script").Remove()

	var tables []entity.SymbolTable
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		if t, ok := parseTable(sel); ok {
			tables = append(tables, t)
		}
	})
	return tables, nil
}

// cell is one grid slot after span expansion.
type cell struct {
	text   string
	header bool
}

// parseTable expands spans into a rectangular grid and splits header rows from data rows.
func parseTable(table *goquery.Selection) (entity.SymbolTable, bool) {
	// 入れ子の表の行は含めない
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
	if rows.Length() == 0 {
		return entity.SymbolTable{}, false
	}

	var grid [][]cell
	pending := map[int]struct {
		cell cell
		left int
	}{}

	rows.Each(func(_ int, tr *goquery.Selection) {
		var row []cell
		col := 0
		fill := func() {
			for {
				p, ok := pending[col]
				if !ok {
					return
				}
				row = append(row, p.cell)
				if p.left <= 1 {
					delete(pending, col)
				} else {
					p.left--
					pending[col] = p
				}
				col++
			}
		}

		tr.ChildrenFiltered("th, td").Each(func(_ int, td *goquery.Selection) {
			fill()
			c := cell{text: cellText(td), header: goquery.NodeName(td) == "th"}
			colspan := spanAttr(td, "colspan")
			rowspan := spanAttr(td, "rowspan")
			for i := 0; i < colspan; i++ {
				row = append(row, c)
				if rowspan > 1 {
					pending[col] = struct {
						cell cell
						left int
					}{cell: c, left: rowspan - 1}
				}
				col++
			}
		})
		fill()
		// 行末より右に残っている rowspan を埋める
		for len(pending) > 0 {
			if _, ok := pending[col]; ok {
				fill()
				continue
			}
			if col > maxKey(pending) {
				break
			}
			row = append(row, cell{})
			col++
		}
		grid = append(grid, row)
	})

	width := 0
	for _, r := range grid {
		width = max(width, len(r))
	}
	if width == 0 {
		return entity.SymbolTable{}, false
	}

	// 先頭から続く th のみの行がヘッダー。複数ある場合は最後の行を使う
	var header []cell
	bodyStart := 0
	for bodyStart < len(grid) && allHeader(grid[bodyStart]) {
		header = grid[bodyStart]
		bodyStart++
	}

	columns := columnNames(header, width)
	data := make([][]string, 0, len(grid)-bodyStart)
	for _, r := range grid[bodyStart:] {
		values := make([]string, len(r))
		for i, c := range r {
			values[i] = c.text
		}
		data = append(data, values)
	}
	return entity.NewSymbolTable(columns, data), true
}

func maxKey[V any](m map[int]V) int {
	k := -1
	for i := range m {
		k = max(k, i)
	}
	return k
}

func allHeader(row []cell) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if !c.header {
			return false
		}
	}
	return true
}

// columnNames builds unique column names: positional when there is no header,
// "Unnamed: i" for blank header cells and "Name.1", "Name.2" for repeats.
func columnNames(header []cell, width int) []string {
	names := make([]string, width)
	if header == nil {
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		return names
	}

	seen := make(map[string]int, width)
	for i := range names {
		name := ""
		if i < len(header) {
			name = header[i].text
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func cellText(sel *goquery.Selection) string {
	sel.Find("br").ReplaceWithHtml(" ")
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func spanAttr(sel *goquery.Selection, name string) int {
	v, ok := sel.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(v, ";")))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxSpan)
}
