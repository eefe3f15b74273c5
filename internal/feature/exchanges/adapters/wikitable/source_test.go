package wikitable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/feature/exchanges/domain"
)

const constituentsPage = `<!DOCTYPE html>
<html><head><style>td { color: red; }</style><script>var x = "<table>";</script></head>
<body>
<table class="infobox"><tr><th>Foundation</th><td>1984</td></tr></table>
<table class="wikitable">
  <tr><th>Company</th><th>Ticker</th><th>Sector</th></tr>
  <tr><td>Barclays</td><td>BARC<sup class="reference">[1]</sup></td><td rowspan="2">Banking</td></tr>
  <tr><td>HSBC</td><td>HSBA</td></tr>
  <tr><td colspan="2">Vacant seat</td><td>n/a</td></tr>
</table>
<table><tbody></tbody></table>
</body></html>`

func TestParseTables_Constituents(t *testing.T) {
	t.Parallel()

	tables, err := ParseTables(strings.NewReader(constituentsPage))
	require.NoError(t, err)
	require.Len(t, tables, 2, "empty tables are skipped")

	infobox := tables[0]
	assert.Equal(t, []string{"0", "1"}, infobox.Columns, "header-less table gets positional names")
	assert.Equal(t, [][]string{{"Foundation", "1984"}}, infobox.Rows)

	list := tables[1]
	assert.Equal(t, []string{"Company", "Ticker", "Sector"}, list.Columns)
	assert.Equal(t, [][]string{
		{"Barclays", "BARC[1]", "Banking"},
		{"HSBC", "HSBA", "Banking"},
		{"Vacant seat", "Vacant seat", "n/a"},
	}, list.Rows)
}

func TestParseTables_HeaderRules(t *testing.T) {
	t.Parallel()

	page := `<table>
  <tr><th colspan="3">Constituents</th></tr>
  <tr><th>Name</th><th>Name</th><th></th></tr>
  <tr><td>a</td><td>b</td><td>c</td></tr>
</table>`

	tables, err := ParseTables(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	assert.Equal(t, []string{"Name", "Name.1", "Unnamed: 2"}, tables[0].Columns, "last header row wins")
	assert.Equal(t, [][]string{{"a", "b", "c"}}, tables[0].Rows)
}

func TestParseTables_NestedTables(t *testing.T) {
	t.Parallel()

	page := `<table>
  <tr><th>Outer</th></tr>
  <tr><td><table><tr><th>Inner</th></tr><tr><td>x</td></tr></table></td></tr>
</table>`

	tables, err := ParseTables(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, []string{"Outer"}, tables[0].Columns)
	assert.Len(t, tables[0].Rows, 1, "inner rows do not leak into the outer table")
	assert.Equal(t, []string{"Inner"}, tables[1].Columns)
	assert.Equal(t, [][]string{{"x"}}, tables[1].Rows)
}

func TestParseTables_NonBreakingSpace(t *testing.T) {
	t.Parallel()

	page := "<table><tr><th>Ticker</th></tr><tr><td>SSE:&nbsp;600000</td></tr></table>"

	tables, err := ParseTables(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "SSE: 600000", tables[0].Rows[0][0])
}

func TestSource_FetchTables(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(constituentsPage))
	}))
	defer server.Close()

	src := NewSource(server.Client(), "test-agent/1.0", nil)

	t.Run("success", func(t *testing.T) {
		tables, err := src.FetchTables(context.Background(), server.URL+"/wiki/FTSE_100_Index")
		require.NoError(t, err)
		assert.Len(t, tables, 2)
	})

	t.Run("failure: http status", func(t *testing.T) {
		_, err := src.FetchTables(context.Background(), server.URL+"/missing")
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("failure: cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.FetchTables(ctx, server.URL)
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})
}

func TestNewSource_Defaults(t *testing.T) {
	t.Parallel()

	src := NewSource(http.DefaultClient, "", nil)
	assert.Equal(t, DefaultUserAgent, src.userAgent)
	assert.NotNil(t, src.logger)
}
