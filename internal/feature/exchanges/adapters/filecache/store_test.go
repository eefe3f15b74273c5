package filecache_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/feature/exchanges/adapters/filecache"
	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
)

const rawDir = "/data/raw"

func testProfile(t *testing.T) entity.ExchangeProfile {
	t.Helper()
	p, err := entity.NewExchangeProfile("FTSE_100", "https://example.test", 4, "Ticker", "symbols_ftse_100.csv", entity.Suffix(".L"))
	require.NoError(t, err)
	return p
}

func TestStore_WriteThenRead(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	store := filecache.NewStore(fsys, rawDir, nil)
	p := testProfile(t)
	table := entity.NewSymbolTable(
		[]string{"Company", "Ticker"},
		[][]string{{"Barclays", "BARC.L"}, {"Smith, W.H.", "SMWH.L"}, {"Blank", ""}},
	)

	require.NoError(t, store.Write(context.Background(), p, table))

	got, ok, err := store.Read(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, table, got)

	raw, err := afero.ReadFile(fsys, "/data/raw/symbols_ftse_100.csv")
	require.NoError(t, err)
	assert.Equal(t, "Company,Ticker\nBarclays,BARC.L\n\"Smith, W.H.\",SMWH.L\nBlank,\n", string(raw))

	entries, err := afero.ReadDir(fsys, rawDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestStore_ReadMissingIsMiss(t *testing.T) {
	t.Parallel()

	store := filecache.NewStore(afero.NewMemMapFs(), rawDir, nil)

	_, ok, err := store.Read(context.Background(), testProfile(t))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReadMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "ragged rows", content: "Company,Ticker\nBarclays,BARC.L,extra\n"},
		{name: "unterminated quote", content: "Company,Ticker\n\"Barclays,BARC.L\n"},
		{name: "missing ticker column", content: "Company,EPIC\nBarclays,BARC\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "/data/raw/symbols_ftse_100.csv", []byte(tt.content), 0o644))
			store := filecache.NewStore(fsys, rawDir, nil)

			_, ok, err := store.Read(context.Background(), testProfile(t))
			assert.ErrorIs(t, err, domain.ErrDataFormat)
			assert.False(t, ok)
		})
	}
}

func TestStore_Invalidate(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	store := filecache.NewStore(fsys, rawDir, nil)
	p := testProfile(t)

	require.NoError(t, store.Invalidate(context.Background(), p), "absent entry")

	require.NoError(t, store.Write(context.Background(), p, entity.NewSymbolTable([]string{"Ticker"}, [][]string{{"BARC.L"}})))
	require.NoError(t, store.Invalidate(context.Background(), p))

	_, ok, err := store.Read(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReadOnlyFilesystem(t *testing.T) {
	t.Parallel()

	store := filecache.NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), rawDir, nil)

	err := store.Write(context.Background(), testProfile(t), entity.NewSymbolTable([]string{"Ticker"}, nil))
	assert.Error(t, err)
}

func TestStore_Stamp(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	store := filecache.NewStore(fsys, rawDir, nil)
	p := testProfile(t)

	_, ok, err := store.Stamp(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, ok, "no file yet")

	require.NoError(t, store.Write(context.Background(), p, entity.NewSymbolTable([]string{"Ticker"}, [][]string{{"BARC.L"}})))
	first, ok, err := store.Stamp(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(len("Ticker\nBARC.L\n")), first.Size)

	// 外部からの書き換えはサイズの違いとして見える
	require.NoError(t, afero.WriteFile(fsys, "/data/raw/symbols_ftse_100.csv", []byte("Ticker\n\"broken\n"), 0o644))
	second, ok, err := store.Stamp(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, first.Same(second))
}
