// Package filecache persists exchange source tables as CSV files under the raw-data directory.
package filecache

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
)

// Store is a SymbolCache backed by one CSV file per exchange. Entries never expire.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// StoreがSymbolCacheを実装していることをコンパイル時に検証します。
var _ usecase.SymbolCache = (*Store)(nil)

// NewStore は dir 配下に CSV を保存する Store を生成します。
func NewStore(fsys afero.Fs, dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fs: fsys, dir: dir, logger: logger}
}

// Path returns the file backing profile's cache entry.
func (s *Store) Path(profile entity.ExchangeProfile) string {
	return filepath.Join(s.dir, profile.CacheFilename)
}

// Read loads the cached table. A missing file is a miss (ok=false); any other
// problem with the file is domain.ErrDataFormat.
func (s *Store) Read(ctx context.Context, profile entity.ExchangeProfile) (entity.SymbolTable, bool, error) {
	if err := ctx.Err(); err != nil {
		return entity.SymbolTable{}, false, err
	}

	path := s.Path(profile)
	f, err := s.fs.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.SymbolTable{}, false, nil
	}
	if err != nil {
		return entity.SymbolTable{}, false, fmt.Errorf("%w: open %s: %v", domain.ErrDataFormat, path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close cache file", "path", path, "error", err)
		}
	}()

	table, err := decode(f)
	if err != nil {
		return entity.SymbolTable{}, false, fmt.Errorf("%w: %s: %v", domain.ErrDataFormat, path, err)
	}
	if _, ok := table.ColumnIndex(profile.TickerColumn); !ok {
		return entity.SymbolTable{}, false, fmt.Errorf("%w: %s: missing column %q", domain.ErrDataFormat, path, profile.TickerColumn)
	}
	return table, true, nil
}

// Write stores table, replacing any previous entry. The file is written under a
// temporary name and renamed into place so readers never see a partial file.
func (s *Store) Write(ctx context.Context, profile entity.ExchangeProfile, table entity.SymbolTable) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("filecache: mkdir %s: %w", s.dir, err)
	}

	path := s.Path(profile)
	tmp, err := afero.TempFile(s.fs, s.dir, profile.CacheFilename+".*.tmp")
	if err != nil {
		return fmt.Errorf("filecache: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmp.Name())
		}
	}()

	if err = encode(tmp, table); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("filecache: write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("filecache: close %s: %w", tmp.Name(), err)
	}
	if err = s.fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("filecache: rename %s: %w", path, err)
	}

	s.logger.Debug("cache written", "path", path, "rows", table.Len())
	return nil
}

// Stamp reports the modification time and size of profile's file without reading it.
// A missing file yields ok=false.
func (s *Store) Stamp(ctx context.Context, profile entity.ExchangeProfile) (entity.CacheStamp, bool, error) {
	if err := ctx.Err(); err != nil {
		return entity.CacheStamp{}, false, err
	}
	info, err := s.fs.Stat(s.Path(profile))
	if errors.Is(err, fs.ErrNotExist) {
		return entity.CacheStamp{}, false, nil
	}
	if err != nil {
		return entity.CacheStamp{}, false, fmt.Errorf("filecache: stat %s: %w", s.Path(profile), err)
	}
	return entity.CacheStamp{ModTime: info.ModTime(), Size: info.Size()}, true, nil
}

// Invalidate removes the cached entry. Removing an absent entry is not an error.
func (s *Store) Invalidate(ctx context.Context, profile entity.ExchangeProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.fs.Remove(s.Path(profile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("filecache: remove %s: %w", s.Path(profile), err)
	}
	return nil
}

func decode(r io.Reader) (entity.SymbolTable, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return entity.SymbolTable{}, err
	}
	if len(records) == 0 {
		return entity.SymbolTable{}, errors.New("empty file")
	}
	return entity.SymbolTable{Columns: records[0], Rows: records[1:]}, nil
}

func encode(w io.Writer, table entity.SymbolTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	return cw.Error()
}
