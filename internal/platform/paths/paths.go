// Package paths resolves the on-disk data layout.
package paths

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Layout は data ディレクトリ配下の構成です。
type Layout struct {
	Root      string // data directory
	Raw       string // cached source tables
	Interim   string // intermediate artifacts
	Processed string // final artifacts
}

// NewLayout derives the standard sub-directories of root.
func NewLayout(root string) Layout {
	return Layout{
		Root:      root,
		Raw:       filepath.Join(root, "raw"),
		Interim:   filepath.Join(root, "interim"),
		Processed: filepath.Join(root, "processed"),
	}
}

// Ensure creates every directory of the layout on fsys.
func (l Layout) Ensure(fsys afero.Fs) error {
	for _, dir := range []string{l.Raw, l.Interim, l.Processed} {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("paths: mkdir %s: %w", dir, err)
		}
	}
	return nil
}
