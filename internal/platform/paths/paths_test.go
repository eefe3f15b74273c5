package paths

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	t.Parallel()

	l := NewLayout("/srv/data")

	assert.Equal(t, "/srv/data", l.Root)
	assert.Equal(t, "/srv/data/raw", l.Raw)
	assert.Equal(t, "/srv/data/interim", l.Interim)
	assert.Equal(t, "/srv/data/processed", l.Processed)
}

func TestLayout_Ensure(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	l := NewLayout("/srv/data")

	require.NoError(t, l.Ensure(fsys))

	for _, dir := range []string{l.Raw, l.Interim, l.Processed} {
		ok, err := afero.DirExists(fsys, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}

	err := l.Ensure(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	assert.Error(t, err)
}
