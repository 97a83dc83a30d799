package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

func TestCorpusStore_BuiltIn(t *testing.T) {
	store, err := NewCorpusStore(filepath.Join(t.TempDir(), "corpus.toml"))
	require.NoError(t, err)

	items, err := store.Items(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, items)
	assert.Equal(t, "1a", items[0].ID)
	assert.Empty(t, store.Path())
}

func TestCorpusStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.toml")
	content := `
[[items]]
id = "x1"
category = "Cat"
description = "First"

[[items]]
id = "x2"
category = "Cat"
description = "Second"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewCorpusStore(path)
	require.NoError(t, err)

	items, err := store.Items(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "x2", items[1].ID)
	assert.Equal(t, path, store.Path())
}

func TestParseCorpus_Invalid(t *testing.T) {
	_, err := ParseCorpus([]byte(`[[items]]
id = ""
description = "x"`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = ParseCorpus([]byte(`[[items]]
id = "a"
description = "x"
[[items]]
id = "a"
description = "y"`))
	assert.Error(t, err)

	_, err = ParseCorpus([]byte(`items = [`))
	assert.Error(t, err)
}
