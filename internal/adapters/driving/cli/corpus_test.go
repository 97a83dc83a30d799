package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

func corpusMock() *MockCorpusService {
	return &MockCorpusService{
		P: "/home/user/.protokoll/corpus.toml",
		ItemList: []domain.CorpusItem{
			{ID: "1a", Category: "Budget", Description: "Das Budget wurde überschritten."},
			{ID: "1b", Category: "Budget", Description: "Nachträge wurden nicht gemeldet."},
			{ID: "2a", Category: "Aufsicht", Description: "Die Aufsicht griff nicht ein."},
		},
	}
}

func TestCorpus(t *testing.T) {
	withServices(t, Services{Corpus: corpusMock()})

	stdout, _, err := executeCommand(t, "", "corpus")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Budget\n  1a    Das Budget wurde überschritten.")
	assert.Contains(t, stdout, "Aufsicht\n  2a")
	assert.Contains(t, stdout, "Total: 3 items")
}

func TestCorpus_JSON(t *testing.T) {
	withServices(t, Services{Corpus: corpusMock()})

	stdout, _, err := executeCommand(t, "", "corpus", "--json")
	require.NoError(t, err)

	var items []domain.CorpusItem
	require.NoError(t, json.Unmarshal([]byte(stdout), &items))
	assert.Len(t, items, 3)
}

func TestCorpusPath(t *testing.T) {
	withServices(t, Services{Corpus: corpusMock()})

	stdout, _, err := executeCommand(t, "", "corpus", "path")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/.protokoll/corpus.toml\n", stdout)

	withServices(t, Services{Corpus: &MockCorpusService{}})
	stdout, _, err = executeCommand(t, "", "corpus", "path")
	require.NoError(t, err)
	assert.Equal(t, "(built-in)\n", stdout)
}

func TestCorpus_RequiresService(t *testing.T) {
	withServices(t, Services{})

	_, _, err := executeCommand(t, "", "corpus")
	assert.Error(t, err)
}
