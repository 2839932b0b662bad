package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [text]", queryCmd.Use)
}

func TestQueryCmd_HasTopKFlag(t *testing.T) {
	flag := queryCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag, "top-k flag should exist")
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "query")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_EmptyIndex(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "query", "what is a fox")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestQueryCmd_FindsIngestedChunk(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, t.TempDir(), "animals.txt", "the quick brown fox jumps over the lazy dog")

	_, err := execute(t, "ingest", path)
	require.NoError(t, err)

	out, err := execute(t, "query", "--top-k", "1", "lazy dog")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "animals.txt #")
}

func TestQueryCmd_JSON(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, t.TempDir(), "animals.txt", "the quick brown fox jumps over the lazy dog")

	_, err := execute(t, "ingest", path)
	require.NoError(t, err)

	out, err := execute(t, "query", "--json", "fox")

	require.NoError(t, err)
	assert.Contains(t, out, `"source": "animals.txt"`)
	assert.Contains(t, out, `"similarity"`)
}

func TestQueryCmd_InvalidTopK(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "query", "--top-k", "0", "fox")

	assert.Error(t, err)
}
