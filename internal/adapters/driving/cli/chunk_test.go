package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCmd_PreviewDoesNotStore(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, t.TempDir(), "fox.txt", "the quick brown fox jumps over the lazy dog")

	out, err := execute(t, "chunk", path)

	require.NoError(t, err)
	assert.Contains(t, out, "fox.txt: 1 pages (0 blank), 3 chunks")
	assert.Contains(t, out, "fox jumps over the")
	assert.Contains(t, out, "page 1, words 3-7")

	out, err = execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   0")
}

func TestChunkCmd_JSON(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, t.TempDir(), "fox.txt", "the quick brown fox jumps over the lazy dog")

	out, err := execute(t, "chunk", "--json", path)

	require.NoError(t, err)
	assert.Contains(t, out, `"Text": "the lazy dog"`)
}
