package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
}

func TestNewConfigStoreAt_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "custom.toml")

	store, err := NewConfigStoreAt(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("chunk.size", 300))
	require.NoError(t, store.Set("embedding.requests_per_second", 2.5))
	require.NoError(t, store.Set("debug", true))
	require.NoError(t, store.Set("ingest.processors", []string{"dehyphenate"}))

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 300, store.GetInt("chunk.size"))
	assert.InDelta(t, 2.5, store.GetFloat("embedding.requests_per_second"), 1e-9)
	assert.InDelta(t, 300.0, store.GetFloat("chunk.size"), 1e-9)
	assert.True(t, store.GetBool("debug"))
	assert.Equal(t, []string{"dehyphenate"}, store.GetStringSlice("ingest.processors"))

	assert.Empty(t, store.GetString("chunk.size"))
	assert.Zero(t, store.GetInt("embedding.provider"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("embedding.provider"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.timeout", "45s"))
	require.NoError(t, store.Set("chunk.overlap", 40))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[embedding]")
	assert.Contains(t, string(data), "[chunk]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "openai", reloaded.GetString("embedding.provider"))
	assert.Equal(t, "45s", reloaded.GetString("embedding.timeout"))
	assert.Equal(t, 40, reloaded.GetInt("chunk.overlap"))
	assert.ElementsMatch(t, []string{"embedding.provider", "embedding.timeout", "chunk.overlap"}, reloaded.Keys())
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[chunk]
size = 200
overlap = 50

[embedding]
provider = "gemini"
requests_per_second = 1

[ingest]
processors = ["dehyphenate", "page_numbers"]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 200, store.GetInt("chunk.size"))
	assert.Equal(t, "gemini", store.GetString("embedding.provider"))
	assert.InDelta(t, 1.0, store.GetFloat("embedding.requests_per_second"), 1e-9)
	assert.Equal(t, []string{"dehyphenate", "page_numbers"}, store.GetStringSlice("ingest.processors"))
}

func TestConfigStore_Set_ConflictingKeyRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("embedding", "flat"))

	err = store.Set("embedding.provider", "ollama")
	assert.Error(t, err)

	_, ok := store.Get("embedding.provider")
	assert.False(t, ok)
	assert.Equal(t, "flat", store.GetString("embedding"))
}

func TestConfigStore_Set_WriteErrorRestoresPrevious(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("chunk.size", 100))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("chunk.size", 200))
	assert.Equal(t, 100, store.GetInt("chunk.size"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("chunk.size", 100))
	require.NoError(t, store.Set("chunk.overlap", 10))

	require.NoError(t, store.Delete("chunk.size"))
	require.NoError(t, store.Delete("never.set"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	_, ok := reloaded.Get("chunk.size")
	assert.False(t, ok)
	assert.Equal(t, 10, reloaded.GetInt("chunk.overlap"))
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("embedding.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("chunk.size", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("chunk.size")
		}()
	}
	wg.Wait()

	_, ok := store.Get("chunk.size")
	assert.True(t, ok)
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}

	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, flattenMap(nested, ""))
}

func TestUnflattenMap(t *testing.T) {
	tree, err := unflattenMap(map[string]any{"a.b": 1, "a.c.d": "x", "e": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"e": true,
	}, tree)

	_, err = unflattenMap(map[string]any{"a": 1, "a.b": 2})
	assert.Error(t, err)
}
