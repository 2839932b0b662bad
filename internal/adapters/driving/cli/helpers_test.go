package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	hashingembed "github.com/custodia-labs/studymate/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/studymate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/studymate/internal/chunker"
	"github.com/custodia-labs/studymate/internal/core/services"
	"github.com/custodia-labs/studymate/internal/normalisers"
)

// setupTestServices injects in-memory services and restores globals afterwards.
func setupTestServices(t *testing.T) {
	t.Helper()

	c, err := chunker.New(chunker.WithChunkSize(4), chunker.WithOverlap(1))
	require.NoError(t, err)
	embedder, err := hashingembed.NewEmbeddingService(hashingembed.Config{Dimensions: 64})
	require.NoError(t, err)
	store := memory.NewVectorStore()

	SetServices(&Services{
		Settings:  services.NewSettingsService(memory.NewConfigStore(), nil),
		Ingest:    services.NewIngestService(c, embedder, store),
		Retrieval: services.NewRetrievalService(embedder, store),
		Sources:   normalisers.Defaults(),
	})

	t.Cleanup(func() {
		SetServices(&Services{})
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		queryJSON, queryTopK = false, 5
		ingestJSON, ingestSource = false, ""
		chunkJSON, statsJSON, clearYes = false, false, false
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
