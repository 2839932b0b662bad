package normalisers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestRegistry_Supports(t *testing.T) {
	r := Defaults()
	assert.True(t, r.Supports("a.pdf"))
	assert.True(t, r.Supports("a.md"))
	assert.True(t, r.Supports("a.txt"))
	assert.False(t, r.Supports("a.docx"))
}

func TestRegistry_Load_Dispatches(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	md := filepath.Join(dir, "deck.md")
	writeFile(t, txt, "a\fb")
	writeFile(t, md, "one\n---\ntwo\n---\nthree")

	r := Defaults()

	doc, err := r.Load(context.Background(), txt)
	require.NoError(t, err)
	assert.Len(t, doc.Pages, 2)

	doc, err = r.Load(context.Background(), "file://"+md)
	require.NoError(t, err)
	assert.Equal(t, "deck.md", doc.Source)
	assert.Len(t, doc.Pages, 3)
}

func TestRegistry_Load_Unsupported(t *testing.T) {
	_, err := Defaults().Load(context.Background(), "report.docx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_Expand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "a.md"), "a")
	writeFile(t, filepath.Join(dir, "skip.docx"), "x")
	writeFile(t, filepath.Join(dir, "week2", "c.txt"), "c")
	writeFile(t, filepath.Join(dir, ".git", "d.txt"), "d")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "h")

	files, err := Defaults().Expand([]string{dir, filepath.Join(dir, "b.txt")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "week2", "c.txt"),
	}, files)
}

func TestRegistry_Expand_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.docx"), "x")

	_, err := Defaults().Expand([]string{filepath.Join(dir, "doc.docx")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = Defaults().Expand([]string{filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/tmp/a.pdf", ResolvePath("file:///tmp/a.pdf"))
	assert.Equal(t, "rel/a.pdf", ResolvePath("rel/a.pdf"))
}
