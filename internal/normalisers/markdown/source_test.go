package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupports(t *testing.T) {
	s := New()
	assert.True(t, s.Supports("deck.md"))
	assert.True(t, s.Supports("deck.Markdown"))
	assert.False(t, s.Supports("deck.txt"))
}

func TestParse_SplitsSlides(t *testing.T) {
	deck := "# Intro\nWelcome to **week one**\n\n---\n\n## Loss\n- squared error\n- [cross entropy](https://example.com)\n---\n"

	doc := Parse("week1.md", deck)

	assert.Equal(t, "week1.md", doc.Source)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, "Intro\nWelcome to week one", doc.Pages[0])
	assert.Equal(t, "Loss\nsquared error\ncross entropy", doc.Pages[1])
	assert.Empty(t, doc.Pages[2])
}

func TestParse_SkipsFrontMatter(t *testing.T) {
	deck := "---\nmarp: true\ntheme: default\n---\n# Title slide\n---\nSecond"

	doc := Parse("deck.md", deck)

	assert.Equal(t, []string{"Title slide", "Second"}, doc.Pages)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"heading", "### Title", "Title"},
		{"inline code", "use `make test`", "use make test"},
		{"code block", "before\n```go\nx := 1\n```\nafter", "before\n\nafter"},
		{"image", "![chart](c.png) caption", "caption"},
		{"quote", "> quoted", "quoted"},
		{"numbered", "1. first\n2. second", "first\nsecond"},
		{"comment", "<!-- speaker notes -->visible", "visible"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	require.NoError(t, os.WriteFile(path, []byte("one\n---\ntwo"), 0600))

	doc, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, doc.Pages)

	_, err = New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
