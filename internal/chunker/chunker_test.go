package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

const fox = "the quick brown fox jumps over the lazy dog"

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " ")
}

func mustNew(t *testing.T, opts ...Option) *Chunker {
	t.Helper()
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := mustNew(t)
		if c.Settings().Size != domain.DefaultChunkSize {
			t.Errorf("expected size %d, got %d", domain.DefaultChunkSize, c.Settings().Size)
		}
		if c.Settings().Overlap != domain.DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", domain.DefaultChunkOverlap, c.Settings().Overlap)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		c := mustNew(t, WithChunkSize(50), WithOverlap(10))
		if c.Settings() != (domain.ChunkSettings{Size: 50, Overlap: 10}) {
			t.Errorf("unexpected settings %+v", c.Settings())
		}
	})

	t.Run("settings option", func(t *testing.T) {
		c := mustNew(t, WithSettings(domain.ChunkSettings{Size: 8, Overlap: 0}))
		if c.Settings().Step() != 8 {
			t.Errorf("expected step 8, got %d", c.Settings().Step())
		}
	})

	invalid := []struct {
		name string
		opts []Option
	}{
		{"overlap equals size", []Option{WithChunkSize(4), WithOverlap(4)}},
		{"overlap exceeds size", []Option{WithChunkSize(100), WithOverlap(150)}},
		{"zero size", []Option{WithChunkSize(0), WithOverlap(0)}},
		{"negative overlap", []Option{WithOverlap(-1)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if c != nil {
				t.Error("expected nil chunker on error")
			}
		})
	}
}

func TestSplit_FoxScenario(t *testing.T) {
	c := mustNew(t, WithChunkSize(4), WithOverlap(1))

	got := c.Split(fox)
	want := []string{"the quick brown fox", "fox jumps over the", "the lazy dog"}

	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplit_CountFormula(t *testing.T) {
	cases := []struct{ size, overlap int }{
		{4, 1}, {4, 0}, {4, 3}, {10, 2}, {300, 80}, {1, 0}, {7, 6},
	}
	for _, cs := range cases {
		c := mustNew(t, WithChunkSize(cs.size), WithOverlap(cs.overlap))
		for w := 0; w <= 700; w += 7 {
			got := len(c.Split(words(w)))
			want := 0
			if w > 0 && w <= cs.size {
				want = 1
			} else if w > cs.size {
				step := cs.size - cs.overlap
				want = (w-cs.size+step-1)/step + 1
			}
			if got != want {
				t.Errorf("size=%d overlap=%d words=%d: expected %d chunks, got %d",
					cs.size, cs.overlap, w, want, got)
			}
			if got != c.ExpectedCount(w) {
				t.Errorf("ExpectedCount(%d) = %d, Split produced %d", w, c.ExpectedCount(w), got)
			}
		}
	}
}

func TestSplit_AdjacentChunksShareOverlap(t *testing.T) {
	c := mustNew(t, WithChunkSize(10), WithOverlap(3))
	chunks := c.Split(words(57))

	for i := 0; i+1 < len(chunks); i++ {
		a := strings.Fields(chunks[i])
		b := strings.Fields(chunks[i+1])
		if len(a) != 10 || len(b) != 10 {
			continue
		}
		tail := strings.Join(a[len(a)-3:], " ")
		head := strings.Join(b[:3], " ")
		if tail != head {
			t.Errorf("chunks %d and %d: expected shared %q, got %q", i, i+1, tail, head)
		}
	}
}

func TestSplit_ZeroOverlapDisjoint(t *testing.T) {
	c := mustNew(t, WithChunkSize(3), WithOverlap(0))
	got := c.Split("a b c d e f g")
	want := []string{"a b c", "d e f", "g"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplit_ShortAndEmpty(t *testing.T) {
	c := mustNew(t, WithChunkSize(50), WithOverlap(5))

	got := c.Split("  only   a few\twords\n")
	if len(got) != 1 || got[0] != "only a few words" {
		t.Errorf("expected single normalised chunk, got %q", got)
	}

	for _, blank := range []string{"", "   ", "\n\t\f"} {
		if n := len(c.Split(blank)); n != 0 {
			t.Errorf("expected 0 chunks for %q, got %d", blank, n)
		}
	}
}

func TestSplitPage_WordOffsets(t *testing.T) {
	c := mustNew(t, WithChunkSize(4), WithOverlap(1))
	chunks := c.SplitPage("animals.txt", 2, fox, 10)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	offsets := [][2]int{{0, 4}, {3, 7}, {6, 9}}
	for i, ch := range chunks {
		if ch.Index != 10+i {
			t.Errorf("chunk %d: expected index %d, got %d", i, 10+i, ch.Index)
		}
		if ch.Page != 2 || ch.Source != "animals.txt" {
			t.Errorf("chunk %d: unexpected provenance %q page %d", i, ch.Source, ch.Page)
		}
		if ch.StartWord != offsets[i][0] || ch.EndWord != offsets[i][1] {
			t.Errorf("chunk %d: expected range %v, got [%d,%d)", i, offsets[i], ch.StartWord, ch.EndWord)
		}
		if ch.WordCount() != len(strings.Fields(ch.Text)) {
			t.Errorf("chunk %d: word count %d does not match text %q", i, ch.WordCount(), ch.Text)
		}
	}
}

func TestSplitDocument_BlankPagesSkipped(t *testing.T) {
	c := mustNew(t, WithChunkSize(4), WithOverlap(1))
	doc := domain.Document{
		Source: "Lecture 01.pdf",
		Pages:  []string{"", fox, "   ", "one two", "\n"},
	}

	chunks, err := c.SplitDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("expected continuous index %d, got %d", i, ch.Index)
		}
		if ch.Text == "" {
			t.Errorf("chunk %d has empty text", i)
		}
	}
	if chunks[0].Page != 2 || chunks[3].Page != 4 {
		t.Errorf("expected pages 2 and 4, got %d and %d", chunks[0].Page, chunks[3].Page)
	}
	if chunks[3].Text != "one two" {
		t.Errorf("expected last chunk %q, got %q", "one two", chunks[3].Text)
	}
}

func TestSplitDocument_Errors(t *testing.T) {
	c := mustNew(t)

	_, err := c.SplitDocument(domain.Document{Pages: []string{fox}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	chunks, err := c.SplitDocument(domain.Document{Source: "empty.pdf"})
	if err != nil || len(chunks) != 0 {
		t.Errorf("expected no chunks and no error, got %d, %v", len(chunks), err)
	}
}

func TestSplitDocuments_PreservesDocumentOrder(t *testing.T) {
	c := mustNew(t, WithChunkSize(4), WithOverlap(1))
	a := domain.Document{Source: "a.pdf", Pages: []string{fox}}
	b := domain.Document{Source: "b.pdf", Pages: []string{"one two three"}}

	chunks, err := c.SplitDocuments(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if chunks[2].Source != "a.pdf" || chunks[3].Source != "b.pdf" {
		t.Errorf("unexpected source order: %q, %q", chunks[2].Source, chunks[3].Source)
	}
	if chunks[3].Index != 0 {
		t.Errorf("expected index to restart per document, got %d", chunks[3].Index)
	}

	_, err = c.SplitDocuments(a, domain.Document{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
