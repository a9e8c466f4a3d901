package docsrc

import (
	"strings"
	"testing"
)

func TestChunkPagesSmallPageIsOneChunk(t *testing.T) {
	pages := []Page{{Number: 1, Text: "Bệnh nhân có triệu chứng đau đầu."}}
	chunks := ChunkPages(pages, DefaultConfig())

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Page != 1 {
		t.Errorf("Page = %d, want 1", chunks[0].Page)
	}
}

func TestChunkPagesSplitsLongPageAndPreservesPage(t *testing.T) {
	para := strings.Repeat("từ ", 200) // ~260 estimated tokens per paragraph
	text := para + "\n\n" + para + "\n\n" + para + "\n\n" + para
	pages := []Page{{Number: 7, Text: text}}

	chunks := ChunkPages(pages, Config{MaxTokens: 300, Overlap: 20})
	if len(chunks) < 2 {
		t.Fatalf("expected the long page to split into multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Page != 7 {
			t.Errorf("chunk from page 7 tagged as page %d", c.Page)
		}
	}
}

func TestChunkPagesMultiplePagesPreserveOrder(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "Trang một."},
		{Number: 2, Text: "Trang hai."},
		{Number: 3, Text: "Trang ba."},
	}
	chunks := ChunkPages(pages, DefaultConfig())
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, want := range []int{1, 2, 3} {
		if chunks[i].Page != want {
			t.Errorf("chunk %d Page = %d, want %d", i, chunks[i].Page, want)
		}
	}
}

func TestEstimateTokensRoughlyProportionalToWordCount(t *testing.T) {
	short := estimateTokens("một hai ba")
	long := estimateTokens(strings.Repeat("một ", 100))
	if long <= short*10 {
		t.Errorf("expected roughly linear scaling: short=%d long=%d", short, long)
	}
}

func TestSplitSentencesBasic(t *testing.T) {
	got := splitSentences("Câu một. Câu hai? Câu ba!")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(got), got)
	}
}
