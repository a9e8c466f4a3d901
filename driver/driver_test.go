package driver

import (
	"context"
	"testing"

	"github.com/vimedkg/vimedkg/checkpoint"
	"github.com/vimedkg/vimedkg/docsrc"
	"github.com/vimedkg/vimedkg/extract"
	"github.com/vimedkg/vimedkg/graph"
	"github.com/vimedkg/vimedkg/llm"
)

// scriptedProvider returns a fixed JSON response per call index, then an
// empty result for any call beyond the script's length.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	idx := p.calls
	p.calls++
	if idx < len(p.responses) {
		return &llm.ChatResponse{Content: p.responses[idx]}, nil
	}
	return &llm.ChatResponse{Content: `{"entities":[],"relations":[]}`}, nil
}

func TestRunProcessesChunksAndCheckpoints(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"entities":[{"name":"Tiểu đường","type":"DISEASE","description":"d","relevance_score":9}],"relations":[]}`,
		`{"entities":[{"name":"Metformin","type":"DRUG","description":"d","relevance_score":8}],"relations":[{"source_name":"Metformin","target_name":"Tiểu đường","relation":"TREATS","confidence_score":9,"evidence":"e"}]}`,
		`{"entities":[],"relations":[]}`,
	}}
	extractor := extract.New(provider, "test-model")

	store := graph.New()
	dir := t.TempDir()
	manager, err := checkpoint.New(dir)
	if err != nil {
		t.Fatalf("checkpoint.New: %v", err)
	}

	chunks := []docsrc.Chunk{
		{Text: "chunk 0", Page: 1},
		{Text: "chunk 1", Page: 1},
		{Text: "chunk 2 (empty extraction)", Page: 2},
	}

	stats, err := Run(context.Background(), store, manager, extractor, chunks, Config{
		CheckpointEvery: 1, DocumentPath: "doc.pdf", ChunkSize: 512, LLMModelName: "test-model",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.ChunksProcessed != 2 {
		t.Errorf("ChunksProcessed = %d, want 2 (chunk 2 contributed nothing)", stats.ChunksProcessed)
	}
	if stats.LastChunkID != 1 {
		t.Errorf("LastChunkID = %d, want 1 (the true last chunk that added something)", stats.LastChunkID)
	}
	if stats.EntitiesAdded != 2 {
		t.Errorf("EntitiesAdded = %d, want 2", stats.EntitiesAdded)
	}
	// TREATS accepted + synthesized TREATED_BY inverse both pass validation.
	if stats.RelationsAdded != 2 {
		t.Errorf("RelationsAdded = %d, want 2 (forward + inverse)", stats.RelationsAdded)
	}

	_, meta, ok, err := manager.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if meta.LastChunkID != 1 {
		t.Errorf("final checkpoint LastChunkID = %d, want 1 (not len(chunks))", meta.LastChunkID)
	}
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	store := graph.New()
	dir := t.TempDir()
	manager, _ := checkpoint.New(dir)

	fp := checkpoint.Fingerprint("doc.pdf", 512, "test-model")
	if err := manager.Save(store, 0, 3, fp); err != nil {
		t.Fatalf("seed Save: %v", err)
	}

	provider := &scriptedProvider{responses: []string{
		`{"entities":[{"name":"A","type":"DRUG","description":"","relevance_score":5}],"relations":[]}`,
	}}
	extractor := extract.New(provider, "test-model")

	chunks := []docsrc.Chunk{
		{Text: "chunk 0", Page: 1},
		{Text: "chunk 1 (should resume here)", Page: 1},
	}

	stats, err := Run(context.Background(), store, manager, extractor, chunks, Config{
		CheckpointEvery: 20, DocumentPath: "doc.pdf", ChunkSize: 512, LLMModelName: "test-model",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ChunksProcessed != 1 {
		t.Errorf("ChunksProcessed = %d, want 1 (chunk 0 already done)", stats.ChunksProcessed)
	}
	if provider.calls != 1 {
		t.Errorf("expected exactly 1 extraction call (resumed chunk only), got %d", provider.calls)
	}
}

func TestRunSkipsChunkWhenBothEntitiesAndRelationsEmpty(t *testing.T) {
	store := graph.New()
	dir := t.TempDir()
	manager, _ := checkpoint.New(dir)

	provider := &scriptedProvider{responses: []string{
		`{"entities":[],"relations":[]}`,
		`{"entities":[],"relations":[]}`,
	}}
	extractor := extract.New(provider, "test-model")

	chunks := []docsrc.Chunk{{Text: "c0", Page: 1}, {Text: "c1", Page: 1}}

	stats, err := Run(context.Background(), store, manager, extractor, chunks, Config{
		CheckpointEvery: 1, DocumentPath: "doc.pdf", ChunkSize: 512, LLMModelName: "test-model",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.LastChunkID != -1 {
		t.Errorf("LastChunkID = %d, want -1 (nothing was ever processed)", stats.LastChunkID)
	}
}
