package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/vimedkg/vimedkg/graph"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s := graph.New()
	s.AddEntity(graph.ExtractedEntity{Name: "Tiểu đường", Type: graph.TypeDisease, RelevanceScore: 9}, 1, 0)
	s.AddRelation(graph.ExtractedRelation{Source: "Tiểu đường", Target: "Metformin", Relation: graph.RelTreatedBy, ConfidenceScore: 8}, 1, 0)

	fp := Fingerprint("doc.pdf", 512, "llama-3.3-70b")
	if err := m.Save(s, 5, 20, fp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored, meta, ok, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected checkpoint to be found")
	}
	if meta.LastChunkID != 5 || meta.TotalChunks != 20 {
		t.Errorf("meta = %+v, want LastChunkID=5 TotalChunks=20", meta)
	}
	if meta.Fingerprint != fp {
		t.Errorf("Fingerprint = %q, want %q", meta.Fingerprint, fp)
	}
	if restored.NodeCount() != s.NodeCount() {
		t.Errorf("NodeCount mismatch: got %d, want %d", restored.NodeCount(), s.NodeCount())
	}
}

func TestLoadNoCheckpointIsNotError(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, _, ok, err := m.Load()
	if err != nil {
		t.Fatalf("Load on empty dir should not error, got %v", err)
	}
	if ok {
		t.Errorf("expected ok=false when no checkpoint exists")
	}
}

func TestFingerprintStableAndDistinguishing(t *testing.T) {
	a := Fingerprint("doc.pdf", 512, "llama-3.3-70b")
	b := Fingerprint("doc.pdf", 512, "llama-3.3-70b")
	c := Fingerprint("doc.pdf", 256, "llama-3.3-70b")

	if a != b {
		t.Errorf("Fingerprint should be deterministic for identical inputs")
	}
	if a == c {
		t.Errorf("Fingerprint should differ when chunk size differs")
	}
	if len(a) != 8 {
		t.Errorf("Fingerprint length = %d, want 8", len(a))
	}
}

func TestSaveOverwritesPreviousCheckpoint(t *testing.T) {
	dir := t.TempDir()
	m, _ := New(dir)
	s := graph.New()
	s.AddEntity(graph.ExtractedEntity{Name: "A", Type: graph.TypeDrug, RelevanceScore: 5}, 0, 0)

	if err := m.Save(s, 1, 10, "fp1"); err != nil {
		t.Fatalf("Save 1: %v", err)
	}
	s.AddEntity(graph.ExtractedEntity{Name: "B", Type: graph.TypeDrug, RelevanceScore: 5}, 0, 1)
	if err := m.Save(s, 2, 10, "fp1"); err != nil {
		t.Fatalf("Save 2: %v", err)
	}

	restored, meta, ok, err := m.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if meta.LastChunkID != 2 {
		t.Errorf("LastChunkID = %d, want 2 (latest save)", meta.LastChunkID)
	}
	if restored.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", restored.NodeCount())
	}
}

func TestManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "checkpoints")
	if _, err := New(dir); err != nil {
		t.Fatalf("New should create nested directories: %v", err)
	}
}
