package graph

import "testing"

func TestAddEntityCreatesNode(t *testing.T) {
	s := New()
	s.AddEntity(ExtractedEntity{Name: "Tiểu đường", Type: TypeDisease, Description: "desc", RelevanceScore: 8}, 3, 1)

	n, ok := s.Node("Đái tháo đường")
	if !ok {
		t.Fatalf("expected node to exist")
	}
	if n.Type != TypeDisease {
		t.Errorf("Type = %q, want %q", n.Type, TypeDisease)
	}
	if len(n.Pages) != 1 || n.Pages[0] != 3 {
		t.Errorf("Pages = %v, want [3]", n.Pages)
	}
}

// Scenario 2: placeholder upgrade.
func TestPlaceholderUpgrade(t *testing.T) {
	s := New()
	s.AddRelation(ExtractedRelation{
		Source: "Tiểu đường", Target: "Bệnh thận mạn", Relation: RelCauses, ConfidenceScore: 8,
	}, 1, 0)

	n, ok := s.Node("Đái tháo đường")
	if !ok {
		t.Fatalf("expected placeholder node to exist")
	}
	if n.Type != TypeUnknown {
		t.Fatalf("expected placeholder type UNKNOWN, got %q", n.Type)
	}

	s.AddEntity(ExtractedEntity{Name: "Tiểu đường", Type: TypeDisease, Description: "...", RelevanceScore: 9}, 1, 0)

	n, ok = s.Node("Đái tháo đường")
	if !ok {
		t.Fatalf("node vanished after upgrade")
	}
	if n.Type != TypeDisease {
		t.Errorf("Type after upgrade = %q, want %q", n.Type, TypeDisease)
	}
	if n.Confidence != 0.9 {
		t.Errorf("Confidence after upgrade = %v, want 0.9", n.Confidence)
	}

	out := s.OutEdges("Đái tháo đường")
	if len(out) != 1 || out[0].Relation != RelCauses {
		t.Errorf("expected CAUSES edge to survive upgrade, got %+v", out)
	}
}

// Scenario 4: multi-edge preservation.
func TestMultiEdgePreservation(t *testing.T) {
	s := New()
	s.AddRelation(ExtractedRelation{Source: "A", Target: "B", Relation: RelCauses, ConfidenceScore: 8}, 0, 0)
	s.AddRelation(ExtractedRelation{Source: "A", Target: "B", Relation: RelTreats, ConfidenceScore: 7}, 0, 1)

	out := s.OutEdges("A")
	if len(out) != 2 {
		t.Fatalf("expected 2 parallel edges, got %d: %+v", len(out), out)
	}
}

// I3: idempotent re-ingest of the same chunk.
func TestDuplicateEdgeSuppressed(t *testing.T) {
	s := New()
	first := s.AddRelation(ExtractedRelation{Source: "A", Target: "B", Relation: RelCauses, ConfidenceScore: 8}, 0, 0)
	second := s.AddRelation(ExtractedRelation{Source: "A", Target: "B", Relation: RelCauses, ConfidenceScore: 8}, 0, 0)

	if !first {
		t.Errorf("first insert should succeed")
	}
	if second {
		t.Errorf("duplicate (source,target,relation,chunk) should be suppressed")
	}
	if got := len(s.OutEdges("A")); got != 1 {
		t.Errorf("expected 1 edge after duplicate suppression, got %d", got)
	}
}

// I2 is enforced by the Validator, not the Store.
func TestStoreAcceptsRawSelfLoop(t *testing.T) {
	s := New()
	// The Store itself does not reject a relation whose endpoints are the
	// same node (that is the Validator's job, §4.2); callers relying on the
	// invariant route through validate.RelationOK before AddRelation. This
	// test pins down that the Store stores such an edge as given.
	s.AddRelation(ExtractedRelation{Source: "A", Target: "A", Relation: RelCauses, ConfidenceScore: 8}, 0, 0)
	out := s.OutEdges("A")
	if len(out) != 1 || out[0].Source != out[0].Target {
		t.Fatalf("unexpected state for a raw self-loop insert: %+v", out)
	}
}

// I1: edge endpoints are always present as nodes.
func TestEdgeEndpointsAlwaysNodes(t *testing.T) {
	s := New()
	s.AddRelation(ExtractedRelation{Source: "X", Target: "Y", Relation: RelTreats, ConfidenceScore: 7}, 2, 5)

	if _, ok := s.Node("X"); !ok {
		t.Errorf("source endpoint missing as node")
	}
	if _, ok := s.Node("Y"); !ok {
		t.Errorf("target endpoint missing as node")
	}
}

// I5: node confidence never decreases.
func TestConfidenceMonotonic(t *testing.T) {
	s := New()
	s.AddEntity(ExtractedEntity{Name: "A", Type: TypeDrug, RelevanceScore: 9}, 0, 0)
	s.AddEntity(ExtractedEntity{Name: "A", Type: TypeDrug, RelevanceScore: 3}, 0, 1)

	n, _ := s.Node("A")
	if n.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9 (must not decrease)", n.Confidence)
	}
}

// I6: pages/chunks are ordered-unique.
func TestProvenanceDeduped(t *testing.T) {
	s := New()
	s.AddEntity(ExtractedEntity{Name: "A", Type: TypeDrug, RelevanceScore: 5}, 1, 1)
	s.AddEntity(ExtractedEntity{Name: "A", Type: TypeDrug, RelevanceScore: 5}, 1, 1)
	s.AddEntity(ExtractedEntity{Name: "A", Type: TypeDrug, RelevanceScore: 5}, 2, 2)

	n, _ := s.Node("A")
	if len(n.Pages) != 2 || len(n.Chunks) != 2 {
		t.Errorf("expected deduplicated provenance, got pages=%v chunks=%v", n.Pages, n.Chunks)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	s := New()
	s.AddEntity(ExtractedEntity{Name: "A", Type: TypeDisease, RelevanceScore: 8}, 0, 0)
	s.AddRelation(ExtractedRelation{Source: "A", Target: "B", Relation: RelTreats, ConfidenceScore: 7}, 0, 0)

	blob, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	restored, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if restored.NodeCount() != s.NodeCount() {
		t.Errorf("NodeCount mismatch after round-trip: got %d, want %d", restored.NodeCount(), s.NodeCount())
	}
	if restored.EdgeCount() != s.EdgeCount() {
		t.Errorf("EdgeCount mismatch after round-trip: got %d, want %d", restored.EdgeCount(), s.EdgeCount())
	}
}
