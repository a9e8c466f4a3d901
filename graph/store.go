package graph

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/vimedkg/vimedkg/normalize"
)

// Node is a graph node (an Entity, §3). NormalizedName is the identity key.
type Node struct {
	NormalizedName string
	DisplayLabel   string
	Type           string
	Description    string
	Confidence     float64
	RelevanceScore int
	Pages          []int
	Chunks         []int
}

// Edge is a directed, typed graph edge (a Relation, §3). Multiple edges may
// exist between the same ordered (Source, Target) pair as long as each has
// a distinct (Relation, Chunk) combination (I3).
type Edge struct {
	Source     string
	Target     string
	Relation   string
	Confidence float64
	Evidence   string
	Page       int
	Chunk      int
}

// Store is a directed multigraph: typed nodes keyed by normalized name, and
// parallel typed edges held in per-source insertion-ordered slices. It is
// the sole owner of node and edge state (§3 Ownership) — the Checkpoint
// Manager only ever reads and serializes it.
//
// Grounded on original_source's graph_service.py::GraphService, which wraps
// networkx.MultiDiGraph; this is a hand-rolled equivalent rather than a
// third-party graph library (see DESIGN.md for why gonum/graph/multi, the
// only graph library referenced anywhere in the retrieved pack, wasn't a
// fit).
type Store struct {
	mu    sync.Mutex
	nodes map[string]*Node
	// outEdges holds, per source node, the parallel outgoing edges in
	// insertion order. Edge identity is (Source, Target, Relation, Chunk).
	outEdges map[string][]*Edge
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		nodes:    make(map[string]*Node),
		outEdges: make(map[string][]*Edge),
	}
}

// AddEntity implements §4.6 add_entity. e.Name is normalized before use;
// the resulting Node is keyed by the normalized name.
func (s *Store) AddEntity(e ExtractedEntity, page, chunk int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := normalize.Normalize(e.Name)
	confidence := clamp01(float64(e.RelevanceScore) / 10.0)

	existing, ok := s.nodes[name]
	if !ok {
		s.nodes[name] = &Node{
			NormalizedName: name,
			DisplayLabel:   e.Name,
			Type:           e.Type,
			Description:    e.Description,
			Confidence:     confidence,
			RelevanceScore: e.RelevanceScore,
			Pages:          []int{page},
			Chunks:         []int{chunk},
		}
		return
	}

	// I4: UNKNOWN -> typed upgrade, the only legal type transition.
	if existing.Type == TypeUnknown && e.Type != TypeUnknown && e.Type != "" {
		existing.Type = e.Type
		existing.DisplayLabel = e.Name
		existing.Description = e.Description
	}

	// I5: confidence is non-decreasing.
	if confidence > existing.Confidence {
		if existing.Type != TypeUnknown {
			existing.Description = e.Description
		}
		existing.Confidence = confidence
	}

	// I6: pages/chunks are ordered-unique.
	existing.Pages = appendUnique(existing.Pages, page)
	existing.Chunks = appendUnique(existing.Chunks, chunk)
}

// AddRelation implements §4.6 add_relation. Endpoints are normalized;
// missing endpoints are fabricated as UNKNOWN placeholders (§3 Lifecycle).
// Returns true if a new edge was inserted, false if suppressed as a
// duplicate under I3.
func (s *Store) AddRelation(r ExtractedRelation, page, chunk int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := normalize.Normalize(r.Source)
	tgt := normalize.Normalize(r.Target)
	relType := upper(r.Relation)

	s.ensurePlaceholder(src, page, chunk)
	s.ensurePlaceholder(tgt, page, chunk)

	if s.edgeExistsLocked(src, tgt, relType, chunk) {
		return false
	}

	edge := &Edge{
		Source:     src,
		Target:     tgt,
		Relation:   relType,
		Confidence: clamp01(float64(r.ConfidenceScore) / 10.0),
		Evidence:   r.Evidence,
		Page:       page,
		Chunk:      chunk,
	}
	s.outEdges[src] = append(s.outEdges[src], edge)
	return true
}

// ensurePlaceholder inserts an UNKNOWN placeholder node (confidence 0.5,
// empty description) if name has never been observed. Must be called with
// s.mu held.
func (s *Store) ensurePlaceholder(name string, page, chunk int) {
	if _, ok := s.nodes[name]; ok {
		return
	}
	s.nodes[name] = &Node{
		NormalizedName: name,
		DisplayLabel:   name,
		Type:           TypeUnknown,
		Confidence:     0.5,
		Pages:          []int{page},
		Chunks:         []int{chunk},
	}
}

// EdgeExists reports whether an edge with the given (source, target,
// relation, chunk) already exists (I3).
func (s *Store) EdgeExists(source, target, relation string, chunk int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edgeExistsLocked(normalize.Normalize(source), normalize.Normalize(target), upper(relation), chunk)
}

func (s *Store) edgeExistsLocked(source, target, relation string, chunk int) bool {
	for _, e := range s.outEdges[source] {
		if e.Target == target && e.Relation == relation && e.Chunk == chunk {
			return true
		}
	}
	return false
}

// Node returns the node with the given normalized name, or (Node{}, false)
// if absent.
func (s *Store) Node(normalizedName string) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[normalizedName]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// OutEdges returns the parallel outgoing edges of n in insertion order.
func (s *Store) OutEdges(n string) []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := normalize.Normalize(n)
	out := make([]Edge, len(s.outEdges[src]))
	for i, e := range s.outEdges[src] {
		out[i] = *e
	}
	return out
}

// InEdges returns the parallel incoming edges of n. The Store indexes edges
// only by source (append-only writes never need a reverse index), so this
// scans every source's outgoing edges; the relative order across different
// sources is unspecified, but edges sharing a source preserve their
// insertion order.
func (s *Store) InEdges(n string) []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	tgt := normalize.Normalize(n)
	var out []Edge
	for src := range s.outEdges {
		for _, e := range s.outEdges[src] {
			if e.Target == tgt {
				out = append(out, *e)
			}
		}
	}
	return out
}

// NodeCount returns the number of nodes currently in the graph.
func (s *Store) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges currently in the graph.
func (s *Store) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, edges := range s.outEdges {
		n += len(edges)
	}
	return n
}

// AllNodeNames returns every normalized node name in the graph, in no
// particular order; callers that need a stable order should sort it.
func (s *Store) AllNodeNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	return names
}

// snapshot is the gob-serializable representation of a Store. Serialize
// produces an opaque binary blob per §6: this format is internal-only,
// never interchanged across languages or versions, so gob (stdlib) is used
// rather than a third-party codec — see DESIGN.md.
type snapshot struct {
	Nodes    map[string]*Node
	OutEdges map[string][]*Edge
}

// Serialize encodes the graph into an opaque binary blob.
func (s *Store) Serialize() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(snapshot{Nodes: s.nodes, OutEdges: s.outEdges}); err != nil {
		return nil, fmt.Errorf("graph: serializing store: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a blob produced by Serialize into a new Store.
func Deserialize(blob []byte) (*Store, error) {
	var snap snapshot
	dec := gob.NewDecoder(bytes.NewReader(blob))
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("graph: deserializing store: %w", err)
	}
	if snap.Nodes == nil {
		snap.Nodes = make(map[string]*Node)
	}
	if snap.OutEdges == nil {
		snap.OutEdges = make(map[string][]*Edge)
	}
	return &Store{nodes: snap.Nodes, outEdges: snap.OutEdges}, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func appendUnique(list []int, v int) []int {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
