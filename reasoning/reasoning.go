// Package reasoning implements the confidence-propagating Reasoner (§4.9)
// and the Reasoning Context Builder (§4.10), operating directly on an
// in-memory graph.Store. Grounded on
// original_source/reasoning_service.py::ReasoningService, which performed
// the same neighborhood/path-exploration/relatedness logic over a
// networkx.DiGraph.
package reasoning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vimedkg/vimedkg/graph"
)

// twoHopDecay discounts a 2-hop relatedness product relative to a direct
// edge. A tunable heuristic, not a derived value — see original_source's
// reasoning_service.py::calculate_relatedness, which hardcodes the same 0.5.
const twoHopDecay = 0.5

// relatedHopFloor is the per-edge confidence floor below which an edge is
// ignored entirely when accumulating 2-hop relatedness, independent of the
// caller's mu threshold on the final product.
const relatedHopFloor = 0.3

// Reasoner answers multi-hop questions about a graph.Store. It holds no
// state of its own beyond the store reference, matching §5's "no component
// holds locks" resource model — every call reads the store fresh.
type Reasoner struct {
	store *graph.Store
}

// New returns a Reasoner over store.
func New(store *graph.Store) *Reasoner {
	return &Reasoner{store: store}
}

// Neighbor is one outgoing edge from a queried node, filtered by
// confidence threshold (§4.9 neighbors).
type Neighbor struct {
	Node       string
	Relation   string
	Confidence float64
	Evidence   string
}

// Neighbors returns every outgoing parallel edge from n whose confidence is
// at least tau, in the multigraph's insertion order.
func (r *Reasoner) Neighbors(n string, tau float64) []Neighbor {
	edges := r.store.OutEdges(n)
	out := make([]Neighbor, 0, len(edges))
	for _, e := range edges {
		if e.Confidence >= tau {
			out = append(out, Neighbor{
				Node:       e.Target,
				Relation:   e.Relation,
				Confidence: e.Confidence,
				Evidence:   e.Evidence,
			})
		}
	}
	return out
}

// Step is one hop of a path: (from, relation, to).
type Step struct {
	From     string
	Relation string
	To       string
}

// Path is one explored path from explore_paths (§4.9): the sequence of
// steps taken, the multiplicatively-decayed accumulated confidence, and
// the final node reached.
type Path struct {
	Steps      []Step
	Confidence float64
	FinalNode  string
}

// ExplorePaths performs a bounded-depth DFS from start, emitting every path
// of length ≥ 1 whose accumulated (multiplicative) confidence is still ≥
// tau. depth is counted in edges, not nodes (depth 0 = start only, so no
// paths are emitted). The visited set is path-scoped: a node blocks
// re-entry only along its own path, not across sibling branches.
func (r *Reasoner) ExplorePaths(start string, depth int, tau float64) []Path {
	var paths []Path
	visited := map[string]bool{start: true}

	var dfs func(node string, steps []Step, confidence float64, d int)
	dfs = func(node string, steps []Step, confidence float64, d int) {
		if len(steps) > 0 {
			paths = append(paths, Path{
				Steps:      append([]Step(nil), steps...),
				Confidence: confidence,
				FinalNode:  node,
			})
		}
		if d >= depth {
			return
		}

		for _, nb := range r.Neighbors(node, tau) {
			newConfidence := confidence * nb.Confidence
			if newConfidence < tau {
				continue
			}
			if visited[nb.Node] {
				continue
			}

			visited[nb.Node] = true
			dfs(nb.Node, append(steps, Step{From: node, Relation: nb.Relation, To: nb.Node}), newConfidence, d+1)
			delete(visited, nb.Node)
		}
	}

	dfs(start, nil, 1.0, 0)
	return paths
}

// Related is one result of a relatedness query: the related entity, its
// type, and its accumulated relatedness score.
type Related struct {
	Entity string
	Type   string
	Score  float64
}

// RelatedEntities scores every entity reachable from e within two hops
// (§4.9 related) and returns the top k by score, ties broken by the order
// entities were first encountered (1-hop before 2-hop, insertion order
// within each).
func (r *Reasoner) RelatedEntities(e string, k int, mu float64) []Related {
	scores := make(map[string]float64)
	order := make([]string, 0)
	isOneHop := make(map[string]bool)

	touch := func(name string, delta float64) {
		if _, seen := scores[name]; !seen {
			order = append(order, name)
		}
		scores[name] += delta
	}

	oneHop := r.Neighbors(e, mu)
	for _, nb := range oneHop {
		isOneHop[nb.Node] = true
		touch(nb.Node, nb.Confidence)
	}

	for _, nb1 := range r.store.OutEdges(e) {
		if nb1.Confidence < relatedHopFloor {
			continue
		}
		for _, nb2 := range r.store.OutEdges(nb1.Target) {
			if nb2.Confidence < relatedHopFloor {
				continue
			}
			y := nb2.Target
			if y == e || isOneHop[y] {
				continue
			}
			product := nb1.Confidence * nb2.Confidence * twoHopDecay
			if product < mu {
				continue
			}
			touch(y, product)
		}
	}

	results := make([]Related, 0, len(order))
	for _, name := range order {
		typ := ""
		if node, ok := r.store.Node(name); ok {
			typ = node.Type
		}
		results = append(results, Related{Entity: name, Type: typ, Score: scores[name]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results
}

// PathStep is one hop of a shortest path between two entities, with
// evidence truncated to 100 runes (matching the Python original's
// find_shortest_path). This is a supplemental operation beyond §4.9,
// grounded on original_source's reasoning_service.py::find_shortest_path.
type PathStep struct {
	From       string
	To         string
	Relation   string
	Confidence float64
	Evidence   string
}

// ShortestPath finds the fewest-hops path from source to target using BFS
// over outgoing edges (ignoring confidence, matching networkx.shortest_path
// semantics), returning nil if no path exists within maxLength edges.
func (r *Reasoner) ShortestPath(source, target string, maxLength int) []PathStep {
	if source == target {
		return nil
	}

	type frame struct {
		node string
		via  *graph.Edge
		prev *frame
	}

	visited := map[string]bool{source: true}
	queue := []*frame{{node: source}}

	var found *frame
	for len(queue) > 0 && found == nil {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range r.store.OutEdges(cur.node) {
			if visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			edgeCopy := e
			next := &frame{node: e.Target, via: &edgeCopy, prev: cur}
			if e.Target == target {
				found = next
				break
			}
			queue = append(queue, next)
		}
	}

	if found == nil {
		return nil
	}

	var steps []PathStep
	for f := found; f.via != nil; f = f.prev {
		evidence := f.via.Evidence
		if len([]rune(evidence)) > 100 {
			evidence = string([]rune(evidence)[:100])
		}
		steps = append([]PathStep{{
			From:       f.prev.node,
			To:         f.node,
			Relation:   f.via.Relation,
			Confidence: f.via.Confidence,
			Evidence:   evidence,
		}}, steps...)
	}

	if len(steps) > maxLength {
		return nil
	}
	return steps
}

// ReasonAboutEntity renders the structured reasoning context for an entity
// (§4.10): header, up to 5 direct connections, and (if depth > 1) the top
// 3 multi-hop paths. Grounded on
// original_source/reasoning_service.py::reason_about_entity.
func (r *Reasoner) ReasonAboutEntity(name string, depth int) string {
	node, ok := r.store.Node(name)
	if !ok {
		return fmt.Sprintf("Entity '%s' not found in graph.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Entity: %s\n", name)
	fmt.Fprintf(&b, "Type: %s\n", node.Type)
	description := node.Description
	if description == "" {
		description = "No description"
	}
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Confidence: %.2f\n\n", node.Confidence)

	b.WriteString("### Direct Connections:\n")
	direct := r.Neighbors(name, relatedHopFloor)
	sort.SliceStable(direct, func(i, j int) bool { return direct[i].Confidence > direct[j].Confidence })
	if len(direct) > 5 {
		direct = direct[:5]
	}
	if len(direct) == 0 {
		b.WriteString("- No direct connections found\n")
	} else {
		for _, c := range direct {
			fmt.Fprintf(&b, "- %s → %s (conf: %.2f)\n", c.Relation, c.Node, c.Confidence)
			if c.Evidence != "" {
				fmt.Fprintf(&b, "  Evidence: %s\n", truncateRunes(c.Evidence, 100))
			}
		}
	}

	if depth > 1 {
		b.WriteString("\n### Reasoning Paths:\n")
		paths := r.ExplorePaths(name, depth, relatedHopFloor)
		sort.SliceStable(paths, func(i, j int) bool { return paths[i].Confidence > paths[j].Confidence })
		if len(paths) > 3 {
			paths = paths[:3]
		}
		if len(paths) == 0 {
			b.WriteString("- No multi-hop paths found\n")
		} else {
			for _, p := range paths {
				var parts []string
				for _, s := range p.Steps {
					parts = append(parts, fmt.Sprintf("%s [%s]", s.From, s.Relation))
				}
				fmt.Fprintf(&b, "- %s → %s (conf: %.2f)\n", strings.Join(parts, " → "), p.FinalNode, p.Confidence)
			}
		}
	}

	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
