// Package validate implements the Validator (§4.2): the two predicates that
// decide whether an extracted entity or relation is admitted into the
// graph. The administrative patterns, the confidence floor and the
// forward+inverse whitelist follow spec.md §4.2's acceptance rules.
package validate

import (
	"regexp"

	"github.com/vimedkg/vimedkg/graph"
	"github.com/vimedkg/vimedkg/normalize"
)

// confidenceFloor is the minimum 1..10 LLM confidence score a relation must
// carry to be admitted (§4.2). Inverse synthesis damps to max(6, fwd-1),
// deliberately staying at or above this floor.
const confidenceFloor = 6

// administrativePatterns reject Vietnamese legal/bureaucratic boilerplate
// that an LLM occasionally mis-extracts as a clinical entity (document
// headers, section numbering, appendices).
var administrativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)quyết định`),
	regexp.MustCompile(`(?i)văn bản`),
	regexp.MustCompile(`(?i)bộ y tế`),
	regexp.MustCompile(`(?i)\btrang\s+\d+`),
	regexp.MustCompile(`(?i)\bđiều\s+\d+`),
	regexp.MustCompile(`(?i)\bkhoản\s+\d+`),
	regexp.MustCompile(`(?i)\bmục\s+\d+`),
	regexp.MustCompile(`(?i)phụ lục`),
}

// EntityOK reports whether an extracted entity may be admitted to the
// graph.
func EntityOK(e graph.ExtractedEntity) bool {
	if len([]rune(e.Name)) < 2 {
		return false
	}
	for _, pattern := range administrativePatterns {
		if pattern.MatchString(e.Name) {
			return false
		}
	}
	return graph.IsValidEntityType(e.Type)
}

// RelationOK reports whether an extracted relation may be admitted to the
// graph.
func RelationOK(r graph.ExtractedRelation) bool {
	if r.ConfidenceScore < confidenceFloor {
		return false
	}
	if !graph.IsValidRelationType(r.Relation) {
		return false
	}
	if len([]rune(r.Source)) < 2 || len([]rune(r.Target)) < 2 {
		return false
	}
	if normalize.Normalize(r.Source) == normalize.Normalize(r.Target) {
		return false
	}
	return true
}
