// Package inverse implements the Inverse Synthesizer (§4.5): for every
// accepted forward relation that has a defined inverse, it derives the
// mirrored edge so the graph is traversable against the grain of the
// source text (a clinical sentence states "metformin treats diabetes", but
// a reasoner asking "what treats X" needs TREATED_BY too). The mapping and
// damping rule are taken from the forward→inverse table of §4.5.
package inverse

import (
	"fmt"

	"github.com/vimedkg/vimedkg/graph"
)

// damping is subtracted from the forward confidence to produce the
// inverse's confidence score, never dropping below confidenceFloor (§4.5).
const damping = 1

const confidenceFloor = 6

// forwardToInverse is the normative 10-entry mapping (§4.5, §6). CAUSES and
// WORSENS intentionally share no slot collision with INTERACTS_WITH/
// RELATED_TO, which are symmetric and have no inverse.
var forwardToInverse = map[string]string{
	graph.RelCauses:          graph.RelCausedBy,
	graph.RelTreats:          graph.RelTreatedBy,
	graph.RelPrevents:        graph.RelPreventedBy,
	graph.RelDiagnoses:       graph.RelDiagnosedBy,
	graph.RelSymptomOf:       graph.RelHasSymptom,
	graph.RelComplicationOf:  graph.RelHasComplication,
	graph.RelSideEffectOf:    graph.RelHasSideEffect,
	graph.RelIncreasesRisk:   graph.RelRiskIncreasedBy,
	graph.RelWorsens:         graph.RelWorsenedBy,
	graph.RelIndicates:       graph.RelIndicatedBy,
}

// HasInverse reports whether relation has a defined inverse. RELATED_TO and
// INTERACTS_WITH are symmetric and report false.
func HasInverse(relation string) bool {
	_, ok := forwardToInverse[relation]
	return ok
}

// Synthesize derives the inverse of an accepted forward relation. The
// caller must only pass relations that already satisfy validate.RelationOK;
// Synthesize itself performs no validation beyond the has-inverse check.
// ok is false if relation is symmetric or otherwise has no defined inverse.
func Synthesize(r graph.ExtractedRelation) (inv graph.ExtractedRelation, ok bool) {
	invType, has := forwardToInverse[r.Relation]
	if !has {
		return graph.ExtractedRelation{}, false
	}

	confidence := r.ConfidenceScore - damping
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	return graph.ExtractedRelation{
		Source:          r.Target,
		Target:          r.Source,
		Relation:        invType,
		ConfidenceScore: confidence,
		Evidence:        fmt.Sprintf("Inverse of: %s", r.Evidence),
	}, true
}
