// Package graph implements the Medical Knowledge Graph's data model and
// in-memory directed multigraph store: typed nodes with provenance
// tracking, parallel typed edges between node pairs, and the node/edge
// invariants (I1-I7) that must hold after every mutation.
package graph

// Entity type vocabulary (normative, §6). UNKNOWN is the placeholder type
// assigned to a node created only because a relation referenced it before
// any typed observation arrived (§3 Lifecycle).
const (
	TypeDisease    = "DISEASE"
	TypeDrug       = "DRUG"
	TypeSymptom    = "SYMPTOM"
	TypeTest       = "TEST"
	TypeAnatomy    = "ANATOMY"
	TypeTreatment  = "TREATMENT"
	TypeProcedure  = "PROCEDURE"
	TypeRiskFactor = "RISK_FACTOR"
	TypeLabValue   = "LAB_VALUE"
	TypeUnknown    = "UNKNOWN"
)

// EntityTypes lists the nine extractable entity types in prompt order
// (UNKNOWN is a store-internal placeholder, never an extraction target).
var EntityTypes = []string{
	TypeDisease, TypeDrug, TypeSymptom, TypeTest, TypeAnatomy,
	TypeTreatment, TypeProcedure, TypeRiskFactor, TypeLabValue,
}

// entityTypes is the typed vocabulary used by the Validator's type check.
var entityTypes = map[string]bool{
	TypeDisease:    true,
	TypeDrug:       true,
	TypeSymptom:    true,
	TypeTest:       true,
	TypeAnatomy:    true,
	TypeTreatment:  true,
	TypeProcedure:  true,
	TypeRiskFactor: true,
	TypeLabValue:   true,
	TypeUnknown:    true,
}

// IsValidEntityType reports whether t is one of the ten normative entity
// types (nine typed values plus UNKNOWN).
func IsValidEntityType(t string) bool {
	return entityTypes[t]
}

// Forward relation vocabulary (normative, §6), grouped by the same seven
// semantic tiers the LLM Extractor's prompt presents them under (see
// extract/prompt.go's relationTiers): Core, Risk, Clinical, Pharmacological,
// Severity, Structural, Catch-all.
const (
	// Core: the primary clinical-action relations.
	RelCauses    = "CAUSES"
	RelTreats    = "TREATS"
	RelPrevents  = "PREVENTS"
	RelDiagnoses = "DIAGNOSES"

	// Risk: relations that modulate likelihood rather than state a fact.
	RelIncreasesRisk = "INCREASES_RISK"

	// Clinical: manifestation relations between a condition and its signs.
	RelSymptomOf      = "SYMPTOM_OF"
	RelComplicationOf = "COMPLICATION_OF"

	// Pharmacological: drug-specific relations.
	RelSideEffectOf  = "SIDE_EFFECT_OF"
	RelInteractsWith = "INTERACTS_WITH"

	// Severity: progression of an existing condition.
	RelWorsens = "WORSENS"

	// Structural: diagnostic/indicative linkage.
	RelIndicates = "INDICATES"

	// Catch-all: used only when no more specific relation above applies.
	RelRelatedTo = "RELATED_TO"
)

// Inverse relation vocabulary (normative, §6). Symmetric relations
// (INTERACTS_WITH, RELATED_TO) have no inverse — see the inverse package.
const (
	RelCausedBy          = "CAUSED_BY"
	RelTreatedBy         = "TREATED_BY"
	RelPreventedBy       = "PREVENTED_BY"
	RelDiagnosedBy       = "DIAGNOSED_BY"
	RelHasSymptom        = "HAS_SYMPTOM"
	RelHasComplication   = "HAS_COMPLICATION"
	RelHasSideEffect     = "HAS_SIDE_EFFECT"
	RelRiskIncreasedBy   = "RISK_INCREASED_BY"
	RelWorsenedBy        = "WORSENED_BY"
	RelIndicatedBy       = "INDICATED_BY"
)

// ForwardRelationTypes lists the 12 forward relation types in tier order
// (Core, Risk, Clinical, Pharmacological, Severity, Structural, Catch-all).
var ForwardRelationTypes = []string{
	RelCauses, RelTreats, RelPrevents, RelDiagnoses,
	RelIncreasesRisk,
	RelSymptomOf, RelComplicationOf,
	RelSideEffectOf, RelInteractsWith,
	RelWorsens,
	RelIndicates,
	RelRelatedTo,
}

// InverseRelationTypes lists the 10 inverse relation types.
var InverseRelationTypes = []string{
	RelCausedBy, RelTreatedBy, RelPreventedBy, RelDiagnosedBy, RelHasSymptom,
	RelHasComplication, RelHasSideEffect, RelRiskIncreasedBy, RelWorsenedBy,
	RelIndicatedBy,
}

// relationWhitelist is the Validator's combined forward+inverse whitelist.
// It must contain both sides (§4.2, §9 "Inverse whitelist completeness") or
// inverse-synthesized edges are silently dropped by validation.
var relationWhitelist = func() map[string]bool {
	m := make(map[string]bool, len(ForwardRelationTypes)+len(InverseRelationTypes))
	for _, r := range ForwardRelationTypes {
		m[r] = true
	}
	for _, r := range InverseRelationTypes {
		m[r] = true
	}
	return m
}()

// IsValidRelationType reports whether r is in the combined forward+inverse
// whitelist.
func IsValidRelationType(r string) bool {
	return relationWhitelist[r]
}

// ExtractedEntity is the entity shape the LLM Extractor parses out of a
// chunk's structured response, before validation or normalization.
type ExtractedEntity struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	RelevanceScore int    `json:"relevance_score"`
}

// ExtractedRelation is the relation shape the LLM Extractor parses out of a
// chunk's structured response, before validation or normalization.
type ExtractedRelation struct {
	Source          string `json:"source_name"`
	Target          string `json:"target_name"`
	Relation        string `json:"relation"`
	ConfidenceScore int    `json:"confidence_score"`
	Evidence        string `json:"evidence"`
}

// ExtractionResult holds the LLM's combined structured output for a chunk
// (§4.3: a single call produces both entities and relations).
type ExtractionResult struct {
	Entities  []ExtractedEntity   `json:"entities"`
	Relations []ExtractedRelation `json:"relations"`
}

// Empty reports whether both entities and relations are empty. The
// Extraction Driver treats a chunk as "nothing added" only when this is
// true for both lists — checking either list alone is the bug class §4.8
// and §9 call out explicitly.
func (r ExtractionResult) Empty() bool {
	return len(r.Entities) == 0 && len(r.Relations) == 0
}
