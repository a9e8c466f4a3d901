// Package normalize canonicalizes entity surface forms extracted from
// Vietnamese clinical text into a stable identity key for the graph store.
//
// The pipeline is grounded on original_source's text_processing.py, which
// built its normalization on Python's re and unicodedata modules; here the
// Unicode composition step is done with golang.org/x/text/unicode/norm,
// the idiomatic Go equivalent also used by t-kawata-mycute's normalize.go.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// unknownLabel is what Normalize returns for empty or whitespace-only input.
const unknownLabel = "Unknown"

// abbreviations maps common Vietnamese clinical shorthand to its expanded
// canonical form. Expansion happens token-wise so abbreviations embedded in
// longer phrases are not corrupted.
var abbreviations = map[string]string{
	"btm":  "bệnh thận mạn",
	"đtđ":  "đái tháo đường",
	"tha":  "tăng huyết áp",
	"nmct": "nhồi máu cơ tim",
	"tbmmn": "tai biến mạch máu não",
	"copd": "bệnh phổi tắc nghẽn mạn tính",
	"stm":  "suy thận mạn",
	"rltg": "rối loạn tiêu glucose",
}

// preserveMixedCase lists canonical abbreviations that must keep their
// clinical mixed-case spelling rather than being lowercased/capitalized
// like ordinary Vietnamese text. Matching is case-insensitive; the stored
// form is the map value.
var preserveMixedCase = map[string]string{
	"egfr":  "eGFR",
	"hba1c": "HbA1c",
	"ckd":   "CKD",
	"bmi":   "BMI",
	"ldl":   "LDL",
	"hdl":   "HDL",
	"copd":  "COPD",
}

// synonyms maps a canonical term to variant surface forms that should
// collapse to it. Variants are replaced in map iteration order and then in
// list order; no variant in this table contains another variant, so that
// order does not change the result.
var synonyms = map[string][]string{
	"đái tháo đường": {"tiểu đường", "bệnh đái tháo đường"},
	"tăng huyết áp":  {"cao huyết áp", "huyết áp cao"},
	"bệnh thận mạn":  {"suy thận mạn tính", "bệnh thận mạn tính"},
}

var (
	parenRe       = regexp.MustCompile(`\([^)]*\)`)
	bracketRe     = regexp.MustCompile(`\[[^\]]*\]`)
	versionRe     = regexp.MustCompile(`(?i)\bv(?:ersion)?\.?\s?\d+(\.\d+)*\b`)
	pageRefRe     = regexp.MustCompile(`(?i)\b(trang|page|tr\.?)\s*\d+\b`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize implements the Text Normalizer pipeline: NFC composition, trim
// and lowercase, whitespace collapse, abbreviation expansion, synonym
// collapse, noise stripping, a second whitespace collapse, and finally
// first-character-only capitalization. It is idempotent: calling Normalize
// on an already-normalized string returns it unchanged.
func Normalize(raw string) string {
	composed := norm.NFC.String(raw)
	trimmed := strings.TrimSpace(composed)
	if trimmed == "" {
		return unknownLabel
	}

	lowered := strings.ToLower(trimmed)
	collapsed := collapseWhitespace(lowered)

	expanded := expandAbbreviations(collapsed)
	collapsedSyn := collapseSynonyms(expanded)

	stripped := stripNoise(collapsedSyn)
	stripped = collapseWhitespace(stripped)

	if stripped == "" {
		return unknownLabel
	}

	restored := restoreMixedCase(stripped)
	return capitalizeFirst(restored)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// expandAbbreviations replaces whole-word abbreviation tokens with their
// expanded canonical phrase.
func expandAbbreviations(s string) string {
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		if expansion, ok := abbreviations[tok]; ok {
			tokens[i] = expansion
		}
	}
	return strings.Join(tokens, " ")
}

// collapseSynonyms substring-replaces every known variant with its
// canonical term. Canonical terms themselves are left untouched since a
// canonical term is never also listed as one of its own variants.
func collapseSynonyms(s string) string {
	for canonical, variants := range synonyms {
		for _, variant := range variants {
			s = strings.ReplaceAll(s, variant, canonical)
		}
	}
	return s
}

// stripNoise removes parenthesized/bracketed asides, version numbers, and
// page references that LLM extraction sometimes carries over verbatim from
// source text.
func stripNoise(s string) string {
	s = parenRe.ReplaceAllString(s, " ")
	s = bracketRe.ReplaceAllString(s, " ")
	s = versionRe.ReplaceAllString(s, " ")
	s = pageRefRe.ReplaceAllString(s, " ")
	return s
}

// restoreMixedCase restores any token that matches a known clinical
// abbreviation (eGFR, HbA1c, CKD, ...) to its canonical mixed-case spelling,
// whether the token stands alone or is embedded in a longer phrase.
func restoreMixedCase(s string) string {
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		if canonical, ok := preserveMixedCase[tok]; ok {
			tokens[i] = canonical
		}
	}
	return strings.Join(tokens, " ")
}

// capitalizeFirst uppercases only the first rune, leaving the rest of the
// string untouched so embedded mixed-case abbreviations (e.g. within a
// longer phrase) are preserved rather than corrupted by full title-casing.
func capitalizeFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
