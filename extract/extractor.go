// Package extract implements the LLM Extractor (§4.3): a single combined
// LLM call per chunk that returns both entities and relations, in contrast
// to the teacher's two-stage (entities, then relationships) pipeline.
// Grounded on original_source's rag_service.py::extraction_chain_factory
// for the prompt shape and on the teacher's graph/builder.go for the
// response-parsing idiom (markdown-fence stripping, brace-scanning
// fallback) reused here as extractJSON.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vimedkg/vimedkg/graph"
	"github.com/vimedkg/vimedkg/llm"
)

// Extractor pulls an ExtractionResult out of a single chunk of text via one
// LLM call.
type Extractor struct {
	provider llm.Provider
	model    string
}

// New returns an Extractor that issues chat completions through provider
// using model.
func New(provider llm.Provider, model string) *Extractor {
	return &Extractor{provider: provider, model: model}
}

// Extract runs the combined entity+relation extraction prompt over
// chunkText and parses the model's JSON response into an ExtractionResult.
// An LLM or parse failure is returned as an error; an empty-but-well-formed
// response (no entities, no relations) is not an error — see
// ExtractionResult.Empty.
func (x *Extractor) Extract(ctx context.Context, chunkText string) (graph.ExtractionResult, error) {
	resp, err := x.provider.Chat(ctx, llm.ChatRequest{
		Model: x.model,
		Messages: []llm.Message{
			{Role: "system", Content: buildSystemPrompt()},
			{Role: "user", Content: buildUserPrompt(chunkText)},
		},
		Temperature:    0,
		ResponseFormat: "json_object",
	})
	if err != nil {
		return graph.ExtractionResult{}, fmt.Errorf("extract: llm chat: %w", err)
	}

	jsonStr, err := extractJSON(resp.Content)
	if err != nil {
		return graph.ExtractionResult{}, fmt.Errorf("extract: parsing response: %w", err)
	}

	var result graph.ExtractionResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return graph.ExtractionResult{}, fmt.Errorf("extract: unmarshalling response: %w", err)
	}
	return result, nil
}

// codeBlockRe strips markdown code fences from LLM output, adapted from
// the teacher's graph/builder.go.
var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// extractJSON attempts to find a valid JSON object in the LLM response
// text. It handles common LLM quirks: markdown code blocks, and
// explanatory text before/after the JSON object.
func extractJSON(raw string) (string, error) {
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}

	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}
