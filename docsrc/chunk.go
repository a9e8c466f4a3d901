package docsrc

import (
	"strings"
)

// Chunk is a token-budgeted slice of document text tagged with the page it
// came from (§4.8's driver indexes chunks by this Page, and by the slice
// index as the chunk id).
type Chunk struct {
	Text string
	Page int
}

// Config bounds the chunk token budget and overlap, mirroring the
// teacher's chunker.Config MaxTokens/Overlap fields.
type Config struct {
	MaxTokens int
	Overlap   int
}

// DefaultConfig matches spec.md's default chunk size (512 tokens, 50
// token overlap), the same defaults the teacher's original chunker and
// original_source's rag_service.py TokenTextSplitter(chunk_size=512,
// chunk_overlap=50) both use.
func DefaultConfig() Config {
	return Config{MaxTokens: 512, Overlap: 50}
}

// ChunkPages splits every page's text into token-budgeted fragments and
// flattens them into a single ordered []Chunk, carrying each fragment's
// originating page number forward. Adapted from the teacher's
// chunker.Chunker.splitContent/splitBySentences, simplified: the teacher
// chunked parser.Section trees (with heading/parent/child chunk types)
// sourced from a multi-format document; since docsrc only ever emits flat
// page text, the section-tree bookkeeping is dropped and splitContent
// is applied directly per page.
func ChunkPages(pages []Page, cfg Config) []Chunk {
	var chunks []Chunk
	for _, p := range pages {
		for _, fragment := range splitContent(p.Text, cfg) {
			chunks = append(chunks, Chunk{Text: fragment, Page: p.Number})
		}
	}
	return chunks
}

func splitContent(text string, cfg Config) []string {
	if estimateTokens(text) <= cfg.MaxTokens {
		return []string{strings.TrimSpace(text)}
	}

	paragraphs := splitParagraphs(text)
	var fragments []string
	var current strings.Builder
	currentTokens := 0
	overlapText := ""

	for _, para := range paragraphs {
		paraTokens := estimateTokens(para)

		if paraTokens > cfg.MaxTokens {
			if current.Len() > 0 {
				fragments = append(fragments, strings.TrimSpace(current.String()))
				overlapText = extractOverlap(current.String(), cfg.Overlap)
				current.Reset()
				currentTokens = 0
			}
			sentenceFragments := splitBySentences(para, overlapText, cfg)
			fragments = append(fragments, sentenceFragments...)
			if len(sentenceFragments) > 0 {
				overlapText = extractOverlap(sentenceFragments[len(sentenceFragments)-1], cfg.Overlap)
			}
			continue
		}

		if currentTokens+paraTokens > cfg.MaxTokens && current.Len() > 0 {
			fragments = append(fragments, strings.TrimSpace(current.String()))
			overlapText = extractOverlap(current.String(), cfg.Overlap)
			current.Reset()
			currentTokens = 0

			if overlapText != "" {
				current.WriteString(overlapText)
				current.WriteString("\n\n")
				currentTokens = estimateTokens(overlapText)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if current.Len() > 0 {
		fragments = append(fragments, strings.TrimSpace(current.String()))
	}

	return fragments
}

func splitBySentences(text, initialOverlap string, cfg Config) []string {
	sentences := splitSentences(text)
	var fragments []string
	var current strings.Builder
	currentTokens := 0

	if initialOverlap != "" {
		current.WriteString(initialOverlap)
		current.WriteString(" ")
		currentTokens = estimateTokens(initialOverlap)
	}

	for _, sent := range sentences {
		sentTokens := estimateTokens(sent)

		if currentTokens+sentTokens > cfg.MaxTokens && current.Len() > 0 {
			fragments = append(fragments, strings.TrimSpace(current.String()))
			overlap := extractOverlap(current.String(), cfg.Overlap)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				current.WriteString(" ")
				currentTokens = estimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if current.Len() > 0 {
		fragments = append(fragments, strings.TrimSpace(current.String()))
	}

	return fragments
}

// estimateTokens approximates token count with a word-count heuristic
// (tokens ~ words * 1.3), matching the teacher's chunker.estimateTokens.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words)*1.3 + 0.999999)
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences is a simple sentence tokenizer splitting on
// period/question-mark/exclamation followed by whitespace or end of
// string. Ported from the teacher's chunker.splitSentences.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				s := strings.TrimSpace(cur.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// extractOverlap returns the trailing portion of text whose estimated
// token count is at most maxTokens, working at the word level. Ported from
// the teacher's chunker.extractOverlap.
func extractOverlap(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	maxWords := int(float64(maxTokens) / 1.3)
	if maxWords > len(words) {
		maxWords = len(words)
	}
	if maxWords == 0 {
		return ""
	}
	return strings.Join(words[len(words)-maxWords:], " ")
}
