package llm

import "context"

// groqProvider implements Provider for Groq's inference API. Groq uses the
// OpenAI-compatible chat format and provides extremely fast inference for
// open-source models (Llama, Mixtral, Gemma, etc.) — the preferred choice
// for driving the extraction pipeline over a large document set, where
// per-chunk latency compounds across hundreds of sequential calls (§4.8
// runs strictly one chunk at a time, never in parallel).
//
// API key: set via config, GROQ_API_KEY env var, or the CLI's
// MKG_CHAT_API_KEY env var.
type groqProvider struct {
	base openAICompatClient
}

// NewGroq creates a provider for Groq. The default model favors
// instruction-following accuracy on structured JSON output over raw speed,
// since a malformed extraction response costs a full chunk's worth of
// entities and relations.
func NewGroq(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &groqProvider{base: newOpenAICompatClient(cfg)}
}

func (p *groqProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
