package llm

import "context"

// ollamaProvider implements Provider for Ollama's OpenAI-compatible chat
// endpoint. Ollama is the default provider (vimedkg.DefaultConfig):
// clinical documents should not need to leave the machine processing them,
// and Ollama's local model serving keeps every extraction call offline.
// The teacher's Ollama provider additionally called Ollama's native
// /api/embed endpoint for embeddings; extraction never embeds, so that
// path is gone along with it.
type ollamaProvider struct {
	base openAICompatClient
}

// NewOllama creates a provider for Ollama.
func NewOllama(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &ollamaProvider{base: newOpenAICompatClient(cfg)}
}

func (p *ollamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
