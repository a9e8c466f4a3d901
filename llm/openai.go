package llm

import "context"

// openAIProvider implements Provider for the OpenAI chat completion API,
// used as the cloud fallback when no self-hosted Ollama instance or Groq
// key is configured.
//
// API key: set via config, OPENAI_API_KEY env var, or the CLI's
// MKG_CHAT_API_KEY env var.
type openAIProvider struct {
	base openAICompatClient
}

// NewOpenAI creates a provider for OpenAI. The default model is a small,
// cost-effective chat model adequate for the extraction prompt's
// structured-JSON task, not the largest available.
func NewOpenAI(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &openAIProvider{base: newOpenAICompatClient(cfg)}
}

func (p *openAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
