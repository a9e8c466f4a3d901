package llm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vimedkg/vimedkg"
)

// KeyPool wraps a Provider with round-robin rotation across a pool of API
// keys, so a single rate-limited credential does not stall extraction.
// Grounded on original_source's llm_service.py::APIKeyManager and
// LLMService.execute_chain: rotate-on-429, cooldown-and-reset-all when every
// key has failed, and re-materialize the client after every rotation.
//
// A Chat call plays the teacher's "retry within a provider" role
// (openAICompatClient.doPost already retries transient HTTP errors and 429s
// with backoff); KeyPool sits one layer above that, switching credentials
// entirely once a single key's retry budget is exhausted.
type KeyPool struct {
	cfg     Config
	factory func(Config) Provider

	mu         sync.Mutex
	keys       []string
	index      int
	failed     map[int]bool
	cooldown   time.Duration
	maxRetries int
	current    Provider
}

// NewKeyPool builds a KeyPool over keys, materializing providers of the
// given base config (with APIKey swapped per rotation) via factory. cooldown
// is the pause before every key is retried again after all are exhausted
// (the Python original hardcodes 60s); maxRetries bounds how many times
// Chat will rotate keys before giving up.
func NewKeyPool(cfg Config, keys []string, cooldown time.Duration, maxRetries int, factory func(Config) Provider) *KeyPool {
	if factory == nil {
		factory = func(c Config) Provider {
			p, _ := NewProvider(c)
			return p
		}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	p := &KeyPool{
		cfg:        cfg,
		factory:    factory,
		keys:       keys,
		failed:     make(map[int]bool),
		cooldown:   cooldown,
		maxRetries: maxRetries,
	}
	if len(keys) > 0 {
		p.current = p.materialize(0)
	}
	return p
}

func (p *KeyPool) materialize(index int) Provider {
	cfg := p.cfg
	cfg.APIKey = p.keys[index]
	return p.factory(cfg)
}

// rotate advances to the next non-failed key, marking the current one
// failed first. Returns false if every key has now failed.
func (p *KeyPool) rotate() bool {
	p.failed[p.index] = true
	for i := 0; i < len(p.keys); i++ {
		next := (p.index + 1 + i) % len(p.keys)
		if !p.failed[next] {
			p.index = next
			p.current = p.materialize(next)
			slog.Info("llm: rotated API key", "key_index", next+1)
			return true
		}
	}
	return false
}

func (p *KeyPool) resetFailed() {
	p.failed = make(map[int]bool)
	p.index = 0
	p.current = p.materialize(0)
}

// Chat executes req against the current key, rotating to the next key on a
// rate-limit error and retrying up to maxRetries times. If every key is
// exhausted it sleeps cooldown, resets the failed set, and resumes from the
// first key — mirroring execute_chain's "wait 60s, reset, retry" fallback.
func (p *KeyPool) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return nil, vimedkg.ErrNoAPIKeys
	}

	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		resp, err := p.current.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRateLimitErr(err) {
			return nil, err
		}

		slog.Warn("llm: rate limit hit, rotating key", "key_index", p.index+1, "error", err)
		if p.rotate() {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		slog.Warn("llm: all keys exhausted, cooling down", "cooldown", p.cooldown)
		select {
		case <-time.After(p.cooldown):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		p.resetFailed()
	}

	return nil, vimedkg.ErrAllKeysExhausted
}

func isRateLimitErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsFold(msg, "429") ||
		containsFold(msg, "rate limit") ||
		containsFold(msg, "too many requests")
}

func containsFold(s, substr string) bool {
	sl, subl := len(s), len(substr)
	if subl == 0 {
		return true
	}
	for i := 0; i+subl <= sl; i++ {
		if equalFold(s[i:i+subl], substr) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
