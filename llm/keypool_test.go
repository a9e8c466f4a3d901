package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeProvider fails with a rate-limit error for a fixed number of calls on
// the key it was materialized with, then succeeds.
type fakeProvider struct {
	key        string
	failCalls  int
	calls      *int
}

func (f *fakeProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	*f.calls++
	if f.failCalls > 0 {
		f.failCalls--
		return nil, errors.New("429 Too Many Requests")
	}
	return &ChatResponse{Content: "ok from " + f.key}, nil
}

func TestKeyPoolRotatesOnRateLimit(t *testing.T) {
	calls := 0
	keys := []string{"k1", "k2", "k3"}
	factory := func(cfg Config) Provider {
		// k1 always rate-limits; k2 succeeds immediately.
		failCalls := 0
		if cfg.APIKey == "k1" {
			failCalls = 100
		}
		return &fakeProvider{key: cfg.APIKey, failCalls: failCalls, calls: &calls}
	}

	pool := NewKeyPool(Config{}, keys, time.Millisecond, 5, factory)
	// Patch the 1s post-rotation pause down via a short context deadline test
	// would be slow; instead just confirm rotation reaches a working key
	// within the retry budget.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := pool.Chat(ctx, ChatRequest{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "ok from k2" {
		t.Errorf("Content = %q, want response from k2", resp.Content)
	}
}

func TestKeyPoolAllKeysExhausted(t *testing.T) {
	calls := 0
	keys := []string{"k1", "k2"}
	factory := func(cfg Config) Provider {
		return &fakeProvider{key: cfg.APIKey, failCalls: 100, calls: &calls}
	}

	pool := NewKeyPool(Config{}, keys, 10*time.Millisecond, 2, factory)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := pool.Chat(ctx, ChatRequest{})
	if err == nil {
		t.Fatalf("expected an error when all keys are permanently rate-limited")
	}
}

func TestKeyPoolNonRateLimitErrorPropagatesImmediately(t *testing.T) {
	calls := 0
	keys := []string{"k1"}
	factory := func(cfg Config) Provider {
		return &failOnceProvider{calls: &calls}
	}

	pool := NewKeyPool(Config{}, keys, time.Millisecond, 3, factory)
	_, err := pool.Chat(context.Background(), ChatRequest{})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected immediate non-rate-limit error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call (no retry for non-rate-limit errors), got %d", calls)
	}
}

type failOnceProvider struct {
	calls *int
}

func (f *failOnceProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	*f.calls++
	return nil, errors.New("boom")
}

func TestKeyPoolNoKeysConfigured(t *testing.T) {
	pool := NewKeyPool(Config{}, nil, time.Second, 3, nil)
	_, err := pool.Chat(context.Background(), ChatRequest{})
	if err == nil {
		t.Fatalf("expected ErrNoAPIKeys when no keys configured")
	}
}
