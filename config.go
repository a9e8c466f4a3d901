// Package vimedkg wires together the medical knowledge graph extraction
// pipeline and graph reasoner: LLM-driven entity/relation extraction from
// chunked Vietnamese clinical documents, an in-memory directed multigraph
// with checkpointed resume, and confidence-weighted multi-hop reasoning.
package vimedkg

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the extraction and reasoning pipeline.
type Config struct {
	// LLM providers. Chat is used for structured extraction; a separate
	// configuration for summarization/other downstream consumers can reuse
	// Chat since the core only ever issues one kind of call (§4.3).
	Chat LLMConfig `json:"chat" yaml:"chat"`

	// APIKeys is the credential pool rotated by the API-Key Pool (§4.4).
	// A single-element slice disables rotation but still benefits from the
	// cooldown-and-retry behavior.
	APIKeys []string `json:"api_keys" yaml:"api_keys"`

	// MaxKeyRetries bounds the number of rotation attempts per call before
	// the Extractor treats the chunk as empty. Default 3.
	MaxKeyRetries int `json:"max_key_retries" yaml:"max_key_retries"`

	// KeyCooldown is how long the pool sleeps after every key has failed,
	// before clearing the failed set and retrying. Default 60s.
	KeyCooldown Duration `json:"key_cooldown" yaml:"key_cooldown"`

	// Chunking (the document chunk producer is a collaborator, §6, but the
	// CLI entrypoint needs concrete defaults to drive it).
	MaxChunkTokens int `json:"max_chunk_tokens" yaml:"max_chunk_tokens"`
	ChunkOverlap   int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// CheckpointEvery is the chunk cadence K at which the driver saves an
	// intermediate checkpoint (§4.8 step 2e). Default 20.
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every"`

	// CheckpointDir is where the graph blob and JSON sidecar are written.
	CheckpointDir string `json:"checkpoint_dir" yaml:"checkpoint_dir"`

	// Reasoning defaults.
	DefaultConfidenceThreshold float64 `json:"default_confidence_threshold" yaml:"default_confidence_threshold"`
	DefaultExploreDepth        int     `json:"default_explore_depth" yaml:"default_explore_depth"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // ollama, groq, openai, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
}

// Duration wraps time.Duration with JSON/YAML text marshalling so config
// files can write "60s" instead of a nanosecond integer.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// DefaultConfig returns a Config with sensible defaults for local inference
// against an Ollama server, matching the teacher lineage's local-first
// posture.
func DefaultConfig() Config {
	return Config{
		Chat: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		MaxKeyRetries:              3,
		KeyCooldown:                Duration{Duration: 60 * time.Second},
		MaxChunkTokens:             512,
		ChunkOverlap:               50,
		CheckpointEvery:            20,
		CheckpointDir:              ".mkg-checkpoints",
		DefaultConfidenceThreshold: 0.3,
		DefaultExploreDepth:        2,
	}
}

// LoadConfigFile reads a Config from a JSON or YAML file, selecting the
// decoder by file extension (.yaml/.yml vs. anything else treated as JSON):
// the JSON arm follows the teacher's config.go, the YAML arm the
// amlandas-Conduit-AI-Intelligence-Hub lineage's YAML-first configuration
// style. Fields absent from the file retain DefaultConfig()'s values; a
// field the file sets explicitly, even to a zero value, overrides them.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if isYAMLPath(path) {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding yaml config: %w", err)
		}
		return cfg, nil
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding json config: %w", err)
	}
	return cfg, nil
}

func isYAMLPath(path string) bool {
	n := len(path)
	return n >= 5 && path[n-5:] == ".yaml" || n >= 4 && path[n-4:] == ".yml"
}
