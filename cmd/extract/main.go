// Command extract runs the Extraction Driver end-to-end over a single
// Vietnamese clinical PDF: load or resume a checkpoint, chunk the
// document, extract entities and relations chunk by chunk, and save a
// final checkpoint. Flag/env-var conventions follow the teacher's
// cmd/server/main.go (structured JSON logging via slog, a -config flag,
// environment overrides), minus the HTTP listener this command has no use
// for.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/vimedkg/vimedkg"
	"github.com/vimedkg/vimedkg/checkpoint"
	"github.com/vimedkg/vimedkg/docsrc"
	"github.com/vimedkg/vimedkg/extract"
	"github.com/vimedkg/vimedkg/graph"
	"github.com/vimedkg/vimedkg/llm"

	"github.com/vimedkg/vimedkg/driver"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	docPath := flag.String("doc", "", "Path to the clinical PDF to ingest")
	flag.Parse()

	runID := uuid.NewString()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("run_id", runID))

	if *docPath == "" {
		slog.Error("missing required -doc flag")
		os.Exit(1)
	}

	cfg := vimedkg.DefaultConfig()
	if *configPath != "" {
		loaded, err := vimedkg.LoadConfigFile(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	applyEnvOverrides(&cfg)

	if !llm.IsSupportedProvider(cfg.Chat.Provider) {
		slog.Error("unsupported chat provider", "provider", cfg.Chat.Provider, "supported", llm.SupportedProviders)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *docPath, cfg); err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, docPath string, cfg vimedkg.Config) error {
	slog.Info("extracting document", "path", docPath)

	pages, err := docsrc.ExtractPages(docPath)
	if err != nil {
		return err
	}
	chunks := docsrc.ChunkPages(pages, docsrc.Config{MaxTokens: cfg.MaxChunkTokens, Overlap: cfg.ChunkOverlap})
	slog.Info("document chunked", "pages", len(pages), "chunks", len(chunks))

	manager, err := checkpoint.New(cfg.CheckpointDir)
	if err != nil {
		return err
	}

	store := graph.New()
	if restored, _, ok, err := manager.Load(); err != nil {
		return err
	} else if ok {
		store = restored
	}

	pool := llm.NewKeyPool(
		llm.Config{Provider: cfg.Chat.Provider, Model: cfg.Chat.Model, BaseURL: cfg.Chat.BaseURL},
		cfg.APIKeys,
		cfg.KeyCooldown.Duration,
		cfg.MaxKeyRetries,
		nil,
	)
	extractor := extract.New(pool, cfg.Chat.Model)

	stats, err := driver.Run(ctx, store, manager, extractor, chunks, driver.Config{
		CheckpointEvery: cfg.CheckpointEvery,
		DocumentPath:    docPath,
		ChunkSize:       cfg.MaxChunkTokens,
		LLMModelName:    cfg.Chat.Model,
	})
	if err != nil {
		return err
	}

	slog.Info("extraction complete",
		"chunks_total", stats.ChunksTotal,
		"chunks_processed", stats.ChunksProcessed,
		"last_chunk_id", stats.LastChunkID,
		"entities_added", stats.EntitiesAdded,
		"relations_added", stats.RelationsAdded,
		"nodes", store.NodeCount(),
		"edges", store.EdgeCount(),
	)
	return nil
}

func applyEnvOverrides(cfg *vimedkg.Config) {
	if v := os.Getenv("MKG_CHAT_PROVIDER"); v != "" {
		cfg.Chat.Provider = v
	}
	if v := os.Getenv("MKG_CHAT_MODEL"); v != "" {
		cfg.Chat.Model = v
	}
	if v := os.Getenv("MKG_CHAT_BASE_URL"); v != "" {
		cfg.Chat.BaseURL = v
	}
	if v := os.Getenv("MKG_CHECKPOINT_DIR"); v != "" {
		cfg.CheckpointDir = v
	}
	if v := os.Getenv("MKG_CHAT_API_KEY"); v != "" && len(cfg.APIKeys) == 0 {
		cfg.APIKeys = []string{v}
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" && cfg.Chat.Provider == "groq" && len(cfg.APIKeys) == 0 {
		cfg.APIKeys = []string{v}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Chat.Provider == "openai" && len(cfg.APIKeys) == 0 {
		cfg.APIKeys = []string{v}
	}
}
