// Package driver implements the Extraction Driver (§4.8): the sequential,
// resumable top-level loop that turns document chunks into graph mutations
// via the Extractor, Validator, and Inverse Synthesizer. Grounded on
// original_source's rag_service.py::RAGService.ingest_document, which runs
// the same load-checkpoint / per-chunk-extract-validate-persist /
// periodic-checkpoint loop (minus that file's vector-store step, which has
// no counterpart here).
package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vimedkg/vimedkg/checkpoint"
	"github.com/vimedkg/vimedkg/docsrc"
	"github.com/vimedkg/vimedkg/extract"
	"github.com/vimedkg/vimedkg/graph"
	"github.com/vimedkg/vimedkg/inverse"
	"github.com/vimedkg/vimedkg/validate"
)

// Config controls driver behavior (§4.8's "every K chunks" checkpoint
// cadence and the fingerprint inputs that gate resumption).
type Config struct {
	CheckpointEvery int // default 20, per spec.md
	DocumentPath    string
	ChunkSize       int
	LLMModelName    string
}

func (c Config) withDefaults() Config {
	if c.CheckpointEvery <= 0 {
		c.CheckpointEvery = 20
	}
	return c
}

// Stats summarizes one Run invocation for the caller (cmd/extract logs
// this; the original_source function returns an equivalent status dict).
type Stats struct {
	ChunksTotal     int
	ChunksProcessed int
	LastChunkID     int
	EntitiesAdded   int
	RelationsAdded  int
}

// Run drives chunks through extractor, validating and inserting into
// store, synthesizing inverses, and checkpointing via manager. It resumes
// from manager's existing checkpoint; if that checkpoint's fingerprint
// differs from cfg's, it logs a warning and resumes anyway. A checkpoint
// without a recorded fingerprint (e.g. a missing metadata sidecar) is not
// resumed from: processing starts at chunk 0.
func Run(ctx context.Context, store *graph.Store, manager *checkpoint.Manager, extractor *extract.Extractor, chunks []docsrc.Chunk, cfg Config) (Stats, error) {
	cfg = cfg.withDefaults()
	fingerprint := checkpoint.Fingerprint(cfg.DocumentPath, cfg.ChunkSize, cfg.LLMModelName)

	startChunk := 0
	lastProcessed := -1
	if _, meta, ok, err := manager.Load(); err != nil {
		return Stats{}, fmt.Errorf("driver: loading checkpoint: %w", err)
	} else if ok && meta.Fingerprint != "" {
		if meta.Fingerprint != fingerprint {
			slog.Warn("driver: checkpoint fingerprint differs from this run's parameters, resuming anyway",
				"checkpoint_fingerprint", meta.Fingerprint, "fingerprint", fingerprint)
		}
		startChunk = meta.LastChunkID + 1
		lastProcessed = meta.LastChunkID
		slog.Info("driver: resuming from checkpoint", "start_chunk", startChunk)
	}

	stats := Stats{ChunksTotal: len(chunks), LastChunkID: lastProcessed}

	for i := startChunk; i < len(chunks); i++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		chunk := chunks[i]
		result, err := extractor.Extract(ctx, chunk.Text)
		if err != nil {
			slog.Warn("driver: chunk extraction failed, skipping", "chunk", i, "error", err)
			continue
		}

		// Both entities and relations empty: this chunk contributed
		// nothing. Do NOT advance lastProcessed — checking either list
		// alone (instead of both) is the bug class §4.8/§9 warn about.
		if result.Empty() {
			slog.Info("driver: no extraction for chunk", "chunk", i)
			continue
		}

		entitiesAdded, relationsAdded := applyResult(store, result, chunk.Page, i)
		stats.EntitiesAdded += entitiesAdded
		stats.RelationsAdded += relationsAdded
		stats.ChunksProcessed++

		lastProcessed = i
		slog.Info("driver: chunk processed",
			"chunk", i, "total", len(chunks),
			"entities_added", entitiesAdded, "relations_added", relationsAdded,
		)

		if (i+1)%cfg.CheckpointEvery == 0 {
			if err := manager.Save(store, lastProcessed, len(chunks), fingerprint); err != nil {
				slog.Error("driver: periodic checkpoint failed", "error", err)
			}
		}
	}

	stats.LastChunkID = lastProcessed

	// Final checkpoint unconditionally reflects the TRUE last processed
	// chunk id: lastProcessed stays at its resumed or -1 starting value if
	// the entire remaining tail was skipped, never len(chunks) and never
	// start_chunk-1 silently overwritten by a loop index that outran actual
	// progress.
	if err := manager.Save(store, lastProcessed, len(chunks), fingerprint); err != nil {
		return stats, fmt.Errorf("driver: final checkpoint: %w", err)
	}

	return stats, nil
}

// applyResult validates and inserts one chunk's extraction result,
// including inverse synthesis for every accepted forward relation (§4.8
// step c).
func applyResult(store *graph.Store, result graph.ExtractionResult, page, chunk int) (entitiesAdded, relationsAdded int) {
	for _, e := range result.Entities {
		if !validate.EntityOK(e) {
			continue
		}
		store.AddEntity(e, page, chunk)
		entitiesAdded++
	}

	for _, rel := range result.Relations {
		if !validate.RelationOK(rel) {
			continue
		}
		if store.AddRelation(rel, page, chunk) {
			relationsAdded++
		}

		if inv, ok := inverse.Synthesize(rel); ok && validate.RelationOK(inv) {
			if store.AddRelation(inv, page, chunk) {
				relationsAdded++
			}
		}
	}

	return entitiesAdded, relationsAdded
}
