package vimedkg

import "errors"

var (
	// ErrNoAPIKeys is returned when a key pool is constructed with zero keys.
	ErrNoAPIKeys = errors.New("mkg: no API keys configured")

	// ErrAllKeysExhausted is returned by llm.KeyPool.Chat when its retry
	// budget is used up without a successful call.
	ErrAllKeysExhausted = errors.New("mkg: all API keys exhausted")

	// ErrExtractionFailed names a failed LLM extraction. extract.Extractor
	// does not wrap its errors with it; the driver logs any Extract error and
	// skips the chunk.
	ErrExtractionFailed = errors.New("mkg: llm extraction failed")

	// ErrRateLimited names a rate-limited provider call. The built-in
	// providers report rate limits as HTTP 429 errors rather than this value;
	// llm.KeyPool rotates keys on any error whose text mentions "429",
	// "rate limit" or "too many requests", which includes this one.
	ErrRateLimited = errors.New("mkg: rate limited")

	// ErrCheckpointNotFound names a missing checkpoint. checkpoint.Manager.Load
	// does not return it: a missing checkpoint is reported as ok=false with
	// a nil error.
	ErrCheckpointNotFound = errors.New("mkg: checkpoint not found")

	// ErrCheckpointCorrupt names an undecodable checkpoint blob or sidecar.
	// checkpoint.Manager.Load reports decode failures with its own wrapped
	// errors, not with this value.
	ErrCheckpointCorrupt = errors.New("mkg: checkpoint corrupt")

	// ErrEntityNotFound names a reasoner query about an absent entity. The
	// reasoner does not return it: ReasonAboutEntity returns a "not found"
	// text marker and ShortestPath returns nil.
	ErrEntityNotFound = errors.New("mkg: entity not found")

	// ErrNoPath names the absence of a path between two entities.
	// reasoning.Reasoner.ShortestPath reports that case by returning nil.
	ErrNoPath = errors.New("mkg: no path between entities")

	// ErrInvalidConfig names an invalid configuration value. LoadConfigFile
	// reports read and decode failures with its own wrapped errors, not
	// with this value.
	ErrInvalidConfig = errors.New("mkg: invalid configuration")
)
