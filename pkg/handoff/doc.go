// Package handoff moves per-worker partial results from the workers that
// produce them to the stage that merges them.
//
// Each worker owns exactly one artifact in object storage. Storage is
// abstracted via gocloud.dev/blob, so the same code runs against a local
// directory (fileblob), memory (memblob), S3 or GCS.
//
// # Artifacts
//
// [WriteArtifact] serializes a worker's primes as ascending, space-separated
// decimal integers followed by a newline. An empty result is a single
// newline. The artifact name is derived from the worker id alone, see
// [ArtifactName], so names never collide between workers of one run.
//
// # Sources
//
// A [Handoff] pairs a durable [Source] (the artifact) with an in-memory
// fallback (the worker's own result). [Handoff.Load] tries the durable
// source first and switches to the fallback on any error: missing object,
// unreadable object, checksum mismatch or malformed content.
//
// # Storage Layout
//
//	{bucket}/{prefix}{run}/primes_thread_1.txt
//	{bucket}/{prefix}{run}/primes_thread_2.txt
//	...
//	{bucket}/{prefix}{run}/manifest.json
//
// # Manifest Format
//
//	{
//	  "limit": 50,
//	  "workers": 4,
//	  "run_prefix": "primes/5c1e.../",
//	  "artifacts": [
//	    {"range": {"start": 1, "end": 13}, "object": "primes_thread_1.txt", "size": 15, "count": 6, "checksum": "..."},
//	    ...
//	  ],
//	  "completed_at": "2025-01-15T10:30:00Z"
//	}
//
// A finished run can be checked with [Validate], merged again from its
// artifacts alone with [OpenRun], and removed with [Delete].
package handoff
