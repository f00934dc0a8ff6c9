// Package pipeline runs the partition-compute-merge pipeline that
// enumerates the primes in [1, limit].
//
// This package coordinates between the partitioner in pkg/primes and the
// handoff artifacts in pkg/handoff. It starts one worker per partition and
// merges their results once all of them have finished.
//
// # Usage
//
// The main entry point is the Compute function:
//
//	result, err := pipeline.Compute(ctx, limit, pipeline.Options{
//	    Workers:   runtime.NumCPU(),
//	    Bucket:    bucket,
//	    RunPrefix: handoff.RunPrefix("primes/", runID),
//	    Logger:    logger,
//	})
//
// # Workers
//
// Each worker scans its own range, persists its primes as an artifact and
// keeps them in memory. A failed write is logged as a warning and never
// fails the run.
//
// # Merge
//
// Merge runs strictly after every worker has returned. It reads each
// worker's artifact in id order, falls back to the in-memory result when
// the artifact is unavailable, then sorts and removes duplicates.
package pipeline
