package pipeline

import (
	"context"
	"errors"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"

	"github.com/ligustah/primes/internal/progress"
	"github.com/ligustah/primes/pkg/handoff"
	"github.com/ligustah/primes/pkg/primes"
)

// ErrNegativeLimit is returned by Compute for a limit below zero.
var ErrNegativeLimit = errors.New("pipeline: limit must not be negative")

// Options configures a pipeline run.
type Options struct {
	// Workers overrides the detected hardware parallelism. Zero means
	// runtime.NumCPU(). The effective count is capped by primes.WorkerCount.
	Workers int

	// Bucket receives the per-worker artifacts. A nil bucket makes every
	// write fail, so the merge runs entirely on in-memory results.
	Bucket *blob.Bucket

	// RunPrefix namespaces the artifacts of this run, see handoff.RunPrefix.
	RunPrefix string

	// VerifyChecksum makes the merge stage reject artifacts whose content
	// no longer matches what the worker wrote.
	VerifyChecksum bool

	// WriteManifest persists a handoff.Manifest after all workers finish.
	WriteManifest bool

	// Metadata is stored in the manifest.
	Metadata map[string]string

	// Logger receives diagnostics. Default: zap.NewNop().
	Logger *zap.Logger

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result is the outcome of Compute.
type Result struct {
	MergeResult

	Limit int64

	// Detected is the parallelism the worker count was derived from:
	// Options.Workers when set, runtime.NumCPU() otherwise.
	Detected int

	Ranges   []primes.Range
	Partials []Partial

	// Manifest is set when Options.WriteManifest was requested and the
	// manifest was written.
	Manifest *handoff.Manifest
}

// Workers returns the number of workers used.
func (r *Result) Workers() int {
	return len(r.Ranges)
}

// NoPrimes reports whether the run found nothing to list.
func (r *Result) NoPrimes() bool {
	return r.Limit < 2 || len(r.Primes) == 0
}

// Compute enumerates the primes in [1, limit]. Workers run in parallel,
// one per partition, and the merge stage starts only after all of them
// have returned.
func Compute(ctx context.Context, limit int64, opts Options) (*Result, error) {
	if limit < 0 {
		return nil, ErrNegativeLimit
	}
	logger := opts.logger()

	detected := opts.Workers
	if detected <= 0 {
		detected = runtime.NumCPU()
	}
	workers := primes.WorkerCount(limit, detected)
	ranges := primes.Partition(limit, workers)

	logger.Info("partitioned range",
		zap.Int64("limit", limit),
		zap.Int("detected", detected),
		zap.Int("workers", workers),
		zap.String("first_artifact", opts.RunPrefix+handoff.ArtifactName(0)),
		zap.String("last_artifact", opts.RunPrefix+handoff.ArtifactName(workers-1)),
	)

	partials := make([]Partial, len(ranges))
	var g errgroup.Group
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			partials[i] = RunWorker(ctx, i, r, opts)
			return nil
		})
	}
	// Workers absorb their own errors; Wait is the barrier before merging.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Limit:    limit,
		Detected: detected,
		Ranges:   ranges,
		Partials: partials,
	}

	if opts.WriteManifest {
		m := buildManifest(limit, partials, opts)
		if err := handoff.WriteManifest(ctx, opts.Bucket, m); err != nil {
			logger.Warn("failed to write run manifest", zap.Error(err))
		} else {
			result.Manifest = m
		}
	}

	logger.Info("merging results", zap.Int("workers", len(partials)))

	handoffs := make([]handoff.Handoff, len(partials))
	for i := range partials {
		handoffs[i] = partials[i].Handoff(opts)
	}
	merged, err := Merge(ctx, handoffs, logger)
	if err != nil {
		return nil, err
	}
	result.MergeResult = *merged

	logger.Info("run complete",
		zap.Int("primes", len(result.Primes)),
		zap.Int("fallbacks", result.Fallbacks()),
	)
	return result, nil
}

func buildManifest(limit int64, partials []Partial, opts Options) *handoff.Manifest {
	m := &handoff.Manifest{
		Limit:     limit,
		Workers:   len(partials),
		RunPrefix: opts.RunPrefix,
		Artifacts: make([]handoff.ArtifactEntry, len(partials)),
		Metadata:  map[string]string{},
	}
	for k, v := range opts.Metadata {
		m.Metadata[k] = v
	}
	m.Metadata["verify_checksum"] = strconv.FormatBool(opts.VerifyChecksum)

	for i, p := range partials {
		m.Artifacts[i] = handoff.ArtifactEntry{Range: p.Range}
		if p.Persisted() {
			m.Artifacts[i].ArtifactInfo = p.Artifact
		}
	}
	return m
}
