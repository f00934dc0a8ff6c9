package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ligustah/primes/pkg/handoff"
	"github.com/ligustah/primes/pkg/primes"
)

// Partial is the outcome of a single worker.
type Partial struct {
	ID     int
	Range  primes.Range
	Primes []int64

	// Artifact describes the persisted result. It is zero when WriteErr is
	// set.
	Artifact handoff.ArtifactInfo
	WriteErr error
}

// Persisted reports whether the worker's artifact was written.
func (p *Partial) Persisted() bool {
	return p.WriteErr == nil && p.Artifact.Object != ""
}

// Handoff returns the merge-side view of the partial: its artifact, if one
// was written, backed by the in-memory primes.
func (p *Partial) Handoff(opts Options) handoff.Handoff {
	h := handoff.Handoff{
		ID:       p.ID,
		Fallback: handoff.MemorySource(p.Primes),
	}
	if p.Persisted() {
		h.Durable = handoff.NewArtifactSource(opts.Bucket, opts.RunPrefix, p.Range, p.Artifact, opts.VerifyChecksum)
	}
	return h
}

// RunWorker scans r, collecting its primes in ascending order, and writes
// them to the artifact of worker id. It never fails: write errors are
// logged and recorded in the returned Partial.
func RunWorker(ctx context.Context, id int, r primes.Range, opts Options) Partial {
	logger := opts.logger()
	if opts.Progress != nil {
		opts.Progress.PartitionStarted()
	}

	p := Partial{
		ID:     id,
		Range:  r,
		Primes: primes.InRange(r),
	}

	if opts.Progress != nil {
		opts.Progress.PartitionCompleted(r.Len(), len(p.Primes))
	}

	info, err := handoff.WriteArtifact(ctx, opts.Bucket, opts.RunPrefix, id, p.Primes)
	if err != nil {
		logger.Warn("failed to persist worker result, keeping in-memory copy",
			zap.Int("worker", id+1),
			zap.String("object", opts.RunPrefix+handoff.ArtifactName(id)),
			zap.Error(err),
		)
		if opts.Progress != nil {
			opts.Progress.ArtifactFailed()
		}
		p.WriteErr = err
		return p
	}
	p.Artifact = info

	logger.Debug("worker finished",
		zap.Int("worker", id+1),
		zap.Stringer("range", r),
		zap.Int("primes", len(p.Primes)),
		zap.String("object", opts.RunPrefix+info.Object),
	)
	return p
}
