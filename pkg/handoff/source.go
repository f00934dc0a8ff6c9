package handoff

import (
	"context"
	"fmt"

	"gocloud.dev/blob"

	"github.com/ligustah/primes/pkg/primes"
)

// SourceKind identifies where a worker's primes were loaded from.
type SourceKind string

const (
	// SourceNone means no source could be loaded.
	SourceNone SourceKind = ""
	// SourceArtifact means the primes were read back from object storage.
	SourceArtifact SourceKind = "artifact"
	// SourceMemory means the primes came from the worker's in-memory result.
	SourceMemory SourceKind = "memory"
)

// Source yields one worker's partial result.
type Source interface {
	Load(ctx context.Context) ([]int64, error)
	Kind() SourceKind
}

// ArtifactSource reads a partial result from an artifact in a bucket.
// Content that differs in size from what was written, or is not a strictly
// ascending list of primes within Range, is rejected even when checksum
// verification is off.
type ArtifactSource struct {
	Bucket *blob.Bucket
	Path   string

	// Range is the partition the worker owned.
	Range primes.Range

	// Size is the number of bytes written. Zero skips the size check.
	Size int64

	// Checksum is the expected SHA256 of the artifact. Verification is
	// skipped when it is empty or Verify is false.
	Checksum string
	Verify   bool
}

// NewArtifactSource returns a source for an artifact written by
// WriteArtifact.
func NewArtifactSource(bucket *blob.Bucket, runPrefix string, r primes.Range, info ArtifactInfo, verify bool) *ArtifactSource {
	return &ArtifactSource{
		Bucket:   bucket,
		Path:     runPrefix + info.Object,
		Range:    r,
		Size:     info.Size,
		Checksum: info.Checksum,
		Verify:   verify,
	}
}

// Load reads and decodes the artifact.
func (s *ArtifactSource) Load(ctx context.Context) ([]int64, error) {
	if s.Bucket == nil {
		return nil, ErrNoBucket
	}
	data, err := s.Bucket.ReadAll(ctx, s.Path)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("handoff: artifact %s missing: %w", s.Path, err)
		}
		return nil, fmt.Errorf("handoff: read artifact %s: %w", s.Path, err)
	}

	if s.Verify && s.Checksum != "" {
		if actual := Checksum(data); actual != s.Checksum {
			return nil, fmt.Errorf("%w for %s: expected %s, got %s", ErrChecksumMismatch, s.Path, s.Checksum, actual)
		}
	}

	values, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	if s.Size > 0 && int64(len(data)) != s.Size {
		return nil, fmt.Errorf("%w: %s: size %d, written %d", ErrInconsistent, s.Path, len(data), s.Size)
	}
	if err := checkValues(values, s.Range); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInconsistent, s.Path, err)
	}
	return values, nil
}

// checkValues verifies that values are strictly ascending primes inside r.
func checkValues(values []int64, r primes.Range) error {
	for i, v := range values {
		if !r.Contains(v) {
			return fmt.Errorf("value %d outside %s", v, r)
		}
		if i > 0 && v <= values[i-1] {
			return fmt.Errorf("value %d follows %d", v, values[i-1])
		}
		if !primes.IsPrime(v) {
			return fmt.Errorf("value %d is not prime", v)
		}
	}
	return nil
}

// Kind returns SourceArtifact.
func (s *ArtifactSource) Kind() SourceKind {
	return SourceArtifact
}

// MemorySource serves a partial result held in memory. It never fails.
type MemorySource []int64

// Load returns the held primes.
func (m MemorySource) Load(context.Context) ([]int64, error) {
	return []int64(m), nil
}

// Kind returns SourceMemory.
func (m MemorySource) Kind() SourceKind {
	return SourceMemory
}

// Handoff is one worker's partial result as seen by the merge stage.
type Handoff struct {
	ID       int
	Durable  Source
	Fallback Source
}

// Loaded is the outcome of Handoff.Load.
type Loaded struct {
	Primes []int64
	Kind   SourceKind

	// DurableErr is set when the durable source failed and the fallback was
	// used instead.
	DurableErr error
}

// Load reads the durable source and falls back to the in-memory source on
// any error. It fails only when no source yields a result.
func (h Handoff) Load(ctx context.Context) (Loaded, error) {
	var durableErr error
	if h.Durable != nil {
		values, err := h.Durable.Load(ctx)
		if err == nil {
			return Loaded{Primes: values, Kind: h.Durable.Kind()}, nil
		}
		durableErr = err
	}

	if h.Fallback != nil {
		values, err := h.Fallback.Load(ctx)
		if err == nil {
			return Loaded{Primes: values, Kind: h.Fallback.Kind(), DurableErr: durableErr}, nil
		}
		return Loaded{}, fmt.Errorf("handoff: worker %d: fallback: %w", h.ID+1, err)
	}

	if durableErr != nil {
		return Loaded{}, fmt.Errorf("handoff: worker %d: %w", h.ID+1, durableErr)
	}
	return Loaded{}, fmt.Errorf("handoff: worker %d: no source", h.ID+1)
}
