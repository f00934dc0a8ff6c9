package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gocloud.dev/blob"

	"github.com/ligustah/primes/pkg/primes"
)

// Manifest describes a completed run.
type Manifest struct {
	Limit       int64             `json:"limit"`
	Workers     int               `json:"workers"`
	RunPrefix   string            `json:"run_prefix"`
	Artifacts   []ArtifactEntry   `json:"artifacts"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// ArtifactEntry describes one worker's artifact in the manifest.
// The worker id is implicit from the array position. Object is empty when
// the worker could not persist its result.
type ArtifactEntry struct {
	Range primes.Range `json:"range"`
	ArtifactInfo
}

// Persisted reports whether the worker's artifact was written.
func (e ArtifactEntry) Persisted() bool {
	return e.Object != ""
}

// ManifestPath returns the manifest object path for a run.
func ManifestPath(runPrefix string) string {
	return runPrefix + manifestName
}

// WriteManifest persists m under m.RunPrefix. CompletedAt is set when zero.
func WriteManifest(ctx context.Context, bucket *blob.Bucket, m *Manifest) error {
	if bucket == nil {
		return ErrNoBucket
	}
	if m.CompletedAt.IsZero() {
		m.CompletedAt = time.Now()
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("handoff: marshal manifest: %w", err)
	}
	if err := bucket.WriteAll(ctx, ManifestPath(m.RunPrefix), data, nil); err != nil {
		return fmt.Errorf("handoff: write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest of a run.
func ReadManifest(ctx context.Context, bucket *blob.Bucket, runPrefix string) (*Manifest, error) {
	data, err := bucket.ReadAll(ctx, ManifestPath(runPrefix))
	if err != nil {
		return nil, fmt.Errorf("handoff: read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("handoff: unmarshal manifest: %w", err)
	}
	return &m, nil
}

// OpenRun loads the manifest of a finished run and returns one Handoff per
// worker backed only by its artifact. Workers whose result was never
// persisted get a Handoff with no source, which fails to load.
func OpenRun(ctx context.Context, bucket *blob.Bucket, runPrefix string, verify bool) (*Manifest, []Handoff, error) {
	m, err := ReadManifest(ctx, bucket, runPrefix)
	if err != nil {
		return nil, nil, err
	}

	handoffs := make([]Handoff, len(m.Artifacts))
	for i, entry := range m.Artifacts {
		handoffs[i] = Handoff{ID: i}
		if entry.Persisted() {
			handoffs[i].Durable = NewArtifactSource(bucket, runPrefix, entry.Range, entry.ArtifactInfo, verify)
		}
	}
	return m, handoffs, nil
}
