package handoff

import (
	"context"
	"testing"

	"gocloud.dev/blob"

	"github.com/ligustah/primes/pkg/primes"
)

// writeRun persists a small run: worker i holds primes of its range.
func writeRun(t *testing.T, bucket *blob.Bucket, runPrefix string, limit int64, workers int) *Manifest {
	t.Helper()
	ctx := context.Background()

	m := &Manifest{
		Limit:     limit,
		Workers:   workers,
		RunPrefix: runPrefix,
		Metadata:  map[string]string{"run_id": "test"},
	}
	for i, r := range primes.Partition(limit, workers) {
		info, err := WriteArtifact(ctx, bucket, runPrefix, i, primes.InRange(r))
		if err != nil {
			t.Fatalf("WriteArtifact(%d): %v", i, err)
		}
		m.Artifacts = append(m.Artifacts, ArtifactEntry{Range: r, ArtifactInfo: info})
	}
	if err := WriteManifest(ctx, bucket, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	return m
}

func TestManifestRoundTrip(t *testing.T) {
	ctx := context.Background()
	bucket := openMemBucket(t)

	written := writeRun(t, bucket, "primes/run/", 50, 4)

	m, err := ReadManifest(ctx, bucket, "primes/run/")
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}

	if m.Limit != 50 || m.Workers != 4 || len(m.Artifacts) != 4 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set")
	}
	if m.Metadata["run_id"] != "test" {
		t.Errorf("metadata = %v", m.Metadata)
	}
	for i := range m.Artifacts {
		if m.Artifacts[i] != written.Artifacts[i] {
			t.Errorf("artifact %d = %+v, want %+v", i, m.Artifacts[i], written.Artifacts[i])
		}
	}
	if m.Artifacts[3].Range != (primes.Range{Start: 40, End: 50}) {
		t.Errorf("range 3 = %v", m.Artifacts[3].Range)
	}
}

func TestOpenRun(t *testing.T) {
	ctx := context.Background()
	bucket := openMemBucket(t)

	writeRun(t, bucket, "primes/run/", 50, 4)

	m, handoffs, err := OpenRun(ctx, bucket, "primes/run/", true)
	if err != nil {
		t.Fatalf("OpenRun: %v", err)
	}
	if len(handoffs) != m.Workers {
		t.Fatalf("got %d handoffs, want %d", len(handoffs), m.Workers)
	}

	var all []int64
	for _, h := range handoffs {
		if h.Fallback != nil {
			t.Errorf("handoff %d has a fallback", h.ID)
		}
		loaded, err := h.Load(ctx)
		if err != nil {
			t.Fatalf("Load(%d): %v", h.ID, err)
		}
		if loaded.Kind != SourceArtifact {
			t.Errorf("handoff %d kind = %q", h.ID, loaded.Kind)
		}
		all = append(all, loaded.Primes...)
	}

	want := []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}
	if !equalInts(all, want) {
		t.Errorf("primes = %v, want %v", all, want)
	}
}

func TestOpenRunUnpersisted(t *testing.T) {
	ctx := context.Background()
	bucket := openMemBucket(t)

	m := &Manifest{
		Limit:     10,
		Workers:   1,
		RunPrefix: "run/",
		Artifacts: []ArtifactEntry{{Range: primes.Range{Start: 1, End: 10}}},
	}
	if err := WriteManifest(ctx, bucket, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	_, handoffs, err := OpenRun(ctx, bucket, "run/", true)
	if err != nil {
		t.Fatalf("OpenRun: %v", err)
	}
	if _, err := handoffs[0].Load(ctx); err == nil {
		t.Fatal("expected load of unpersisted worker to fail")
	}
}

func TestReadManifestMissing(t *testing.T) {
	if _, err := ReadManifest(context.Background(), openMemBucket(t), "nope/"); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
