package pipeline

import (
	"context"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/ligustah/primes/pkg/handoff"
	"github.com/ligustah/primes/pkg/primes"
)

var primesTo50 = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}

func openBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

// sieve returns the primes up to limit.
func sieve(limit int64) []int64 {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, limit+1)
	var out []int64
	for n := int64(2); n <= limit; n++ {
		if composite[n] {
			continue
		}
		out = append(out, n)
		for m := n * n; m <= limit; m += n {
			composite[m] = true
		}
	}
	return out
}

func TestComputeScenario(t *testing.T) {
	ctx := context.Background()
	bucket := openBucket(t)

	result, err := Compute(ctx, 50, Options{
		Workers:        4,
		Bucket:         bucket,
		RunPrefix:      "primes/run/",
		VerifyChecksum: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Workers())
	assert.Equal(t, []primes.Range{
		{Start: 1, End: 13},
		{Start: 14, End: 26},
		{Start: 27, End: 39},
		{Start: 40, End: 50},
	}, result.Ranges)
	if diff := cmp.Diff(primesTo50, result.Primes); diff != "" {
		t.Errorf("primes mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, result.NoPrimes())
	assert.Zero(t, result.Duplicates)
	assert.Zero(t, result.Fallbacks())
	for i, s := range result.Sources {
		assert.Equal(t, handoff.SourceArtifact, s, "worker %d", i+1)
	}

	data, err := bucket.ReadAll(ctx, "primes/run/primes_thread_4.txt")
	require.NoError(t, err)
	assert.Equal(t, "41 43 47\n", string(data))
}

func TestComputeMatchesSieve(t *testing.T) {
	ctx := context.Background()

	for _, limit := range []int64{0, 1, 2, 3, 10, 97, 100, 1000, 7919} {
		for _, workers := range []int{1, 2, 3, 8, 17} {
			result, err := Compute(ctx, limit, Options{
				Workers:   workers,
				Bucket:    openBucket(t),
				RunPrefix: "run/",
			})
			require.NoError(t, err)
			if diff := cmp.Diff(sieve(limit), result.Primes, cmpEmpty); diff != "" {
				t.Fatalf("limit=%d workers=%d (-want +got):\n%s", limit, workers, diff)
			}
		}
	}
}

// cmpEmpty treats nil and empty slices as equal.
var cmpEmpty = cmp.Comparer(func(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
})

func TestComputeNoPrimes(t *testing.T) {
	ctx := context.Background()

	for _, limit := range []int64{0, 1} {
		result, err := Compute(ctx, limit, Options{Workers: 8, Bucket: openBucket(t)})
		require.NoError(t, err)
		assert.True(t, result.NoPrimes(), "limit %d", limit)
		assert.Equal(t, 1, result.Workers(), "limit < 2 runs a single worker")
		assert.Empty(t, result.Primes)
	}
}

func TestComputeTwo(t *testing.T) {
	result, err := Compute(context.Background(), 2, Options{Workers: 8, Bucket: openBucket(t)})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, result.Primes)
	assert.Equal(t, 2, result.Workers())
}

func TestComputeNegativeLimit(t *testing.T) {
	_, err := Compute(context.Background(), -1, Options{})
	require.ErrorIs(t, err, ErrNegativeLimit)
}

func TestComputeIdempotent(t *testing.T) {
	ctx := context.Background()
	bucket := openBucket(t)

	first, err := Compute(ctx, 5000, Options{Workers: 6, Bucket: bucket, RunPrefix: "a/"})
	require.NoError(t, err)
	second, err := Compute(ctx, 5000, Options{Workers: 6, Bucket: bucket, RunPrefix: "b/"})
	require.NoError(t, err)

	if diff := cmp.Diff(first.Primes, second.Primes); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestComputeDetectsWorkers(t *testing.T) {
	result, err := Compute(context.Background(), 1000, Options{Bucket: openBucket(t)})
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), result.Detected)
	assert.Equal(t, primes.WorkerCount(1000, result.Detected), result.Workers())
}

func TestComputeDetectedIsUncapped(t *testing.T) {
	result, err := Compute(context.Background(), 1, Options{Bucket: openBucket(t)})
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), result.Detected)
	assert.Equal(t, 1, result.Workers())

	result, err = Compute(context.Background(), 3, Options{Workers: 8, Bucket: openBucket(t)})
	require.NoError(t, err)
	assert.Equal(t, 8, result.Detected)
	assert.Equal(t, 3, result.Workers())
}

func TestComputeWithoutBucket(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	result, err := Compute(context.Background(), 50, Options{
		Workers: 4,
		Logger:  zap.New(core),
	})
	require.NoError(t, err)

	assert.Equal(t, primesTo50, result.Primes)
	assert.Equal(t, 4, result.Fallbacks())
	for _, p := range result.Partials {
		assert.False(t, p.Persisted())
		assert.ErrorIs(t, p.WriteErr, handoff.ErrNoBucket)
	}
	assert.Equal(t, 4, logs.FilterMessage("failed to persist worker result, keeping in-memory copy").Len())
}

func TestComputeClosedBucket(t *testing.T) {
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	require.NoError(t, bucket.Close())

	result, err := Compute(context.Background(), 50, Options{
		Workers:       4,
		Bucket:        bucket,
		WriteManifest: true,
	})
	require.NoError(t, err)
	assert.Equal(t, primesTo50, result.Primes)
	assert.Equal(t, 4, result.Fallbacks())
	assert.Nil(t, result.Manifest)
}

func TestComputeWritesManifest(t *testing.T) {
	ctx := context.Background()
	bucket := openBucket(t)

	result, err := Compute(ctx, 50, Options{
		Workers:        4,
		Bucket:         bucket,
		RunPrefix:      "primes/run/",
		VerifyChecksum: true,
		WriteManifest:  true,
		Metadata:       map[string]string{"run_id": "run"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Manifest)

	m, err := handoff.ReadManifest(ctx, bucket, "primes/run/")
	require.NoError(t, err)
	assert.Equal(t, int64(50), m.Limit)
	assert.Equal(t, 4, m.Workers)
	assert.Equal(t, "run", m.Metadata["run_id"])
	assert.Equal(t, "true", m.Metadata["verify_checksum"])
	for i, entry := range m.Artifacts {
		assert.Equal(t, result.Ranges[i], entry.Range)
		assert.Equal(t, result.Partials[i].Artifact, entry.ArtifactInfo)
	}

	// A persisted run merges to the same sequence from artifacts alone.
	_, handoffs, err := handoff.OpenRun(ctx, bucket, "primes/run/", true)
	require.NoError(t, err)
	merged, err := Merge(ctx, handoffs, nil)
	require.NoError(t, err)
	assert.Equal(t, result.Primes, merged.Primes)

	validation, err := handoff.Validate(ctx, bucket, "primes/run/", true)
	require.NoError(t, err)
	assert.True(t, validation.Valid, validation.Errors)
	assert.Equal(t, len(primesTo50), validation.PrimeCount)
}
