package handoff

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
)

// ValidationResult contains the results of validating a run.
type ValidationResult struct {
	Valid              bool     // true if every artifact exists and matches the manifest
	Limit              int64    // limit from manifest
	ArtifactCount      int      // number of workers in manifest
	PrimeCount         int      // sum of per-artifact prime counts
	Unpersisted        int      // workers that never wrote an artifact
	MissingArtifacts   int      // artifacts listed but not found
	SizeMismatches     int      // artifacts with wrong size
	ChecksumMismatches int      // artifacts whose content changed (only when verifying)
	Errors             []string // detailed error messages
}

// Validate checks that every artifact of a run exists with the size recorded
// in its manifest. With verifyChecksum, artifacts are also read back and
// their checksums compared.
//
// Returns an error if:
//   - The manifest doesn't exist (error wraps gcerrors.NotFound)
//   - The manifest JSON is malformed (encoding/json error)
//   - Cannot access object store to check artifact attributes
//   - The context is cancelled
//
// Missing artifacts and mismatches are NOT returned as errors. They are
// reported in the ValidationResult with Valid=false.
func Validate(ctx context.Context, bucket *blob.Bucket, runPrefix string, verifyChecksum bool) (*ValidationResult, error) {
	m, err := ReadManifest(ctx, bucket, runPrefix)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Valid:         true,
		Limit:         m.Limit,
		ArtifactCount: len(m.Artifacts),
		Errors:        make([]string, 0),
	}

	for i, entry := range m.Artifacts {
		if !entry.Persisted() {
			result.Valid = false
			result.Unpersisted++
			result.Errors = append(result.Errors,
				fmt.Sprintf("worker %d: result was never persisted", i+1))
			continue
		}
		result.PrimeCount += entry.Count

		path := runPrefix + entry.Object
		attrs, err := bucket.Attributes(ctx, path)
		if err != nil {
			if isNotExist(err) {
				result.Valid = false
				result.MissingArtifacts++
				result.Errors = append(result.Errors,
					fmt.Sprintf("worker %d: artifact missing: %s", i+1, path))
				continue
			}
			return nil, fmt.Errorf("handoff: check artifact %d: %w", i+1, err)
		}

		if attrs.Size != entry.Size {
			result.Valid = false
			result.SizeMismatches++
			result.Errors = append(result.Errors,
				fmt.Sprintf("worker %d: size mismatch: expected %d, got %d", i+1, entry.Size, attrs.Size))
			continue
		}

		if verifyChecksum && entry.Checksum != "" {
			data, err := bucket.ReadAll(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("handoff: read artifact %d: %w", i+1, err)
			}
			if actual := Checksum(data); actual != entry.Checksum {
				result.Valid = false
				result.ChecksumMismatches++
				result.Errors = append(result.Errors,
					fmt.Sprintf("worker %d: checksum mismatch: expected %s, got %s", i+1, entry.Checksum, actual))
			}
		}
	}

	return result, nil
}
