package handoff

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
)

// Delete removes every artifact of a run and its manifest.
// Without a manifest, Delete falls back to removing all artifacts found
// under runPrefix, which covers runs whose manifest was never written.
//
// Returns an error if:
//   - Neither a manifest nor any artifact exists (error wraps gcerrors.NotFound)
//   - An object cannot be deleted (permission denied, network error)
//   - The context is cancelled
func Delete(ctx context.Context, bucket *blob.Bucket, runPrefix string) error {
	m, err := ReadManifest(ctx, bucket, runPrefix)
	if err != nil {
		if isNotExist(err) {
			return deleteListed(ctx, bucket, runPrefix, err)
		}
		return err
	}

	for i, entry := range m.Artifacts {
		if !entry.Persisted() {
			continue
		}
		path := runPrefix + entry.Object
		if err := bucket.Delete(ctx, path); err != nil && !isNotExist(err) {
			return fmt.Errorf("handoff: delete artifact %d: %w", i+1, err)
		}
	}

	if err := bucket.Delete(ctx, ManifestPath(runPrefix)); err != nil {
		return fmt.Errorf("handoff: delete manifest: %w", err)
	}

	return nil
}

// deleteListed removes artifacts under runPrefix by listing the bucket.
// notFound is returned when there is nothing to delete.
func deleteListed(ctx context.Context, bucket *blob.Bucket, runPrefix string, notFound error) error {
	iter := bucket.List(&blob.ListOptions{Prefix: runPrefix + artifactPrefix})

	deleted := 0
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("handoff: list artifacts: %w", err)
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, artifactSuffix) {
			continue
		}
		if err := bucket.Delete(ctx, obj.Key); err != nil && !isNotExist(err) {
			return fmt.Errorf("handoff: delete artifact %s: %w", obj.Key, err)
		}
		deleted++
	}

	if deleted == 0 {
		return fmt.Errorf("handoff: nothing to delete under %s: %w", runPrefix, notFound)
	}
	return nil
}
