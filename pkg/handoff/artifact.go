package handoff

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ErrMalformed is returned when artifact content is not a list of integers.
var ErrMalformed = errors.New("handoff: malformed artifact")

// ErrChecksumMismatch is returned when artifact content does not match the
// checksum recorded when it was written.
var ErrChecksumMismatch = errors.New("handoff: checksum mismatch")

// ErrInconsistent is returned when artifact content cannot be the result of
// the worker that wrote it.
var ErrInconsistent = errors.New("handoff: inconsistent artifact")

// ErrNoBucket is returned when an artifact is written without a bucket.
var ErrNoBucket = errors.New("handoff: no bucket")

const (
	artifactPrefix = "primes_thread_"
	artifactSuffix = ".txt"
	manifestName   = "manifest.json"
)

// ArtifactInfo describes an artifact after it has been written.
type ArtifactInfo struct {
	Object   string `json:"object"`
	Size     int64  `json:"size"`
	Count    int    `json:"count"`
	Checksum string `json:"checksum,omitempty"`
}

// ArtifactName returns the object name for the 0-based worker id.
// Names are 1-based: worker 0 writes primes_thread_1.txt.
func ArtifactName(id int) string {
	return fmt.Sprintf("%s%d%s", artifactPrefix, id+1, artifactSuffix)
}

// RunPrefix returns the object prefix under which a run stores its artifacts
// and manifest. The result always ends in a slash.
func RunPrefix(prefix, runID string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	p := prefix + runID
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// Encode serializes primes as space-separated decimal integers with a
// trailing newline.
func Encode(primes []int64) []byte {
	buf := make([]byte, 0, len(primes)*8+1)
	for i, p := range primes {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, p, 10)
	}
	return append(buf, '\n')
}

// Decode parses whitespace-separated decimal integers. Empty and
// whitespace-only content decodes to an empty result.
func Decode(data []byte) ([]int64, error) {
	fields := bytes.Fields(data)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]int64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(string(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q", ErrMalformed, i, f)
		}
		out = append(out, v)
	}
	return out, nil
}

// Checksum returns the hex-encoded SHA256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteArtifact writes the primes of worker id under runPrefix. On failure
// any partial object is removed on a best effort basis.
func WriteArtifact(ctx context.Context, bucket *blob.Bucket, runPrefix string, id int, primes []int64) (ArtifactInfo, error) {
	if bucket == nil {
		return ArtifactInfo{}, ErrNoBucket
	}

	name := ArtifactName(id)
	path := runPrefix + name
	data := Encode(primes)

	// Cancelling the writer context before Close aborts the write.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := bucket.NewWriter(wctx, path, &blob.WriterOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return ArtifactInfo{}, fmt.Errorf("handoff: create artifact writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		cancel()
		w.Close()
		bucket.Delete(context.Background(), path) // Best effort, ignore errors
		return ArtifactInfo{}, fmt.Errorf("handoff: write artifact %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		return ArtifactInfo{}, fmt.Errorf("handoff: close artifact %s: %w", path, err)
	}

	return ArtifactInfo{
		Object:   name,
		Size:     int64(len(data)),
		Count:    len(primes),
		Checksum: Checksum(data),
	}, nil
}

// isNotExist returns true if the error indicates the object doesn't exist.
func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
