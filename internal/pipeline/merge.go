package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/ligustah/primes/pkg/handoff"
)

// MergeResult is the output of the merge stage.
type MergeResult struct {
	// Primes is ascending and free of duplicates.
	Primes []int64

	// Sources records, per worker id, where its primes were loaded from.
	Sources []handoff.SourceKind

	// Duplicates is the number of values dropped by deduplication.
	// Disjoint partitions never produce any.
	Duplicates int
}

// Fallbacks returns the number of workers whose artifact could not be used.
func (m *MergeResult) Fallbacks() int {
	n := 0
	for _, s := range m.Sources {
		if s == handoff.SourceMemory {
			n++
		}
	}
	return n
}

// Merge loads every handoff in id order, concatenates the results, sorts
// them and drops duplicates. It fails only when a handoff has no usable
// source at all.
func Merge(ctx context.Context, handoffs []handoff.Handoff, logger *zap.Logger) (*MergeResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ordered := slices.Clone(handoffs)
	slices.SortStableFunc(ordered, func(a, b handoff.Handoff) int {
		return cmp.Compare(a.ID, b.ID)
	})

	result := &MergeResult{
		Sources: make([]handoff.SourceKind, len(ordered)),
	}

	var all []int64
	for i, h := range ordered {
		loaded, err := h.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("pipeline: merge: %w", err)
		}
		if loaded.DurableErr != nil {
			logger.Warn("artifact unavailable, using in-memory result",
				zap.Int("worker", h.ID+1),
				zap.Error(loaded.DurableErr),
			)
		}
		result.Sources[i] = loaded.Kind
		all = append(all, loaded.Primes...)
	}

	slices.Sort(all)
	before := len(all)
	all = slices.Compact(all)
	result.Duplicates = before - len(all)
	if result.Duplicates > 0 {
		logger.Warn("dropped duplicate values during merge",
			zap.Int("duplicates", result.Duplicates),
		)
	}

	result.Primes = all
	return result, nil
}
