package primes

import "fmt"

// DefaultWorkers is used when the host reports no available parallelism.
const DefaultWorkers = 2

// Range is an inclusive interval of integers. A Range with Start > End is
// empty.
type Range struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Empty reports whether the range holds no integers.
func (r Range) Empty() bool {
	return r.Start > r.End
}

// Len returns the number of integers in the range.
func (r Range) Len() int64 {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int64) bool {
	return !r.Empty() && n >= r.Start && n <= r.End
}

func (r Range) String() string {
	if r.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// WorkerCount derives the number of workers for limit from the detected
// hardware parallelism. A detected value of zero or less falls back to
// DefaultWorkers. The result is at least 1, at most max(1, limit), and
// exactly 1 when limit < 2.
func WorkerCount(limit int64, detected int) int {
	if limit < 2 {
		return 1
	}
	n := detected
	if n <= 0 {
		n = DefaultWorkers
	}
	if int64(n) > limit {
		n = int(limit)
	}
	return n
}

// Partition splits [1, limit] into exactly workers contiguous ranges.
// A workers value below 1 is treated as 1. When limit < 1 every range is
// empty.
func Partition(limit int64, workers int) []Range {
	if workers < 1 {
		workers = 1
	}
	ranges := make([]Range, workers)
	if limit < 1 {
		for i := range ranges {
			ranges[i] = Range{Start: 1, End: 0}
		}
		return ranges
	}

	w := int64(workers)
	block := limit / w
	if limit%w != 0 {
		block++
	}

	used := limit / block
	if limit%block != 0 {
		used++
	}

	for i := range ranges {
		idx := int64(i)
		if idx >= used {
			ranges[i] = Range{Start: 1, End: 0}
			continue
		}
		lo := idx * block
		end := limit
		if limit-lo > block {
			end = lo + block
		}
		ranges[i] = Range{Start: lo + 1, End: end}
	}
	return ranges
}
