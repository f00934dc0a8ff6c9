package primes

import (
	"math"
	"testing"
)

// checkCover verifies that ranges cover exactly [1, limit] in order.
func checkCover(t *testing.T, limit int64, ranges []Range) {
	t.Helper()
	next := int64(1)
	for i, r := range ranges {
		if r.Empty() {
			continue
		}
		if r.Start != next {
			t.Fatalf("limit=%d workers=%d: range %d %v starts at %d, want %d",
				limit, len(ranges), i, r, r.Start, next)
		}
		if r.End < r.Start || r.End > limit {
			t.Fatalf("limit=%d workers=%d: range %d %v out of bounds", limit, len(ranges), i, r)
		}
		next = r.End + 1
	}
	if limit >= 1 && next != limit+1 {
		t.Fatalf("limit=%d workers=%d: ranges end at %d, want %d", limit, len(ranges), next-1, limit)
	}
	if limit < 1 && next != 1 {
		t.Fatalf("limit=%d: expected only empty ranges, got %v", limit, ranges)
	}
}

func TestPartitionCoversRange(t *testing.T) {
	for limit := int64(0); limit <= 200; limit++ {
		for workers := 1; workers <= 40; workers++ {
			ranges := Partition(limit, workers)
			if len(ranges) != workers {
				t.Fatalf("Partition(%d, %d) returned %d ranges", limit, workers, len(ranges))
			}
			checkCover(t, limit, ranges)
		}
	}
}

func TestPartitionScenario(t *testing.T) {
	got := Partition(50, 4)
	want := []Range{{1, 13}, {14, 26}, {27, 39}, {40, 50}}
	if len(got) != len(want) {
		t.Fatalf("Partition(50, 4) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPartitionTrailingEmpty(t *testing.T) {
	got := Partition(5, 4)
	if got[0] != (Range{1, 2}) || got[1] != (Range{3, 4}) || got[2] != (Range{5, 5}) {
		t.Fatalf("unexpected leading ranges: %v", got)
	}
	if !got[3].Empty() {
		t.Fatalf("expected range 3 to be empty, got %v", got[3])
	}
}

func TestPartitionClampsWorkers(t *testing.T) {
	got := Partition(10, 0)
	if len(got) != 1 || got[0] != (Range{1, 10}) {
		t.Fatalf("Partition(10, 0) = %v", got)
	}
}

func TestPartitionLargeLimit(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 7, 64} {
		ranges := Partition(math.MaxInt64, workers)
		checkCover(t, math.MaxInt64, ranges)
	}
}

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		limit    int64
		detected int
		want     int
	}{
		{0, 8, 1},
		{1, 8, 1},
		{2, 8, 2},
		{3, 8, 3},
		{50, 8, 8},
		{50, 0, DefaultWorkers},
		{50, -1, DefaultWorkers},
		{1000, 1, 1},
	}

	for _, tt := range tests {
		if got := WorkerCount(tt.limit, tt.detected); got != tt.want {
			t.Errorf("WorkerCount(%d, %d) = %d, want %d", tt.limit, tt.detected, got, tt.want)
		}
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: 3, End: 7}
	if r.Len() != 5 {
		t.Errorf("Len() = %d, want 5", r.Len())
	}
	if !r.Contains(3) || !r.Contains(7) || r.Contains(8) {
		t.Errorf("Contains mismatch for %v", r)
	}
	empty := Range{Start: 1, End: 0}
	if !empty.Empty() || empty.Len() != 0 || empty.Contains(1) {
		t.Errorf("expected %v to be empty", empty)
	}
	if empty.String() != "[]" || r.String() != "[3, 7]" {
		t.Errorf("String() = %q, %q", empty.String(), r.String())
	}
}
