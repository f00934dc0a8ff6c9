package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Limit is the upper bound of the scanned range [1, Limit].
	Limit int64

	// Partitions is the total number of partitions.
	Partitions int

	// Workers is the number of parallel workers.
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress information.
type Reporter struct {
	opts Options

	mu                  sync.Mutex
	scanned             atomic.Int64
	found               atomic.Int64
	completedPartitions atomic.Int32
	inProgress          atomic.Int32
	unpersisted         atomic.Int32
	startTime           time.Time
	lastUpdate          time.Time
	lastScanned         int64
	stopCh              chan struct{}
	doneCh              chan struct{}
	started             bool
	stopped             bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.startTime = time.Now()
	r.lastUpdate = r.startTime

	fmt.Fprintf(r.opts.Output, "[primes] Scanning: [1, %d] | Partitions: %d | Workers: %d\n",
		r.opts.Limit,
		r.opts.Partitions,
		r.opts.Workers,
	)

	go r.updateLoop()
}

// Stop stops the reporter and prints the final status. It blocks until the
// final status has been written.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped || !r.started {
		r.stopped = true
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// PartitionStarted marks a partition as in progress.
func (r *Reporter) PartitionStarted() {
	r.inProgress.Add(1)
}

// PartitionCompleted marks a partition as done after scanning scanned
// integers and finding found primes.
func (r *Reporter) PartitionCompleted(scanned int64, found int) {
	r.scanned.Add(scanned)
	r.found.Add(int64(found))
	r.completedPartitions.Add(1)
	r.inProgress.Add(-1)
}

// ArtifactFailed records a partition whose result could not be persisted.
func (r *Reporter) ArtifactFailed() {
	r.unpersisted.Add(1)
}

// Found returns the number of primes found so far.
func (r *Reporter) Found() int64 {
	return r.found.Load()
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	now := time.Now()
	scanned := r.scanned.Load()
	completed := int(r.completedPartitions.Load())
	inProgress := int(r.inProgress.Load())

	// Calculate speed
	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(scanned-r.lastScanned) / elapsed

	r.lastUpdate = now
	r.lastScanned = scanned

	// Calculate percentage and ETA
	var percent float64
	eta := "calculating..."
	if r.opts.Limit > 0 {
		percent = float64(scanned) / float64(r.opts.Limit) * 100
		if speed > 0 {
			remaining := float64(r.opts.Limit - scanned)
			eta = formatDuration(time.Duration(remaining / speed * float64(time.Second)))
		}
	}

	pending := r.opts.Partitions - completed - inProgress
	if pending < 0 {
		pending = 0
	}

	fmt.Fprintf(r.opts.Output, "\r[primes] Progress: %.1f%% | %s / %s | Speed: %s/s | ETA: %s    ",
		percent,
		FormatCount(scanned),
		FormatCount(r.opts.Limit),
		FormatCount(int64(speed)),
		eta,
	)
	fmt.Fprintf(r.opts.Output, "\n[primes] Partitions: %d completed | %d in-progress | %d pending | %d unpersisted    \033[A",
		completed,
		inProgress,
		pending,
		r.unpersisted.Load(),
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	scanned := r.scanned.Load()
	duration := time.Since(r.startTime)
	avgSpeed := float64(scanned) / max(duration.Seconds(), 1e-9)

	fmt.Fprintf(r.opts.Output, "\r[primes] Progress: 100.0%% | %s / %s | Primes found: %d | Complete!    \n",
		FormatCount(scanned),
		FormatCount(r.opts.Limit),
		r.found.Load(),
	)
	fmt.Fprintf(r.opts.Output, "[primes] Partitions: %d completed | 0 in-progress | 0 pending | %d unpersisted    \n",
		r.completedPartitions.Load(),
		r.unpersisted.Load(),
	)
	fmt.Fprintf(r.opts.Output, "[primes] Total time: %s | Average speed: %s/s\n",
		formatDuration(duration),
		FormatCount(int64(avgSpeed)),
	)
}

// FormatCount formats a count with decimal K/M/G/T suffixes.
func FormatCount(n int64) string {
	const (
		K = 1000
		M = K * 1000
		G = M * 1000
		T = G * 1000
	)

	switch {
	case n >= T:
		return fmt.Sprintf("%.2fT", float64(n)/float64(T))
	case n >= G:
		return fmt.Sprintf("%.2fG", float64(n)/float64(G))
	case n >= M:
		return fmt.Sprintf("%.2fM", float64(n)/float64(M))
	case n >= K:
		return fmt.Sprintf("%.2fK", float64(n)/float64(K))
	default:
		return fmt.Sprintf("%d", n)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
