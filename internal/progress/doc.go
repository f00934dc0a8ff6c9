// Package progress provides progress reporting for prime enumeration runs.
//
// This package outputs human-readable progress information, including
// completion percentage, scan speed, and ETA.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Limit:      limit,
//	    Partitions: workers,
//	    Output:     os.Stderr,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as partitions complete
//	reporter.PartitionCompleted(scanned, found)
//
// # Output Format
//
//	[primes] Scanning: [1, 10000000] | Partitions: 8 | Workers: 8
//	[primes] Progress: 62.5% | 6.25M / 10.00M | Speed: 3.10M/s | ETA: 1s
//	[primes] Partitions: 5 completed | 3 in-progress | 0 pending | 0 unpersisted
package progress
