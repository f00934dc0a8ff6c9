// Package primes provides the pure building blocks of a partitioned prime
// enumeration: a primality test and a range partitioner.
//
// # Primality
//
// [IsPrime] uses trial division by odd candidates up to the square root of n.
// It holds no state and is safe to call from any number of goroutines.
//
// # Partitioning
//
// [Partition] splits [1, limit] into exactly one contiguous [Range] per
// worker using a ceiling block size:
//
//	block = ceil(limit / workers)
//	range i = [i*block + 1, min(limit, (i+1)*block)]
//
// Trailing ranges are empty when limit is small relative to the worker count.
// The union of all ranges is exactly [1, limit] with no gaps or overlaps.
//
// [WorkerCount] turns a detected parallelism into a worker count that never
// exceeds the number of integers to check.
package primes
