package primes

// IsPrime reports whether n is prime.
func IsPrime(n int64) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	// d <= n/d is d*d <= n without overflow near MaxInt64.
	for d := int64(3); d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// InRange returns the primes in r in ascending order.
func InRange(r Range) []int64 {
	if r.Empty() {
		return nil
	}
	var out []int64
	for n := r.Start; ; n++ {
		if IsPrime(n) {
			out = append(out, n)
		}
		if n == r.End {
			break
		}
	}
	return out
}
