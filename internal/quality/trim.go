package quality

import "github.com/heyfastq/heyfastq-go/internal/read"

// TrimFixed keeps bases [start, length) of the read.
func TrimFixed(r read.Read, length, start int) read.Read {
	return r.Slice(start, length)
}

// TrimMovingAverage cuts the read at the first window of k bases whose
// mean quality drops below threshold.
//
// Windows start at every position 0..len-k. Inside the first failing
// window the read is kept up to and including the last base that on its
// own reaches threshold; if no base does, the cut is at the window start.
// A read with no failing window is returned unchanged.
func TrimMovingAverage(r read.Read, k, threshold int) read.Read {
	n := len(r.Qual)
	if k <= 0 || n < k {
		return r
	}

	q := QVals(r.Qual)
	limit := threshold * k

	sum := 0
	for i := 0; i < k; i++ {
		sum += q[i]
	}

	for start := 0; start+k <= n; start++ {
		if start > 0 {
			sum += q[start+k-1] - q[start-1]
		}
		if sum >= limit {
			continue
		}

		cut := start
		for i := start + k - 1; i >= start; i-- {
			if q[i] >= threshold {
				cut = i + 1
				break
			}
		}
		return r.Slice(0, cut)
	}
	return r
}

// TrimEnds removes leading bases with quality below startThreshold and
// trailing bases with quality below endThreshold.
func TrimEnds(r read.Read, startThreshold, endThreshold int) read.Read {
	n := len(r.Qual)

	trimStart := 0
	for trimStart < n && int(r.Qual[trimStart])-PhredOffset < startThreshold {
		trimStart++
	}

	trimEnd := 0
	for trimEnd < n-trimStart && int(r.Qual[n-1-trimEnd])-PhredOffset < endThreshold {
		trimEnd++
	}

	if trimStart == 0 && trimEnd == 0 {
		return r
	}
	return r.Slice(trimStart, n-trimEnd)
}
