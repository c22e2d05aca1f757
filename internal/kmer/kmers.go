// Package kmer provides k-mer windowing and the k-mer complexity score
// (kscore) used to flag low-complexity reads.
//
// A kscore is the number of distinct k-mers in a sequence divided by the
// sequence length. Repetitive reads such as poly-A tails score low.
package kmer

// Kmers returns every overlapping window of width k across seq, in order.
// There are len(seq)-k+1 windows; none when seq is shorter than k. For
// k <= 0 every window is the empty string, so a negative k yields a single
// distinct (empty) k-mer rather than treating k as an offset from the end.
func Kmers(seq string, k int) []string {
	n := len(seq) - k + 1
	if n <= 0 {
		return nil
	}
	kmers := make([]string, n)
	if k <= 0 {
		return kmers
	}
	for i := 0; i < n; i++ {
		kmers[i] = seq[i : i+k]
	}
	return kmers
}

// DistinctCount returns the number of distinct k-mers in seq.
func DistinctCount(seq string, k int) int {
	kmers := Kmers(seq, k)
	seen := make(map[string]struct{}, len(kmers))
	for _, km := range kmers {
		seen[km] = struct{}{}
	}
	return len(seen)
}

// exactScore is the reference computation: distinct substrings over length.
func exactScore(seq string, k int) float64 {
	if len(seq) == 0 {
		return 0.0
	}
	return float64(DistinctCount(seq, k)) / float64(len(seq))
}
