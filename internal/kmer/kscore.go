package kmer

import (
	"math/bits"
	"sync"
)

// MaxBitsetSize bounds the per-k "seen" table. Larger k values (k > 11)
// are scored with the exact set-based computation instead.
const MaxBitsetSize = 1 << 22

// DefaultK is the k-mer size used when none is configured.
const DefaultK = 4

var baseBits = [256]int8{}

func init() {
	for i := range baseBits {
		baseBits[i] = -1
	}
	for b, v := range map[byte]int8{'A': 0, 'C': 1, 'G': 2, 'T': 3, 'a': 0, 'c': 1, 'g': 2, 't': 3} {
		baseBits[b] = v
	}
}

// Scorer computes kscores, reusing one seen-table per k across calls.
//
// A Scorer is not safe for concurrent use. Every table entry set during a
// call is cleared before the call returns, so results never depend on what
// was scored earlier.
type Scorer struct {
	bitsets map[int][]byte
	touched []int
}

// NewScorer creates a scorer with an empty cache.
func NewScorer() *Scorer {
	return &Scorer{bitsets: make(map[int][]byte)}
}

func (s *Scorer) bitset(k int) []byte {
	// Check the width before shifting: 1 << (2*k) overflows int for k >= 32.
	if 2*k > bits.Len(MaxBitsetSize)-1 {
		return nil
	}
	size := 1 << (2 * k)
	bs, ok := s.bitsets[k]
	if !ok || len(bs) != size {
		bs = make([]byte, size)
		s.bitsets[k] = bs
	}
	return bs
}

// Score returns the kscore of seq, in [0, 1].
//
// Sequences made only of A, C, G and T (either case) are scored with a
// rolling 2-bit encoding of the last k bases. Any other character makes
// the whole sequence fall back to exact substring counting.
func (s *Scorer) Score(seq string, k int) float64 {
	n := len(seq)
	if n == 0 {
		return 0.0
	}
	if k <= 0 {
		return exactScore(seq, k)
	}
	if n < k {
		return 0.0
	}

	bs := s.bitset(k)
	if bs == nil {
		return exactScore(seq, k)
	}

	mask := (1 << (2 * k)) - 1
	touched := s.touched[:0]
	unique := 0
	rolling := 0
	window := 0
	fallback := false

	for i := 0; i < n; i++ {
		bits := baseBits[seq[i]]
		if bits < 0 {
			fallback = true
			break
		}
		rolling = ((rolling << 2) | int(bits)) & mask
		window++
		if window >= k && bs[rolling] == 0 {
			bs[rolling] = 1
			touched = append(touched, rolling)
			unique++
		}
	}

	for _, idx := range touched {
		bs[idx] = 0
	}
	s.touched = touched[:0]

	if fallback {
		return exactScore(seq, k)
	}
	return float64(unique) / float64(n)
}

var scorers = sync.Pool{
	New: func() any { return NewScorer() },
}

// KScore scores seq with a pooled Scorer. It is safe for concurrent use:
// each call holds its scorer exclusively.
func KScore(seq string, k int) float64 {
	s := scorers.Get().(*Scorer)
	defer scorers.Put(s)
	return s.Score(seq, k)
}
