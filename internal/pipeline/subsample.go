package pipeline

import (
	"math/rand"
	"sort"
)

// SubsampleOptions configures Subsample.
type SubsampleOptions struct {
	Total int   // number of elements in the source, from a prior counting pass
	N     int   // number of elements to select
	Seed  int64 // selection seed; the same seed always selects the same positions
}

// Validate checks Total and N.
func (o SubsampleOptions) Validate() error {
	if o.Total < 0 {
		return &ValidationError{Field: "total", Value: o.Total}
	}
	if o.N < 0 {
		return &ValidationError{Field: "sample size", Value: o.N}
	}
	return nil
}

// SampleIndices selects min(n, total) distinct positions from [0, total)
// uniformly at random and returns them sorted. It runs reservoir sampling
// over the positions: O(total) time, O(n) memory.
func SampleIndices(total, n int, seed int64) []int {
	k := n
	if total < k {
		k = total
	}
	if k <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	reservoir := make([]int, k)
	for i := 0; i < total; i++ {
		if i < k {
			reservoir[i] = i
			continue
		}
		if j := rng.Intn(i + 1); j < k {
			reservoir[j] = i
		}
	}
	sort.Ints(reservoir)
	return reservoir
}

// Subsample returns the elements of src at positions chosen by
// SampleIndices, in source order.
//
// Selection needs the element count up front, so callers count the
// source in a first pass and subsample a fresh copy of it. The source is
// always read to the end so the counter sees every input element. If the
// source turns out shorter than opts.Total, positions past its end are
// simply not emitted.
func Subsample[R Record](src Source[R], c *Counter, opts SubsampleOptions) (Source[R], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = &Counter{}
	}
	return &sampler[R]{
		src:     src,
		counter: c,
		indices: SampleIndices(opts.Total, opts.N, opts.Seed),
	}, nil
}

type sampler[R Record] struct {
	src     Source[R]
	counter *Counter
	indices []int
	pos     int
	next    int
	err     error
}

func (s *sampler[R]) Next() (R, error) {
	var zero R
	for s.err == nil {
		r, err := s.src.Next()
		if err != nil {
			s.err = err
			break
		}
		i := s.pos
		s.pos++
		s.counter.input(r.Bases())
		if s.next < len(s.indices) && s.indices[s.next] == i {
			s.next++
			s.counter.output(r.Bases())
			return r, nil
		}
	}
	return zero, s.err
}

func (s *sampler[R]) Close() error {
	return Close(s.src)
}
