package pipeline

import (
	"errors"
	"io"
)

// Defaults for Options.
const (
	DefaultThreads   = 1
	DefaultChunkSize = 1000
)

// Options controls how a stage executes.
type Options struct {
	Threads   int // worker goroutines (>= 1); 1 runs inline without a pool
	ChunkSize int // elements per work unit when Threads > 1 (>= 1)
}

// DefaultOptions returns single-threaded options with the default chunk size.
func DefaultOptions() Options {
	return Options{Threads: DefaultThreads, ChunkSize: DefaultChunkSize}
}

// Validate checks Threads and ChunkSize.
func (o Options) Validate() error {
	if o.Threads < 1 {
		return &ValidationError{Field: "threads", Value: o.Threads}
	}
	if o.ChunkSize < 1 {
		return &ValidationError{Field: "chunk size", Value: o.ChunkSize}
	}
	return nil
}

// step processes one element: the element to emit, whether to emit it,
// and any failure.
type step[R any] func(R) (R, bool, error)

// Filter returns a Source of the elements of src for which keep holds, in
// source order. Every pulled element is counted as input; kept elements
// are counted as output. A failing predicate ends the stream with a
// *StageError.
func Filter[R Record](src Source[R], keep func(R) (bool, error), c *Counter, opts Options) (Source[R], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newStage(src, func(r R) (R, bool, error) {
		ok, err := keep(r)
		return r, ok, err
	}, c, opts), nil
}

// Map returns a Source of fn applied to every element of src. Output bases
// are counted on the transformed element, so shrinking transforms show up
// in the counter.
func Map[R Record](src Source[R], fn func(R) (R, error), c *Counter, opts Options) (Source[R], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newStage(src, func(r R) (R, bool, error) {
		out, err := fn(r)
		return out, err == nil, err
	}, c, opts), nil
}

func newStage[R Record](src Source[R], fn step[R], c *Counter, opts Options) Source[R] {
	if c == nil {
		c = &Counter{}
	}
	if opts.Threads == 1 {
		return &serial[R]{src: src, step: fn, counter: c}
	}
	return &parallel[R]{
		src:       src,
		step:      fn,
		counter:   c,
		threads:   opts.Threads,
		chunkSize: opts.ChunkSize,
	}
}

// serial runs a step inline on the consumer's goroutine.
type serial[R Record] struct {
	src     Source[R]
	step    step[R]
	counter *Counter
	index   int
	err     error
}

func (s *serial[R]) Next() (R, error) {
	var zero R
	for s.err == nil {
		r, err := s.src.Next()
		if err != nil {
			s.err = err
			break
		}
		idx := s.index
		s.index++

		s.counter.input(r.Bases())
		out, keep, err := s.step(r)
		if err != nil {
			s.err = &StageError{Index: idx, Err: err}
			break
		}
		if !keep {
			continue
		}
		s.counter.output(out.Bases())
		return out, nil
	}
	return zero, s.err
}

func (s *serial[R]) Close() error {
	if s.err == nil {
		s.err = io.EOF
	}
	return Close(s.src)
}

// isEOF reports whether err marks normal exhaustion.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
