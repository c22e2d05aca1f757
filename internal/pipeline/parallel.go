package pipeline

import (
	"fmt"
	"io"
	"sync"
)

type chunkResult[R any] struct {
	items   []R
	counter Counter
	err     error
}

type job[R any] struct {
	index int // chunk number
	first int // input index of items[0]
	items []R
	out   chan chunkResult[R]
}

// parallel runs a step over contiguous chunks on a worker pool.
//
// A dispatcher goroutine reads chunks from src. For every chunk it queues
// a result channel on pending before handing the chunk to the workers, so
// the consumer receives results in submission order whichever worker
// finishes first. pending is bounded, which caps the read-ahead.
type parallel[R Record] struct {
	src       Source[R]
	step      step[R]
	counter   *Counter
	threads   int
	chunkSize int

	startOnce sync.Once
	stopOnce  sync.Once
	pending   chan chan chunkResult[R]
	jobs      chan job[R]
	stop      chan struct{}
	wg        sync.WaitGroup

	buf []R
	err error
}

func (p *parallel[R]) start() {
	p.pending = make(chan chan chunkResult[R], p.threads)
	p.jobs = make(chan job[R])
	p.stop = make(chan struct{})

	p.wg.Add(p.threads + 1)
	for w := 0; w < p.threads; w++ {
		go p.work()
	}
	go p.dispatch()
}

func (p *parallel[R]) dispatch() {
	defer p.wg.Done()
	defer close(p.pending)
	defer close(p.jobs)

	first := 0
	for chunk := 0; ; chunk++ {
		items := make([]R, 0, p.chunkSize)
		var srcErr error
		for len(items) < p.chunkSize {
			r, err := p.src.Next()
			if err != nil {
				srcErr = err
				break
			}
			items = append(items, r)
		}

		if len(items) > 0 {
			out := make(chan chunkResult[R], 1)
			select {
			case p.pending <- out:
			case <-p.stop:
				return
			}
			select {
			case p.jobs <- job[R]{index: chunk, first: first, items: items, out: out}:
			case <-p.stop:
				return
			}
			first += len(items)
		}

		if srcErr != nil {
			if !isEOF(srcErr) {
				out := make(chan chunkResult[R], 1)
				out <- chunkResult[R]{err: srcErr}
				select {
				case p.pending <- out:
				case <-p.stop:
				}
			}
			return
		}
	}
}

func (p *parallel[R]) work() {
	defer p.wg.Done()
	for j := range p.jobs {
		j.out <- p.runChunk(j)
	}
}

// runChunk processes one chunk with a local counter. A failure or panic
// fails the whole chunk; its counter is discarded.
func (p *parallel[R]) runChunk(j job[R]) (res chunkResult[R]) {
	defer func() {
		if v := recover(); v != nil {
			res = chunkResult[R]{err: &WorkerError{Chunk: j.index, Err: fmt.Errorf("panic: %v", v)}}
		}
	}()

	items := make([]R, 0, len(j.items))
	var local Counter
	for i, r := range j.items {
		local.input(r.Bases())
		out, keep, err := p.step(r)
		if err != nil {
			return chunkResult[R]{err: &WorkerError{
				Chunk: j.index,
				Err:   &StageError{Index: j.first + i, Err: err},
			}}
		}
		if keep {
			local.output(out.Bases())
			items = append(items, out)
		}
	}
	return chunkResult[R]{items: items, counter: local}
}

func (p *parallel[R]) Next() (R, error) {
	var zero R
	p.startOnce.Do(p.start)

	for len(p.buf) == 0 {
		if p.err != nil {
			return zero, p.err
		}
		out, ok := <-p.pending
		if !ok {
			p.fail(io.EOF)
			continue
		}
		res := <-out
		if res.err != nil {
			p.fail(res.err)
			continue
		}
		p.counter.Add(res.counter)
		p.buf = res.items
	}

	r := p.buf[0]
	p.buf[0] = zero
	p.buf = p.buf[1:]
	return r, nil
}

// fail records err and waits for the dispatcher and workers to finish
// their in-flight chunks.
func (p *parallel[R]) fail(err error) {
	p.err = err
	p.shutdown()
}

func (p *parallel[R]) shutdown() {
	p.stopOnce.Do(func() {
		if p.stop != nil {
			close(p.stop)
			p.wg.Wait()
		}
	})
}

// Close stops the pool, waits for in-flight chunks and closes the source.
func (p *parallel[R]) Close() error {
	p.startOnce.Do(func() {})
	if p.err == nil {
		p.err = io.EOF
	}
	p.buf = nil
	p.shutdown()
	return Close(p.src)
}
