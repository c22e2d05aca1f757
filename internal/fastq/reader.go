// Package fastq decodes and encodes four-line FASTQ records. It is the read
// source and read sink the pipeline is plugged between.
package fastq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/heyfastq/heyfastq-go/internal/read"
)

// maxLine allows long-read records on a single line.
const maxLine = 64 * 1024 * 1024

// ErrUnpaired is returned when paired inputs hold different numbers of records.
var ErrUnpaired = errors.New("paired inputs have different numbers of records")

// ParseError reports a malformed record.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader streams reads from FASTQ text.
type Reader struct {
	sc     *bufio.Scanner
	line   int
	closer io.Closer
	err    error
}

// NewReader creates a reader over r. If r is an io.Closer, Close closes it.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	fr := &Reader{sc: sc}
	if c, ok := r.(io.Closer); ok {
		fr.closer = c
	}
	return fr
}

func (r *Reader) scan() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	r.line++
	return strings.TrimRight(r.sc.Text(), " \t\r"), true
}

// Next returns the next read, or io.EOF after the last record.
func (r *Reader) Next() (read.Read, error) {
	if r.err != nil {
		return read.Read{}, r.err
	}
	rec, err := r.next()
	if err != nil {
		r.err = err
	}
	return rec, err
}

func (r *Reader) next() (read.Read, error) {
	header, ok := r.scan()
	for ok && header == "" {
		header, ok = r.scan()
	}
	if !ok {
		if err := r.sc.Err(); err != nil {
			return read.Read{}, fmt.Errorf("reading fastq: %w", err)
		}
		return read.Read{}, io.EOF
	}
	start := r.line
	if header[0] != '@' {
		return read.Read{}, &ParseError{Line: start, Msg: "expected header starting with @"}
	}

	seq, ok := r.scan()
	if !ok {
		return read.Read{}, r.truncated(start)
	}
	plus, ok := r.scan()
	if !ok {
		return read.Read{}, r.truncated(start)
	}
	if len(plus) == 0 || plus[0] != '+' {
		return read.Read{}, &ParseError{Line: r.line, Msg: "expected '+' line"}
	}
	qual, ok := r.scan()
	if !ok {
		return read.Read{}, r.truncated(start)
	}

	rec, err := read.New(header[1:], seq, qual)
	if err != nil {
		return read.Read{}, &ParseError{Line: start, Msg: "invalid record", Err: err}
	}
	return rec, nil
}

func (r *Reader) truncated(start int) error {
	if err := r.sc.Err(); err != nil {
		return fmt.Errorf("reading fastq: %w", err)
	}
	return &ParseError{Line: start, Msg: "truncated record"}
}

// Close closes the underlying reader when it is closable.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// PairedReader reads mates from several inputs in lock-step.
type PairedReader struct {
	readers []*Reader
	err     error
}

// NewPairedReader zips readers; mate i of every pair comes from readers[i].
func NewPairedReader(readers ...*Reader) *PairedReader {
	return &PairedReader{readers: readers}
}

// Next returns the next pair. It fails with ErrUnpaired when one input
// runs out before the others.
func (p *PairedReader) Next() (read.Pair, error) {
	if p.err != nil {
		return nil, p.err
	}
	pair := make(read.Pair, len(p.readers))
	eof := 0
	for i, r := range p.readers {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			eof++
			continue
		}
		if err != nil {
			p.err = fmt.Errorf("input %d: %w", i+1, err)
			return nil, p.err
		}
		pair[i] = rec
	}
	switch {
	case eof == len(p.readers):
		p.err = io.EOF
		return nil, io.EOF
	case eof > 0:
		p.err = ErrUnpaired
		return nil, ErrUnpaired
	}
	return pair, nil
}

// Close closes every input, returning the first error.
func (p *PairedReader) Close() error {
	var first error
	for _, r := range p.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
