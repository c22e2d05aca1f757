package fastq

import (
	"bufio"
	"fmt"
	"io"

	"github.com/heyfastq/heyfastq-go/internal/read"
)

// Writer encodes reads as FASTQ text.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
}

// NewWriter creates a buffered writer over w. If w is an io.Closer,
// Close flushes and then closes it.
func NewWriter(w io.Writer) *Writer {
	fw := &Writer{w: bufio.NewWriterSize(w, 256*1024)}
	if c, ok := w.(io.Closer); ok {
		fw.closer = c
	}
	return fw
}

// Write appends one record: "@desc\nseq\n+\nqual\n".
func (w *Writer) Write(r read.Read) error {
	w.w.WriteByte('@')
	w.w.WriteString(r.Desc)
	w.w.WriteByte('\n')
	w.w.WriteString(r.Seq)
	w.w.WriteString("\n+\n")
	w.w.WriteString(r.Qual)
	return w.w.WriteByte('\n')
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and closes the underlying writer when it is closable.
func (w *Writer) Close() error {
	err := w.w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

// PairedWriter writes mate i of every pair to writers[i].
type PairedWriter struct {
	writers []*Writer
}

// NewPairedWriter creates a writer for pairs with len(writers) mates.
func NewPairedWriter(writers ...*Writer) *PairedWriter {
	return &PairedWriter{writers: writers}
}

// Write writes every mate of p to its output.
func (p *PairedWriter) Write(pair read.Pair) error {
	if len(pair) != len(p.writers) {
		return fmt.Errorf("pair has %d mates, expected %d", len(pair), len(p.writers))
	}
	for i, r := range pair {
		if err := p.writers[i].Write(r); err != nil {
			return fmt.Errorf("output %d: %w", i+1, err)
		}
	}
	return nil
}

// Flush flushes every output.
func (p *PairedWriter) Flush() error {
	for i, w := range p.writers {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("output %d: %w", i+1, err)
		}
	}
	return nil
}

// Close closes every output, returning the first error.
func (p *PairedWriter) Close() error {
	var first error
	for i, w := range p.writers {
		if err := w.Close(); err != nil && first == nil {
			first = fmt.Errorf("output %d: %w", i+1, err)
		}
	}
	return first
}
