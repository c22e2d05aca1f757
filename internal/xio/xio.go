// Package xio opens FASTQ inputs and outputs, handling gzip and zstd
// compression transparently.
package xio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// Stdio is the path that selects standard input or output.
const Stdio = "-"

// ThreadsEnv overrides the number of compression threads.
const ThreadsEnv = "HEYFASTQ_COMPRESSION_THREADS"

const (
	maxThreads = 32
	blockSize  = 1 << 20
)

// Format is a stream compression format.
type Format int

const (
	Plain Format = iota
	Gzip
	Zstd
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func (f Format) String() string {
	switch f {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return "plain"
	}
}

// DetectFormat identifies the format from the leading bytes of a stream.
func DetectFormat(magic []byte) Format {
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		return Gzip
	case bytes.HasPrefix(magic, zstdMagic):
		return Zstd
	default:
		return Plain
	}
}

// FormatFromPath picks the output format from the file suffix.
func FormatFromPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	default:
		return Plain
	}
}

// CompressionThreads returns the worker count used by the gzip codec.
func CompressionThreads() int {
	n := runtime.NumCPU()
	if v := os.Getenv(ThreadsEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	if n > maxThreads {
		n = maxThreads
	}
	return n
}

// IsBrokenPipe reports whether an error is a broken pipe or closed pipe.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	w.closers = nil
	return first
}

// Open opens path for reading, or standard input for "-". Compressed input
// is detected from its magic bytes, not its name.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdio {
		return NewReader(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rc := r.(*readCloser)
	rc.closers = append(rc.closers, f.Close)
	return rc, nil
}

// NewReader wraps r with a decompressor when its content is compressed.
// Closing the result does not close r.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, blockSize)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("detecting compression: %w", err)
	}

	switch DetectFormat(magic) {
	case Gzip:
		gz, err := pgzip.NewReaderN(br, blockSize, CompressionThreads())
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return &readCloser{Reader: gz, closers: []func() error{gz.Close}}, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		return &readCloser{Reader: zr, closers: []func() error{func() error {
			zr.Close()
			return nil
		}}}, nil
	default:
		return &readCloser{Reader: br}, nil
	}
}

// Create opens path for writing, or standard output for "-". A ".gz" or
// ".zst" suffix selects compression; level 0 means the codec default.
func Create(path string, level int) (io.WriteCloser, error) {
	if path == Stdio {
		return NewWriter(os.Stdout, Plain, level)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	w, err := NewWriter(f, FormatFromPath(path), level)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	wc := w.(*writeCloser)
	wc.closers = append(wc.closers, f.Close)
	return wc, nil
}

// NewWriter wraps w with a compressor for format f. Closing the result
// flushes the compressor but does not close w.
func NewWriter(w io.Writer, f Format, level int) (io.WriteCloser, error) {
	switch f {
	case Gzip:
		if level == 0 {
			level = pgzip.DefaultCompression
		}
		gz, err := pgzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("creating gzip stream: %w", err)
		}
		if err := gz.SetConcurrency(blockSize, CompressionThreads()); err != nil {
			return nil, fmt.Errorf("creating gzip stream: %w", err)
		}
		return &writeCloser{Writer: gz, closers: []func() error{gz.Close}}, nil
	case Zstd:
		encLevel := zstd.SpeedDefault
		if level != 0 {
			encLevel = zstd.EncoderLevelFromZstd(level)
		}
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(encLevel))
		if err != nil {
			return nil, fmt.Errorf("creating zstd stream: %w", err)
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close}}, nil
	default:
		return &writeCloser{Writer: w}, nil
	}
}
