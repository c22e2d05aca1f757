// Package heyfastq provides a high-level API for filtering, trimming and
// subsampling FASTQ reads.
//
// Operators are lazy: each takes a Source and returns a Source, counting
// the reads that flow through it in a Counter.
//
// Example usage:
//
//	in, err := heyfastq.OpenFASTQ("reads.fastq.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer in.Close()
//
//	var c heyfastq.Counter
//	trimmed, err := heyfastq.Apply(in, heyfastq.MovingAverageTrim{Window: 4, Threshold: 20}, &c, heyfastq.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reads, err := heyfastq.Collect(trimmed)
package heyfastq

import (
	"fmt"

	"github.com/heyfastq/heyfastq-go/internal/fastq"
	"github.com/heyfastq/heyfastq-go/internal/kmer"
	"github.com/heyfastq/heyfastq-go/internal/pipeline"
	"github.com/heyfastq/heyfastq-go/internal/quality"
	"github.com/heyfastq/heyfastq-go/internal/read"
	"github.com/heyfastq/heyfastq-go/internal/stage"
	"github.com/heyfastq/heyfastq-go/internal/xio"
)

// Re-export types for convenience
type (
	Read             = read.Read
	Pair             = read.Pair
	Counter          = pipeline.Counter
	Options          = pipeline.Options
	SubsampleOptions = pipeline.SubsampleOptions
	Requirement      = pipeline.Requirement

	Transform         = stage.Transform
	Predicate         = stage.Predicate
	FixedTrim         = stage.FixedTrim
	MovingAverageTrim = stage.MovingAverageTrim
	EndTrim           = stage.EndTrim
	Chain             = stage.Chain
	LengthFilter      = stage.LengthFilter
	ComplexityFilter  = stage.ComplexityFilter
	IDFilter          = stage.IDFilter

	ValidationError = pipeline.ValidationError
	StageError      = pipeline.StageError
	WorkerError     = pipeline.WorkerError
)

// Constants
const (
	All = pipeline.All
	Any = pipeline.Any
)

// DefaultOptions returns single-threaded execution with the default chunk size.
func DefaultOptions() Options {
	return pipeline.DefaultOptions()
}

// NewRead creates a read, checking that sequence and quality have equal length.
func NewRead(desc, seq, qual string) (Read, error) {
	return read.New(desc, seq, qual)
}

// KScore scores the k-mer diversity of seq.
func KScore(seq string, k int) float64 {
	return kmer.KScore(seq, k)
}

// Kmers returns every k-length window of seq in order.
func Kmers(seq string, k int) []string {
	return kmer.Kmers(seq, k)
}

// QVals decodes the Phred+33 quality values of a read.
func QVals(r Read) []int {
	return quality.ReadQVals(r)
}

// Apply maps every read of src through t.
func Apply(src pipeline.Source[Read], t Transform, c *Counter, opts Options) (pipeline.Source[Read], error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return pipeline.Map(src, t.Apply, c, opts)
}

// Keep emits the reads of src that p accepts.
func Keep(src pipeline.Source[Read], p Predicate, c *Counter, opts Options) (pipeline.Source[Read], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return pipeline.Filter(src, p.Keep, c, opts)
}

// ApplyPaired maps every mate of every pair through t.
func ApplyPaired(src pipeline.Source[Pair], t Transform, c *Counter, opts Options) (pipeline.Source[Pair], error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return pipeline.MapPaired(src, t.Apply, c, opts)
}

// KeepPaired emits the pairs whose mates satisfy p under req.
func KeepPaired(src pipeline.Source[Pair], p Predicate, req Requirement, c *Counter, opts Options) (pipeline.Source[Pair], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return pipeline.FilterPaired(src, p.Keep, req, c, opts)
}

// Subsample emits a reproducible uniform sample of src in input order.
func Subsample[R pipeline.Record](src pipeline.Source[R], c *Counter, opts SubsampleOptions) (pipeline.Source[R], error) {
	return pipeline.Subsample(src, c, opts)
}

// Collect drains src into a slice.
func Collect[T any](src pipeline.Source[T]) ([]T, error) {
	return pipeline.Collect(src)
}

// FASTQReader streams reads from a possibly compressed FASTQ file.
type FASTQReader = fastq.Reader

// OpenFASTQ opens a plain, gzip or zstd FASTQ file, or stdin for "-".
func OpenFASTQ(path string) (*FASTQReader, error) {
	rc, err := xio.Open(path)
	if err != nil {
		return nil, err
	}
	return fastq.NewReader(rc), nil
}

// CountFASTQ returns the number of records in a FASTQ file.
func CountFASTQ(path string) (int, error) {
	r, err := OpenFASTQ(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	n, err := pipeline.Count[Read](r)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", path, err)
	}
	return n, nil
}

// Version returns the heyfastq version.
func Version() string {
	return "0.4.0"
}

// Info returns information about heyfastq.
func Info() string {
	return fmt.Sprintf(`heyfastq v%s - FASTQ filtering, trimming and subsampling

Features:
  - Fixed-length, sliding-window and end quality trimming
  - Length, k-mer complexity and read-id filters
  - Reproducible two-pass subsampling
  - Paired-end inputs with all/any mate rules
  - Order-preserving parallel execution
  - Plain, gzip and zstd FASTQ input and output
`, Version())
}
