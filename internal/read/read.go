// Package read defines the sequencing read value that flows through the
// processing pipeline, and the positional pairing convention for mates.
package read

import (
	"fmt"
	"strings"
)

// ReadError is the marker interface for read model errors.
type ReadError interface {
	error
	IsReadError()
}

// LengthError is returned when a read's sequence and quality differ in length.
type LengthError struct {
	Desc    string
	SeqLen  int
	QualLen int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("read %q: sequence length %d does not match quality length %d", e.Desc, e.SeqLen, e.QualLen)
}

func (e *LengthError) IsReadError() {}

// EmptyPairError is returned when a pair has no members.
type EmptyPairError struct{}

func (e *EmptyPairError) Error() string {
	return "read pair must have at least one member"
}

func (e *EmptyPairError) IsReadError() {}

// Read is a single FASTQ record.
//
// Seq and Qual always have the same length. Reads are values: every
// transformation returns a new Read rather than editing one in place.
type Read struct {
	Desc string
	Seq  string
	Qual string
}

// New creates a read, checking the length invariant.
func New(desc, seq, qual string) (Read, error) {
	r := Read{Desc: desc, Seq: seq, Qual: qual}
	if err := r.Validate(); err != nil {
		return Read{}, err
	}
	return r, nil
}

// Validate checks that sequence and quality have the same length.
func (r Read) Validate() error {
	if len(r.Seq) != len(r.Qual) {
		return &LengthError{Desc: r.Desc, SeqLen: len(r.Seq), QualLen: len(r.Qual)}
	}
	return nil
}

// Len returns the sequence length.
func (r Read) Len() int {
	return len(r.Seq)
}

// Bases returns the number of bases counted for this read in run statistics.
func (r Read) Bases() int {
	return len(r.Seq)
}

// ID returns the first whitespace-delimited token of the description.
func (r Read) ID() string {
	if i := strings.IndexAny(r.Desc, " \t"); i >= 0 {
		return r.Desc[:i]
	}
	return r.Desc
}

// Slice returns a new read holding bases [start, end). Bounds are clamped
// to the read, and an inverted range yields an empty read.
func (r Read) Slice(start, end int) Read {
	n := len(r.Seq)
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return Read{Desc: r.Desc, Seq: r.Seq[start:end], Qual: r.Qual[start:end]}
}

// FASTQ formats the read as a four-line FASTQ record.
func (r Read) FASTQ() string {
	return "@" + r.Desc + "\n" + r.Seq + "\n+\n" + r.Qual + "\n"
}

func (r Read) String() string {
	return fmt.Sprintf("Read { desc: %q, len: %d }", r.Desc, len(r.Seq))
}
