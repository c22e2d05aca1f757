// Package quality provides Phred quality handling and the quality-trimming
// state machines applied to sequencing reads.
//
// Phred quality scores are logarithmically related to base-calling error probabilities:
//
//	Q = -10 * log10(P_error)
//
// Qualities are stored Phred+33 encoded: each character c carries Q = c - 33.
package quality

import (
	"fmt"
	"sort"

	"github.com/heyfastq/heyfastq-go/internal/read"
)

// PhredOffset is the ASCII offset of Phred+33 encoding (Illumina 1.8+).
const PhredOffset = 33

// Quality thresholds
const (
	QLow    = 10 // 90% accuracy
	QMedium = 20 // 99% accuracy
	QHigh   = 30 // 99.9% accuracy
)

// QualityError is the marker interface for quality errors.
type QualityError interface {
	error
	IsQualityError()
}

// EmptyScoresError is returned when quality scores are empty.
type EmptyScoresError struct{}

func (e *EmptyScoresError) Error() string {
	return "quality scores cannot be empty"
}
func (e *EmptyScoresError) IsQualityError() {}

// InvalidEncodingError is returned when a quality character is below the Phred+33 range.
type InvalidEncodingError struct {
	Position int
	Char     byte
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid encoding character %q at position %d", e.Char, e.Position)
}
func (e *InvalidEncodingError) IsQualityError() {}

// QVals decodes a Phred+33 quality string into per-base quality values.
// No range checking is done; trimming works on whatever the read carries.
func QVals(qual string) []int {
	vals := make([]int, len(qual))
	for i := 0; i < len(qual); i++ {
		vals[i] = int(qual[i]) - PhredOffset
	}
	return vals
}

// ReadQVals returns the quality values of a read.
func ReadQVals(r read.Read) []int {
	return QVals(r.Qual)
}

// Scores holds validated quality values for a read.
type Scores struct {
	Values []int
}

// FromPhred33 parses a Phred+33 quality string, rejecting characters below '!'.
func FromPhred33(encoded string) (*Scores, error) {
	if len(encoded) == 0 {
		return nil, &EmptyScoresError{}
	}
	for i := 0; i < len(encoded); i++ {
		if encoded[i] < PhredOffset {
			return nil, &InvalidEncodingError{Position: i, Char: encoded[i]}
		}
	}
	return &Scores{Values: QVals(encoded)}, nil
}

// Len returns the number of quality scores.
func (s *Scores) Len() int {
	return len(s.Values)
}

// Average calculates the average quality score.
func (s *Scores) Average() float64 {
	sum := 0
	for _, score := range s.Values {
		sum += score
	}
	return float64(sum) / float64(len(s.Values))
}

// Median calculates the median quality score.
func (s *Scores) Median() int {
	sorted := make([]int, len(s.Values))
	copy(sorted, s.Values)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Min returns the minimum quality score.
func (s *Scores) Min() int {
	min := s.Values[0]
	for _, score := range s.Values[1:] {
		if score < min {
			min = score
		}
	}
	return min
}

// Max returns the maximum quality score.
func (s *Scores) Max() int {
	max := s.Values[0]
	for _, score := range s.Values[1:] {
		if score > max {
			max = score
		}
	}
	return max
}

// CountAtOrAbove counts scores at or above a threshold.
func (s *Scores) CountAtOrAbove(threshold int) int {
	count := 0
	for _, score := range s.Values {
		if score >= threshold {
			count++
		}
	}
	return count
}

// Statistics calculates quality statistics.
func (s *Scores) Statistics() *Stats {
	return &Stats{
		Count:            len(s.Values),
		MinScore:         s.Min(),
		MaxScore:         s.Max(),
		Mean:             s.Average(),
		Median:           s.Median(),
		HighQualityRatio: float64(s.CountAtOrAbove(QHigh)) / float64(len(s.Values)),
	}
}

// Stats represents quality statistics summary.
type Stats struct {
	Count            int
	MinScore         int
	MaxScore         int
	Mean             float64
	Median           int
	HighQualityRatio float64
}

func (s *Stats) String() string {
	return fmt.Sprintf("QualityStats { count: %d, min: %d, max: %d, mean: %.2f, median: %d, high_quality_ratio: %.2f%% }",
		s.Count, s.MinScore, s.MaxScore, s.Mean, s.Median, s.HighQualityRatio*100)
}
