// Package stats summarizes a pipeline run: the counter totals of a stage
// and a streaming summary of the reads it emitted.
package stats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/heyfastq/heyfastq-go/internal/pipeline"
	"github.com/heyfastq/heyfastq-go/internal/quality"
	"github.com/heyfastq/heyfastq-go/internal/read"
)

// ReadSetStats represents statistics for a collection of reads.
type ReadSetStats struct {
	Count            int     `json:"count"`
	TotalBases       int64   `json:"total_bases"`
	MinLength        int     `json:"min_length"`
	MaxLength        int     `json:"max_length"`
	MeanLength       float64 `json:"mean_length"`
	MeanQuality      float64 `json:"mean_quality"`
	HighQualityCount int     `json:"high_quality_count"`
}

// HighQualityRatio returns proportion of reads with mean quality >= Q30.
func (s *ReadSetStats) HighQualityRatio() float64 {
	if s.Count == 0 {
		return 0.0
	}
	return float64(s.HighQualityCount) / float64(s.Count)
}

func (s *ReadSetStats) String() string {
	return fmt.Sprintf(`ReadSetStats {
  count: %d
  total_bases: %d
  length range: %d - %d
  mean length: %.1f
  mean quality: %.1f
  high quality reads: %d (%.1f%%)
}`, s.Count, s.TotalBases, s.MinLength, s.MaxLength,
		s.MeanLength, s.MeanQuality, s.HighQualityCount, s.HighQualityRatio()*100)
}

// Collector accumulates ReadSetStats one read at a time. It is not safe
// for concurrent use.
type Collector struct {
	count      int
	totalBases int64
	minLen     int
	maxLen     int
	qualSum    float64
	highCount  int
}

// Observe adds r to the summary.
func (c *Collector) Observe(r read.Read) {
	n := r.Len()
	if c.count == 0 || n < c.minLen {
		c.minLen = n
	}
	if n > c.maxLen {
		c.maxLen = n
	}
	c.count++
	c.totalBases += int64(n)

	if n == 0 {
		return
	}
	sum := 0
	for _, q := range quality.ReadQVals(r) {
		sum += q
	}
	avg := float64(sum) / float64(n)
	c.qualSum += avg
	if avg >= float64(quality.QHigh) {
		c.highCount++
	}
}

// ObservePair adds every mate of p.
func (c *Collector) ObservePair(p read.Pair) {
	for _, r := range p {
		c.Observe(r)
	}
}

// Stats returns the summary of everything observed so far.
func (c *Collector) Stats() *ReadSetStats {
	s := &ReadSetStats{
		Count:            c.count,
		TotalBases:       c.totalBases,
		MinLength:        c.minLen,
		MaxLength:        c.maxLen,
		HighQualityCount: c.highCount,
	}
	if c.count > 0 {
		s.MeanLength = float64(c.totalBases) / float64(c.count)
		s.MeanQuality = c.qualSum / float64(c.count)
	}
	return s
}

// Report is the run summary written by --stats.
type Report struct {
	Command       string        `json:"command"`
	InputReads    int64         `json:"input_reads"`
	InputBases    int64         `json:"input_bases"`
	OutputReads   int64         `json:"output_reads"`
	OutputBases   int64         `json:"output_bases"`
	ReadsRetained float64       `json:"reads_retained"`
	BasesRetained float64       `json:"bases_retained"`
	Output        *ReadSetStats `json:"output,omitempty"`
}

// NewReport builds a report from a stage counter.
func NewReport(command string, c pipeline.Counter) *Report {
	return &Report{
		Command:       command,
		InputReads:    c.InputReads,
		InputBases:    c.InputBases,
		OutputReads:   c.OutputReads,
		OutputBases:   c.OutputBases,
		ReadsRetained: ratio(c.OutputReads, c.InputReads),
		BasesRetained: ratio(c.OutputBases, c.InputBases),
	}
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0.0
	}
	return float64(num) / float64(den)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteSummary writes a short human-readable summary. Colors are
// disabled automatically when w is not a terminal.
func (r *Report) WriteSummary(w io.Writer) {
	label := color.New(color.Bold).SprintFunc()
	good := color.New(color.FgGreen).SprintfFunc()
	warn := color.New(color.FgYellow).SprintfFunc()

	pct := func(v float64) string {
		if v < 0.5 {
			return warn("%.1f%%", v*100)
		}
		return good("%.1f%%", v*100)
	}

	fmt.Fprintf(w, "%s %s\n", label("heyfastq"), r.Command)
	fmt.Fprintf(w, "  reads: %d -> %d (%s)\n", r.InputReads, r.OutputReads, pct(r.ReadsRetained))
	fmt.Fprintf(w, "  bases: %d -> %d (%s)\n", r.InputBases, r.OutputBases, pct(r.BasesRetained))
	if r.Output != nil && r.Output.Count > 0 {
		fmt.Fprintf(w, "  output length: %d - %d (mean %.1f), mean quality %.1f\n",
			r.Output.MinLength, r.Output.MaxLength, r.Output.MeanLength, r.Output.MeanQuality)
	}
}
