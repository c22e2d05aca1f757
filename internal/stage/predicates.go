package stage

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/heyfastq/heyfastq-go/internal/kmer"
	"github.com/heyfastq/heyfastq-go/internal/read"
)

// LengthFilter keeps reads of at least Threshold bases, or shorter than
// Threshold when Less is set.
type LengthFilter struct {
	Threshold int
	Less      bool
}

func (f LengthFilter) Name() string { return "filter-length" }

func (f LengthFilter) Validate() error {
	if f.Threshold < 0 {
		return &ConfigError{Stage: f.Name(), Field: "length", Reason: "must not be negative"}
	}
	return nil
}

func (f LengthFilter) Keep(r read.Read) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	if f.Less {
		return r.Len() < f.Threshold, nil
	}
	return r.Len() >= f.Threshold, nil
}

// ComplexityFilter keeps reads whose kscore is at least MinScore.
type ComplexityFilter struct {
	K        int
	MinScore float64
}

func (f ComplexityFilter) Name() string { return "filter-kscore" }

func (f ComplexityFilter) Validate() error {
	if f.K < 1 {
		return &ConfigError{Stage: f.Name(), Field: "kmer size", Reason: "must be at least 1"}
	}
	if f.MinScore < 0 || f.MinScore > 1 {
		return &ConfigError{Stage: f.Name(), Field: "min kscore", Reason: "must be within [0, 1]"}
	}
	return nil
}

// Keep scores the read with a pooled scorer, so one filter value can be
// shared by concurrent workers.
func (f ComplexityFilter) Keep(r read.Read) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	return kmer.KScore(r.Seq, f.K) >= f.MinScore, nil
}

// IDFilter keeps reads whose ID is listed, or drops them when Exclude is set.
type IDFilter struct {
	IDs     map[string]struct{}
	Exclude bool
}

// NewIDFilter builds a filter from a list of read IDs.
func NewIDFilter(ids []string, exclude bool) IDFilter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return IDFilter{IDs: set, Exclude: exclude}
}

// ReadIDs reads one ID per line. Blank lines and lines starting with '#'
// are skipped, a leading '@' or '>' is dropped, and only the first
// whitespace-delimited token is used.
func ReadIDs(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		line = strings.TrimLeft(line, "@>")
		if fields := strings.Fields(line); len(fields) > 0 {
			ids = append(ids, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ids: %w", err)
	}
	return ids, nil
}

func (f IDFilter) Name() string { return "filter-ids" }

func (f IDFilter) Validate() error {
	if f.IDs == nil {
		return &ConfigError{Stage: f.Name(), Field: "ids", Reason: "must be set"}
	}
	return nil
}

func (f IDFilter) Keep(r read.Read) (bool, error) {
	_, listed := f.IDs[r.ID()]
	return listed != f.Exclude, nil
}
