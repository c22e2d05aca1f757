package stage

import (
	"github.com/heyfastq/heyfastq-go/internal/quality"
	"github.com/heyfastq/heyfastq-go/internal/read"
)

// FixedTrim keeps bases [Start, Length).
type FixedTrim struct {
	Length int
	Start  int
}

func (t FixedTrim) Name() string { return "trim-fixed" }

func (t FixedTrim) Validate() error {
	if t.Length < 0 {
		return &ConfigError{Stage: t.Name(), Field: "length", Reason: "must not be negative"}
	}
	if t.Start < 0 {
		return &ConfigError{Stage: t.Name(), Field: "start", Reason: "must not be negative"}
	}
	return nil
}

func (t FixedTrim) Apply(r read.Read) (read.Read, error) {
	if err := r.Validate(); err != nil {
		return read.Read{}, err
	}
	return quality.TrimFixed(r, t.Length, t.Start), nil
}

// MovingAverageTrim cuts reads at the first window whose mean quality is
// below Threshold.
type MovingAverageTrim struct {
	Window    int
	Threshold int
}

func (t MovingAverageTrim) Name() string { return "trim-qual" }

func (t MovingAverageTrim) Validate() error {
	if t.Window < 1 {
		return &ConfigError{Stage: t.Name(), Field: "window", Reason: "must be at least 1"}
	}
	return nil
}

func (t MovingAverageTrim) Apply(r read.Read) (read.Read, error) {
	if err := r.Validate(); err != nil {
		return read.Read{}, err
	}
	return quality.TrimMovingAverage(r, t.Window, t.Threshold), nil
}

// EndTrim removes low-quality bases from both ends.
type EndTrim struct {
	StartThreshold int
	EndThreshold   int
}

func (t EndTrim) Name() string { return "trim-ends" }

func (t EndTrim) Validate() error { return nil }

func (t EndTrim) Apply(r read.Read) (read.Read, error) {
	if err := r.Validate(); err != nil {
		return read.Read{}, err
	}
	return quality.TrimEnds(r, t.StartThreshold, t.EndThreshold), nil
}

// Chain applies transforms in order.
type Chain []Transform

func (c Chain) Name() string { return "chain" }

func (c Chain) Validate() error {
	for _, t := range c {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Chain) Apply(r read.Read) (read.Read, error) {
	var err error
	for _, t := range c {
		if r, err = t.Apply(r); err != nil {
			return read.Read{}, err
		}
	}
	return r, nil
}
