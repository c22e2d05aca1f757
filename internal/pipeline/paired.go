package pipeline

import "github.com/heyfastq/heyfastq-go/internal/read"

// Requirement combines the per-mate results of a paired filter.
type Requirement int

const (
	// All keeps a pair only if every mate passes.
	All Requirement = iota
	// Any keeps a pair if at least one mate passes.
	Any
)

func (r Requirement) String() string {
	switch r {
	case All:
		return "all"
	case Any:
		return "any"
	default:
		return "unknown"
	}
}

// MapPaired applies fn to every mate of every pair, keeping mates in
// their positions.
func MapPaired(src Source[read.Pair], fn func(read.Read) (read.Read, error), c *Counter, opts Options) (Source[read.Pair], error) {
	return Map(src, func(p read.Pair) (read.Pair, error) {
		out := make(read.Pair, len(p))
		for i, r := range p {
			mapped, err := fn(r)
			if err != nil {
				return nil, err
			}
			out[i] = mapped
		}
		return out, nil
	}, c, opts)
}

// FilterPaired evaluates keep on the mates of every pair and keeps or
// drops the pair as a whole according to req. Evaluation stops as soon
// as the outcome is decided.
func FilterPaired(src Source[read.Pair], keep func(read.Read) (bool, error), req Requirement, c *Counter, opts Options) (Source[read.Pair], error) {
	if req != All && req != Any {
		return nil, &ValidationError{Field: "requirement", Value: int(req)}
	}
	return Filter(src, func(p read.Pair) (bool, error) {
		for _, r := range p {
			ok, err := keep(r)
			if err != nil {
				return false, err
			}
			if req == All && !ok {
				return false, nil
			}
			if req == Any && ok {
				return true, nil
			}
		}
		return req == All, nil
	}, c, opts)
}
