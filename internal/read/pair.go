package read

import "fmt"

// Pair holds synchronized mates, one per input file. Pairing is positional:
// element i of every pair came from input i, and members are never reordered.
type Pair []Read

// NewPair builds a pair from its members, validating each of them.
func NewPair(reads ...Read) (Pair, error) {
	if len(reads) == 0 {
		return nil, &EmptyPairError{}
	}
	for _, r := range reads {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	p := make(Pair, len(reads))
	copy(p, reads)
	return p, nil
}

// Bases returns the sequence length of the first member. Statistics count
// pairs by their first mate, not by the sum of all mates.
func (p Pair) Bases() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0].Seq)
}

// Equal reports whether both pairs hold the same reads in the same order.
func (p Pair) Equal(other Pair) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Pair) String() string {
	return fmt.Sprintf("Pair { members: %d, bases: %d }", len(p), p.Bases())
}
