package quality

import (
	"math/rand"
	"testing"

	"github.com/heyfastq/heyfastq-go/internal/read"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimFixed(t *testing.T) {
	r := read.Read{Desc: "myseq", Seq: "ACGTAC", Qual: "123456"}
	assert.Equal(t, read.Read{Desc: "myseq", Seq: "ACGT", Qual: "1234"}, TrimFixed(r, 4, 0))
	assert.Equal(t, read.Read{Desc: "myseq", Seq: "GT", Qual: "34"}, TrimFixed(r, 4, 2))
	assert.Equal(t, r, TrimFixed(r, 100, 0))
	assert.Equal(t, "ACGTAC", r.Seq)
}

func TestTrimMovingAverage(t *testing.T) {
	r := read.Read{Desc: "a", Seq: "ACGTACGTAAAAAA", Qual: "FFFFFFFF......"}
	assert.Equal(t, read.Read{Desc: "a", Seq: "ACGTACGT", Qual: "FFFFFFFF"}, TrimMovingAverage(r, 3, 15))
}

func TestTrimMovingAverageEndcaps(t *testing.T) {
	tests := []struct {
		name      string
		in        read.Read
		k         int
		threshold int
		want      read.Read
	}{
		{
			// window fails at 2, bases 2 and 3 pass on their own
			"cut after passing bases",
			read.Read{Desc: "a", Seq: "ACGTAAAAAAAA", Qual: "IIII!!!!!!!!"},
			4, 25,
			read.Read{Desc: "a", Seq: "ACGT", Qual: "IIII"},
		},
		{
			// window fails at 3, keep 3..5
			"isolated good base inside window",
			read.Read{Desc: "b", Seq: "CGTTCCCCCCCC", Qual: "IIII!I!!!!!!"},
			4, 25,
			read.Read{Desc: "b", Seq: "CGTTCC", Qual: "IIII!I"},
		},
		{
			"good base beyond failing window",
			read.Read{Desc: "c", Seq: "GCGGACGTCGGG", Qual: "IIII!!I!!!!!"},
			4, 25,
			read.Read{Desc: "c", Seq: "GCGG", Qual: "IIII"},
		},
		{
			"lower threshold keeps good base",
			read.Read{Desc: "d", Seq: "GCGGACGTCGGG", Qual: "IIII!!I!!!!!"},
			4, 15,
			read.Read{Desc: "d", Seq: "GCGGACG", Qual: "IIII!!I"},
		},
		{
			"no failing window",
			read.Read{Desc: "e", Seq: "ACGTACGT", Qual: "IIIIIIII"},
			4, 25,
			read.Read{Desc: "e", Seq: "ACGTACGT", Qual: "IIIIIIII"},
		},
		{
			"first window fails entirely",
			read.Read{Desc: "f", Seq: "ACGTACGT", Qual: "!!!!IIII"},
			4, 25,
			read.Read{Desc: "f", Seq: "", Qual: ""},
		},
		{
			"read shorter than window",
			read.Read{Desc: "g", Seq: "AC", Qual: "!!"},
			4, 25,
			read.Read{Desc: "g", Seq: "AC", Qual: "!!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimMovingAverage(tt.in, tt.k, tt.threshold))
		})
	}
}

func TestTrimEnds(t *testing.T) {
	tests := []struct {
		name       string
		in         read.Read
		start, end int
		want       read.Read
	}{
		{
			"both ends",
			read.Read{Desc: "a", Seq: "ACGTACGT", Qual: "!#IIII#!"},
			20, 20,
			read.Read{Desc: "a", Seq: "GTAC", Qual: "IIII"},
		},
		{
			"independent thresholds",
			read.Read{Desc: "a", Seq: "ACGTACGT", Qual: "+IIIIII+"},
			5, 20,
			read.Read{Desc: "a", Seq: "ACGTACG", Qual: "+IIIIII"},
		},
		{
			"nothing to trim",
			read.Read{Desc: "a", Seq: "ACGT", Qual: "IIII"},
			20, 20,
			read.Read{Desc: "a", Seq: "ACGT", Qual: "IIII"},
		},
		{
			"all low quality",
			read.Read{Desc: "a", Seq: "ACGT", Qual: "!!!!"},
			20, 20,
			read.Read{Desc: "a", Seq: "", Qual: ""},
		},
		{
			"empty read",
			read.Read{Desc: "a"},
			20, 20,
			read.Read{Desc: "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimEnds(tt.in, tt.start, tt.end))
		})
	}
}

func TestTrimsPreserveLengthInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 300; i++ {
		n := rng.Intn(40)
		seq := make([]byte, n)
		qual := make([]byte, n)
		for j := 0; j < n; j++ {
			seq[j] = "ACGTN"[rng.Intn(5)]
			qual[j] = byte(PhredOffset + rng.Intn(42))
		}
		r := read.Read{Desc: "r", Seq: string(seq), Qual: string(qual)}
		k := 1 + rng.Intn(6)
		th := rng.Intn(41)

		for _, out := range []read.Read{
			TrimFixed(r, rng.Intn(50), rng.Intn(5)),
			TrimMovingAverage(r, k, th),
			TrimEnds(r, th, rng.Intn(41)),
		} {
			require.NoError(t, out.Validate())
			require.LessOrEqual(t, out.Len(), r.Len())
		}
	}
}
