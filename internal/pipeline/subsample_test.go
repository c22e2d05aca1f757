package pipeline

import (
	"sort"
	"testing"

	"github.com/heyfastq/heyfastq-go/internal/read"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleIndices(t *testing.T) {
	tests := []struct {
		name     string
		total, n int
		want     int
	}{
		{"fewer than total", 100, 10, 10},
		{"equal to total", 10, 10, 10},
		{"more than total", 5, 10, 5},
		{"zero requested", 10, 0, 0},
		{"empty source", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := SampleIndices(tt.total, tt.n, 42)
			assert.Len(t, idx, tt.want)
			assert.True(t, sort.IntsAreSorted(idx))

			seen := map[int]bool{}
			for _, i := range idx {
				assert.False(t, seen[i], "duplicate index %d", i)
				assert.GreaterOrEqual(t, i, 0)
				assert.Less(t, i, tt.total)
				seen[i] = true
			}
		})
	}
}

func TestSampleIndicesReproducible(t *testing.T) {
	assert.Equal(t, SampleIndices(1000, 25, 7), SampleIndices(1000, 25, 7))
	assert.NotEqual(t, SampleIndices(1000, 25, 7), SampleIndices(1000, 25, 8))
}

func TestSubsample(t *testing.T) {
	reads := makeReads(200)

	run := func() ([]read.Read, Counter) {
		var c Counter
		src, err := Subsample[read.Read](FromSlice(reads), &c, SubsampleOptions{Total: len(reads), N: 20, Seed: 3})
		require.NoError(t, err)
		got, err := Collect(src)
		require.NoError(t, err)
		return got, c
	}

	first, c := run()
	second, _ := run()

	require.Len(t, first, 20)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(200), c.InputReads)
	assert.Equal(t, int64(20), c.OutputReads)

	// original relative order
	pos := map[string]int{}
	for i, r := range reads {
		pos[r.Desc] = i
	}
	for i := 1; i < len(first); i++ {
		assert.Less(t, pos[first[i-1].Desc], pos[first[i].Desc])
	}
}

func TestSubsampleMoreThanAvailable(t *testing.T) {
	reads := makeReads(8)
	src, err := Subsample[read.Read](FromSlice(reads), nil, SubsampleOptions{Total: 8, N: 100, Seed: 1})
	require.NoError(t, err)
	got, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, reads, got)
}

func TestSubsampleValidation(t *testing.T) {
	_, err := Subsample[read.Read](untouchable{t}, nil, SubsampleOptions{Total: 10, N: -1})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = Subsample[read.Read](untouchable{t}, nil, SubsampleOptions{Total: -1, N: 1})
	assert.ErrorAs(t, err, &verr)
}

func TestSubsamplePairs(t *testing.T) {
	src, err := Subsample[read.Pair](FromSlice(pairs), nil, SubsampleOptions{Total: 2, N: 1, Seed: 9})
	require.NoError(t, err)
	got, err := Collect(src)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], 2)
}
