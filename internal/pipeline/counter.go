package pipeline

import "fmt"

// Record is an element whose bases are counted in run statistics.
type Record interface {
	Bases() int
}

// Counter accumulates read and base totals for one stage.
type Counter struct {
	InputReads  int64 `json:"input_reads"`
	InputBases  int64 `json:"input_bases"`
	OutputReads int64 `json:"output_reads"`
	OutputBases int64 `json:"output_bases"`
}

// Add sums other into c.
func (c *Counter) Add(other Counter) {
	c.InputReads += other.InputReads
	c.InputBases += other.InputBases
	c.OutputReads += other.OutputReads
	c.OutputBases += other.OutputBases
}

func (c *Counter) input(bases int) {
	c.InputReads++
	c.InputBases += int64(bases)
}

func (c *Counter) output(bases int) {
	c.OutputReads++
	c.OutputBases += int64(bases)
}

func (c Counter) String() string {
	return fmt.Sprintf("Counter { input_reads: %d, input_bases: %d, output_reads: %d, output_bases: %d }",
		c.InputReads, c.InputBases, c.OutputReads, c.OutputBases)
}
