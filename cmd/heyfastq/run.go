package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heyfastq/heyfastq-go/internal/fastq"
	"github.com/heyfastq/heyfastq-go/internal/pipeline"
	"github.com/heyfastq/heyfastq-go/internal/read"
	"github.com/heyfastq/heyfastq-go/internal/stage"
	"github.com/heyfastq/heyfastq-go/internal/stats"
	"github.com/heyfastq/heyfastq-go/internal/xio"
	"github.com/heyfastq/heyfastq-go/pkg/heyfastq"
)

// ioFlags are the input, output and execution flags shared by every
// processing command.
type ioFlags struct {
	inputs        []string
	outputs       []string
	threads       int
	chunkSize     int
	anyMate       bool
	statsPath     string
	summary       bool
	progress      bool
	compressLevel int
}

func (f *ioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.inputs, "input", "i", []string{xio.Stdio}, "Input FASTQ files, one per mate (plain, gzip or zstd)")
	cmd.Flags().StringSliceVarP(&f.outputs, "output", "o", []string{xio.Stdio}, "Output FASTQ files, one per mate (.gz and .zst are compressed)")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", pipeline.DefaultThreads, "Number of worker threads")
	cmd.Flags().IntVar(&f.chunkSize, "chunk-size", pipeline.DefaultChunkSize, "Reads per parallel work unit")
	cmd.Flags().StringVar(&f.statsPath, "stats", "", "Write a JSON run report to this file")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "Print a run summary to stderr")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Show a progress bar on stderr")
	cmd.Flags().IntVar(&f.compressLevel, "compress-level", 0, "Output compression level (0 uses the codec default)")
}

func (f *ioFlags) registerMates(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.anyMate, "any", false, "Keep a pair when any mate passes instead of all mates")
}

func (f *ioFlags) requirement() pipeline.Requirement {
	if f.anyMate {
		return pipeline.Any
	}
	return pipeline.All
}

// job is one processing command. Exactly one operation field is set.
type job struct {
	name      string
	transform stage.Transform
	predicate stage.Predicate
	sample    *pipeline.SubsampleOptions
}

type runner struct {
	cmd   *cobra.Command
	log   *logrus.Logger
	flags *ioFlags
}

func newRunner(cmd *cobra.Command, log *logrus.Logger, flags *ioFlags) *runner {
	return &runner{cmd: cmd, log: log, flags: flags}
}

func countStdio(paths []string) int {
	n := 0
	for _, p := range paths {
		if p == xio.Stdio {
			n++
		}
	}
	return n
}

func (r *runner) check(j job) error {
	f := r.flags
	if len(f.inputs) == 0 {
		return errors.New("at least one input is required")
	}
	if len(f.outputs) != len(f.inputs) {
		return fmt.Errorf("got %d inputs but %d outputs", len(f.inputs), len(f.outputs))
	}
	if countStdio(f.inputs) > 1 {
		return errors.New("stdin can be used for only one input")
	}
	if countStdio(f.outputs) > 1 {
		return errors.New("stdout can be used for only one output")
	}
	if j.sample != nil {
		if countStdio(f.inputs) > 0 {
			return errors.New("subsample reads its input twice and cannot read from stdin")
		}
		if err := j.sample.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) run(j job) error {
	f := r.flags
	if err := r.check(j); err != nil {
		return err
	}
	opts := pipeline.Options{Threads: f.threads, ChunkSize: f.chunkSize}
	if err := opts.Validate(); err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{
		"command":    j.name,
		"inputs":     f.inputs,
		"outputs":    f.outputs,
		"threads":    opts.Threads,
		"chunk_size": opts.ChunkSize,
	}).Debug("starting")

	var (
		c   pipeline.Counter
		col stats.Collector
		err error
	)
	if len(f.inputs) == 1 {
		err = r.runSingle(j, &c, &col, opts)
	} else {
		err = r.runPaired(j, &c, &col, opts)
	}
	if xio.IsBrokenPipe(err) {
		r.log.Debug("output closed early")
		err = nil
	}
	if err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{
		"input_reads":  c.InputReads,
		"input_bases":  c.InputBases,
		"output_reads": c.OutputReads,
		"output_bases": c.OutputBases,
	}).Info(j.name)

	report := stats.NewReport(j.name, c)
	report.Output = col.Stats()
	if f.summary {
		report.WriteSummary(r.cmd.ErrOrStderr())
	}
	if f.statsPath != "" {
		return writeReport(f.statsPath, report)
	}
	return nil
}

func writeReport(path string, report *stats.Report) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating stats file: %w", err)
	}
	if err := report.WriteJSON(out); err != nil {
		out.Close()
		return fmt.Errorf("writing stats file: %w", err)
	}
	return out.Close()
}

func (r *runner) openReaders() ([]*fastq.Reader, error) {
	readers := make([]*fastq.Reader, 0, len(r.flags.inputs))
	for _, path := range r.flags.inputs {
		var (
			rc  io.ReadCloser
			err error
		)
		if path == xio.Stdio {
			rc, err = xio.NewReader(r.cmd.InOrStdin())
		} else {
			rc, err = xio.Open(path)
		}
		if err != nil {
			closeReaders(readers)
			return nil, err
		}
		readers = append(readers, fastq.NewReader(rc))
	}
	return readers, nil
}

func closeReaders(readers []*fastq.Reader) {
	for _, fr := range readers {
		fr.Close()
	}
}

func (r *runner) openWriters() ([]*fastq.Writer, error) {
	writers := make([]*fastq.Writer, 0, len(r.flags.outputs))
	for _, path := range r.flags.outputs {
		var (
			wc  io.WriteCloser
			err error
		)
		if path == xio.Stdio {
			wc, err = xio.NewWriter(r.cmd.OutOrStdout(), xio.Plain, r.flags.compressLevel)
		} else {
			wc, err = xio.Create(path, r.flags.compressLevel)
		}
		if err != nil {
			for _, w := range writers {
				w.Close()
			}
			return nil, err
		}
		writers = append(writers, fastq.NewWriter(wc))
	}
	return writers, nil
}

// countRecords is the first pass of subsample.
func (r *runner) countRecords() (int, error) {
	readers, err := r.openReaders()
	if err != nil {
		return 0, err
	}
	defer closeReaders(readers)

	if len(readers) == 1 {
		return pipeline.Count[read.Read](readers[0])
	}
	return pipeline.Count[read.Pair](fastq.NewPairedReader(readers...))
}

func (r *runner) newBar(total int) *pb.ProgressBar {
	if !r.flags.progress {
		return nil
	}
	return pb.Full.New(total).SetWriter(r.cmd.ErrOrStderr()).Start()
}

func drain[T any](src pipeline.Source[T], write func(T) error, observe func(T), bar *pb.ProgressBar) error {
	if bar != nil {
		defer bar.Finish()
	}
	return pipeline.ForEach(src, func(item T) error {
		if err := write(item); err != nil {
			return err
		}
		observe(item)
		if bar != nil {
			bar.Increment()
		}
		return nil
	})
}

func (r *runner) runSingle(j job, c *pipeline.Counter, col *stats.Collector, opts pipeline.Options) error {
	total := 0
	if j.sample != nil {
		n, err := r.countRecords()
		if err != nil {
			return err
		}
		total = n
	}

	readers, err := r.openReaders()
	if err != nil {
		return err
	}
	defer closeReaders(readers)

	var src pipeline.Source[read.Read]
	switch {
	case j.transform != nil:
		src, err = heyfastq.Apply(readers[0], j.transform, c, opts)
	case j.predicate != nil:
		src, err = heyfastq.Keep(readers[0], j.predicate, c, opts)
	default:
		sample := *j.sample
		sample.Total = total
		src, err = heyfastq.Subsample[read.Read](readers[0], c, sample)
	}
	if err != nil {
		return err
	}
	defer pipeline.Close(src)

	writers, err := r.openWriters()
	if err != nil {
		return err
	}
	w := writers[0]

	err = drain(src, w.Write, col.Observe, r.newBar(total))
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

func (r *runner) runPaired(j job, c *pipeline.Counter, col *stats.Collector, opts pipeline.Options) error {
	total := 0
	if j.sample != nil {
		n, err := r.countRecords()
		if err != nil {
			return err
		}
		total = n
	}

	readers, err := r.openReaders()
	if err != nil {
		return err
	}
	in := fastq.NewPairedReader(readers...)
	defer in.Close()

	var src pipeline.Source[read.Pair]
	switch {
	case j.transform != nil:
		src, err = heyfastq.ApplyPaired(in, j.transform, c, opts)
	case j.predicate != nil:
		src, err = heyfastq.KeepPaired(in, j.predicate, r.flags.requirement(), c, opts)
	default:
		sample := *j.sample
		sample.Total = total
		src, err = heyfastq.Subsample[read.Pair](in, c, sample)
	}
	if err != nil {
		return err
	}
	defer pipeline.Close(src)

	writers, err := r.openWriters()
	if err != nil {
		return err
	}
	out := fastq.NewPairedWriter(writers...)

	err = drain(src, out.Write, col.ObservePair, r.newBar(total))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
