// Command heyfastq filters, trims and subsamples FASTQ reads.
//
// Usage:
//
//	heyfastq <command> [options]
//
// Commands:
//
//	trim-fixed      Trim reads to a fixed length
//	trim-qual       Trim reads at the first low-quality window
//	trim-ends       Trim low-quality bases from both ends
//	filter-length   Keep reads by length
//	filter-kscore   Keep reads by k-mer complexity
//	filter-ids      Keep or drop reads by ID
//	subsample       Select a reproducible random sample of reads
//	version         Show version information
//
// Passing several --input/--output files processes them as mates of
// paired reads. "-" reads stdin or writes stdout.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heyfastq/heyfastq-go/internal/kmer"
	"github.com/heyfastq/heyfastq-go/internal/pipeline"
	"github.com/heyfastq/heyfastq-go/internal/stage"
	"github.com/heyfastq/heyfastq-go/internal/xio"
	"github.com/heyfastq/heyfastq-go/pkg/heyfastq"
)

const defaultSampleSize = 1000

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	log := logrus.New()

	root := &cobra.Command{
		Use:          "heyfastq",
		Short:        "Filter, trim and subsample FASTQ reads",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			log.SetLevel(logrus.InfoLevel)
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug information")

	root.AddCommand(
		trimFixedCommand(log),
		trimQualCommand(log),
		trimEndsCommand(log),
		filterLengthCommand(log),
		filterKScoreCommand(log),
		filterIDsCommand(log),
		subsampleCommand(log),
		versionCommand(),
	)
	return root
}

func trimFixedCommand(log *logrus.Logger) *cobra.Command {
	var (
		flags ioFlags
		trim  stage.FixedTrim
	)
	cmd := &cobra.Command{
		Use:   "trim-fixed",
		Short: "Trim reads to a fixed length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRunner(cmd, log, &flags).run(job{name: trim.Name(), transform: trim})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&trim.Length, "length", "l", stage.DefaultLength, "Keep bases before this position")
	cmd.Flags().IntVar(&trim.Start, "start", 0, "Drop bases before this position")
	return cmd
}

func trimQualCommand(log *logrus.Logger) *cobra.Command {
	var (
		flags ioFlags
		trim  stage.MovingAverageTrim
	)
	cmd := &cobra.Command{
		Use:   "trim-qual",
		Short: "Trim reads at the first window with mean quality below a threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRunner(cmd, log, &flags).run(job{name: trim.Name(), transform: trim})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&trim.Window, "window", "w", stage.DefaultWindow, "Sliding window width")
	cmd.Flags().IntVarP(&trim.Threshold, "threshold", "q", stage.DefaultThreshold, "Minimum mean window quality")
	return cmd
}

func trimEndsCommand(log *logrus.Logger) *cobra.Command {
	var (
		flags ioFlags
		trim  stage.EndTrim
	)
	cmd := &cobra.Command{
		Use:   "trim-ends",
		Short: "Trim low-quality bases from the start and end of reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRunner(cmd, log, &flags).run(job{name: trim.Name(), transform: trim})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&trim.StartThreshold, "start-threshold", stage.DefaultThreshold, "Minimum quality of the first kept base")
	cmd.Flags().IntVar(&trim.EndThreshold, "end-threshold", stage.DefaultThreshold, "Minimum quality of the last kept base")
	return cmd
}

func filterLengthCommand(log *logrus.Logger) *cobra.Command {
	var (
		flags  ioFlags
		filter stage.LengthFilter
	)
	cmd := &cobra.Command{
		Use:   "filter-length",
		Short: "Keep reads of at least a minimum length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRunner(cmd, log, &flags).run(job{name: filter.Name(), predicate: filter})
		},
	}
	flags.register(cmd)
	flags.registerMates(cmd)
	cmd.Flags().IntVarP(&filter.Threshold, "length", "l", stage.DefaultLength, "Length threshold")
	cmd.Flags().BoolVar(&filter.Less, "less", false, "Keep reads shorter than the threshold instead")
	return cmd
}

func filterKScoreCommand(log *logrus.Logger) *cobra.Command {
	var (
		flags  ioFlags
		filter stage.ComplexityFilter
	)
	cmd := &cobra.Command{
		Use:   "filter-kscore",
		Short: "Keep reads with enough distinct k-mers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRunner(cmd, log, &flags).run(job{name: filter.Name(), predicate: filter})
		},
	}
	flags.register(cmd)
	flags.registerMates(cmd)
	cmd.Flags().IntVarP(&filter.K, "kmer-size", "k", kmer.DefaultK, "K-mer size")
	cmd.Flags().Float64Var(&filter.MinScore, "min-kscore", stage.DefaultMinKScore, "Minimum kscore")
	return cmd
}

func filterIDsCommand(log *logrus.Logger) *cobra.Command {
	var (
		flags   ioFlags
		idsPath string
		exclude bool
	)
	cmd := &cobra.Command{
		Use:   "filter-ids",
		Short: "Keep (or drop) reads whose IDs are listed in a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := xio.Open(idsPath)
			if err != nil {
				return err
			}
			ids, err := stage.ReadIDs(f)
			f.Close()
			if err != nil {
				return err
			}
			log.Debugf("loaded %d read ids from %s", len(ids), idsPath)

			filter := stage.NewIDFilter(ids, exclude)
			return newRunner(cmd, log, &flags).run(job{name: filter.Name(), predicate: filter})
		},
	}
	flags.register(cmd)
	flags.registerMates(cmd)
	cmd.Flags().StringVar(&idsPath, "ids", "", "File with one read ID per line")
	cmd.Flags().BoolVar(&exclude, "exclude", false, "Drop listed reads instead of keeping them")
	cmd.MarkFlagRequired("ids")
	return cmd
}

func subsampleCommand(log *logrus.Logger) *cobra.Command {
	var (
		flags  ioFlags
		sample pipeline.SubsampleOptions
	)
	cmd := &cobra.Command{
		Use:   "subsample",
		Short: "Select a reproducible random sample of reads, keeping input order",
		Long: `Select a reproducible random sample of reads, keeping input order.

The input is read twice: once to count records and once to emit the
selected ones, so it must be a file rather than stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRunner(cmd, log, &flags).run(job{name: "subsample", sample: &sample})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&sample.N, "n", "n", defaultSampleSize, "Number of reads to select")
	cmd.Flags().Int64Var(&sample.Seed, "seed", 0, "Random seed")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), heyfastq.Info())
		},
	}
}
