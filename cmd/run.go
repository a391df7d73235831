// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"bufio"
	"io"
	"os"
	"time"

	traveldb "github.com/featurebasedb/traveldb"
	"github.com/featurebasedb/traveldb/loader"
	"github.com/featurebasedb/traveldb/logger"
	"github.com/spf13/cobra"
)

type runConfig struct {
	dataDir string
	queries string
	output  string
	errFile string
	verbose bool
}

func newRunCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	conf := &runConfig{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a dataset and run a query batch.",
		Long: `run loads the dataset files from --data-dir, parses the query file,
executes the batch, and writes results to --output (stdout by default).
Rejected dataset rows go to --errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(conf, stdin, stdout, stderr)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&conf.dataDir, "data-dir", ".", "Directory holding the dataset files.")
	flags.StringVar(&conf.queries, "queries", "", "Query input file ('-' for stdin).")
	flags.StringVar(&conf.output, "output", "", "Result output file (stdout when empty).")
	flags.StringVar(&conf.errFile, "errors", "", "Rejected-row sink file (discarded when empty).")
	flags.BoolVar(&conf.verbose, "verbose", false, "Enable verbose logging.")
	return cmd
}

func runBatch(conf *runConfig, stdin io.Reader, stdout, stderr io.Writer) error {
	var log logger.Logger
	if conf.verbose {
		log = logger.NewVerboseLogger(stderr)
	} else {
		log = logger.NewStandardLogger(stderr)
	}
	stats := traveldb.NewExpvarStatsClient()

	var errSink io.Writer
	if conf.errFile != "" {
		f, err := os.Create(conf.errFile)
		if err != nil {
			return err
		}
		defer f.Close()
		errSink = f
	}

	db := traveldb.NewDatabase(traveldb.DatabaseOpts{Logger: log, Stats: stats})
	ld := loader.New(db, loader.Opts{Logger: log, ErrSink: errSink})
	t := time.Now()
	if err := ld.LoadDir(conf.dataDir); err != nil {
		// Load failures (including allocation exhaustion) are fatal for
		// the whole run.
		return err
	}
	log.Debugf("load took %v", time.Since(t))

	lines, err := readQueryLines(conf.queries, stdin)
	if err != nil {
		return err
	}

	out := stdout
	if conf.output != "" {
		f, err := os.Create(conf.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	executor := traveldb.NewExecutor(db, traveldb.ExecutorOpts{Logger: log, Stats: stats})
	instances := executor.ParseQueries(lines)
	log.Infof("executing %d queries", len(instances))
	return executor.Run(instances, traveldb.NewWriter(out))
}

func readQueryLines(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader
	switch path {
	case "", "-":
		r = stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
