// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"time"

	"github.com/featurebasedb/traveldb/errors"
	"github.com/featurebasedb/traveldb/logger"
)

// Executor runs a batch of query instances against a loaded database.
//
// Lifecycle per batch: instances are grouped by query kind, each kind with a
// statistics generator gets exactly one generateStatistics call covering all
// of its instances' arguments, then instances execute in input order against
// the cached statistics. A kind whose generation fails has all its instances
// skipped; other kinds are unaffected. The executor is single-threaded and
// sequences generation strictly before execution, so execute implementations
// may treat statistics as frozen.
type Executor struct {
	db     *Database
	logger logger.Logger
	stats  StatsClient
}

// ExecutorOpts configures an Executor. Zero values get nop implementations.
type ExecutorOpts struct {
	Logger logger.Logger
	Stats  StatsClient
}

// NewExecutor returns an executor over db.
func NewExecutor(db *Database, opts ExecutorOpts) *Executor {
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger
	}
	stats := opts.Stats
	if stats == nil {
		stats = NopStatsClient
	}
	return &Executor{db: db, logger: log, stats: stats}
}

// ParseQueries parses the given input lines, dropping malformed ones with a
// diagnostic. Line numbers are 1-based.
func (e *Executor) ParseQueries(lines []string) []*Instance {
	instances := make([]*Instance, 0, len(lines))
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		inst, err := ParseQuery(line, i+1)
		if err != nil {
			e.logger.Warnf("skipping query: %v", err)
			continue
		}
		instances = append(instances, inst)
	}
	return instances
}

// Run executes the batch, writing results through w. Individual query
// failures are diagnostics, not run failures; only a writer flush failure is
// returned.
func (e *Executor) Run(instances []*Instance, w *Writer) error {
	batchStats, failed := e.generateAll(instances)

	for _, inst := range instances {
		if failed[inst.Tag] {
			e.logger.Warnf("query line %d: skipped, statistics generation for tag %d failed", inst.Line, inst.Tag)
			e.stats.Count(statQueriesFailed, 1)
			continue
		}
		qt := queryTypes[inst.Tag]
		w.setDelimited(!inst.Formatted)
		if err := qt.execute(e.db, batchStats[inst.Tag], inst, w); err != nil {
			if errors.Is(err, errors.ErrStatsMismatch) {
				// Invariant violation, not a data miss. Surface loudly but
				// keep serving the other instances.
				e.logger.Errorf("query line %d: %v", inst.Line, err)
			} else {
				e.logger.Warnf("query line %d: %v", inst.Line, err)
			}
			e.stats.Count(statQueriesFailed, 1)
			continue
		}
		e.stats.Count(statQueriesExecuted, 1)
	}
	return w.Flush()
}

// generateAll runs generateStatistics once per query kind present in the
// batch, in first-appearance order, collecting per-kind statistics and the
// set of kinds whose generation failed.
func (e *Executor) generateAll(instances []*Instance) (map[int]queryStats, map[int]bool) {
	argsByTag := make(map[int][]queryArgs)
	var tagOrder []int
	for _, inst := range instances {
		if _, seen := argsByTag[inst.Tag]; !seen {
			tagOrder = append(tagOrder, inst.Tag)
		}
		argsByTag[inst.Tag] = append(argsByTag[inst.Tag], inst.args)
	}

	batchStats := make(map[int]queryStats, len(tagOrder))
	failed := make(map[int]bool)
	for _, tag := range tagOrder {
		gen, ok := queryTypes[tag].(statsGenerator)
		if !ok {
			continue
		}
		t := time.Now()
		stats, err := gen.generateStatistics(e.db, argsByTag[tag])
		if err != nil {
			e.logger.Errorf("statistics for %s failed: %v", queryTypes[tag].name(), err)
			failed[tag] = true
			continue
		}
		batchStats[tag] = stats
		e.stats.Count(statStatsGenerated, 1)
		e.stats.Timing("statistics."+queryTypes[tag].name(), time.Since(t))
	}
	return batchStats, failed
}
