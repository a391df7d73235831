// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/featurebasedb/traveldb/errors"
)

// queryArgs is the parsed-argument value of a query instance. Each query
// kind uses its own private concrete type; the framework never inspects it
// beyond handing it back to the kind that parsed it.
type queryArgs interface{}

// queryStats is the opaque batch statistics value produced once per query
// kind and consumed read-only by every execute call of that kind.
type queryStats interface{}

// queryType is the capability bundle of one query kind. Kinds that answer
// from batch statistics additionally implement statsGenerator; the two
// point-lookup kinds execute directly against the database.
type queryType interface {
	name() string
	// parseArguments validates arity and per-field format. A malformed
	// line is skippable: it yields an error here and never reaches
	// execution.
	parseArguments(fields []string) (queryArgs, error)
	// execute answers one instance. stats is nil for kinds without a
	// statsGenerator, and otherwise is exactly the value
	// generateStatistics returned for this batch. It must not be
	// mutated: it is shared by every instance of the kind.
	execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error
}

type statsGenerator interface {
	// generateStatistics is called once per query kind and batch with
	// every instance's arguments, duplicates included; implementations
	// deduplicate themselves so identical filters share accumulators.
	generateStatistics(db *Database, args []queryArgs) (queryStats, error)
}

// Instance is one concrete occurrence of a query type with parsed
// arguments.
type Instance struct {
	Tag       int
	Formatted bool
	Line      int // source line, for diagnostics

	args queryArgs
}

// queryTypes is the fixed dispatch table from numeric tag to query kind.
// An unknown tag on an input line is a data error handled at parse time; a
// missing entry here would be a configuration error.
var queryTypes = map[int]queryType{
	1:  lookupQuery{},
	2:  userItemsQuery{},
	3:  hotelRatingQuery{},
	4:  hotelReservationsQuery{},
	5:  airportFlightsQuery{},
	6:  topAirportsQuery{},
	7:  delayMedianQuery{},
	8:  hotelRevenueQuery{},
	9:  userPrefixQuery{},
	10: calendarQuery{},
}

// ParseQuery parses one query input line into an Instance. The grammar is
// "<tag>[f] <args...>": the tag selects the query kind and a trailing "f"
// asks for formatted output, default is delimited.
func ParseQuery(line string, lineno int) (*Instance, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.Newf(errors.ErrQueryMalformed, "line %d: empty query", lineno)
	}
	tagTok := fields[0]
	formatted := false
	if strings.HasSuffix(tagTok, "f") {
		formatted = true
		tagTok = strings.TrimSuffix(tagTok, "f")
	}
	tag, err := strconv.Atoi(tagTok)
	if err != nil {
		return nil, errors.Newf(errors.ErrQueryMalformed, "line %d: bad query tag %q", lineno, fields[0])
	}
	qt, ok := queryTypes[tag]
	if !ok {
		return nil, errors.Newf(errors.ErrQueryMalformed, "line %d: unknown query tag %d", lineno, tag)
	}
	args, err := qt.parseArguments(fields[1:])
	if err != nil {
		return nil, errors.Wrapf(err, "line %d: %s arguments", lineno, qt.name())
	}
	return &Instance{
		Tag:       tag,
		Formatted: formatted,
		Line:      lineno,
		args:      args,
	}, nil
}

// statsMismatch builds the should-never-happen error for an execute-time
// lookup miss: every instance's key was registered during statistics
// generation, so a miss means the batch statistics are corrupt.
func statsMismatch(qt queryType, inst *Instance) error {
	return errors.Newf(errors.ErrStatsMismatch,
		"%s (line %d): argument key missing from batch statistics", qt.name(), inst.Line)
}

// argCountError is the shared arity complaint.
func argCountError(name string, want string, got int) error {
	return errors.Newf(errors.ErrQueryMalformed, "%s: want %s arguments, got %d", name, want, got)
}

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

// formatMean renders an average with two decimals, the one non-integer
// value the output formats carry.
func formatMean(sum, count int64) string {
	return fmt.Sprintf("%.2f", float64(sum)/float64(count))
}
