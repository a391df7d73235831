// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package traveldb implements an in-memory analytical database over a
// travel dataset and the batch query engine that answers analytical
// queries against it.
//
// The storage layer is arena-backed: entity managers allocate records from
// block-growing pools, intern their strings, and index them by id; records
// are tombstoned instead of freed. The query engine parses a batch of
// query instances, generates per-query-kind statistics with one table scan
// per kind, and then answers every instance by keyed lookup.
package traveldb

import (
	"fmt"
	"runtime"
)

// Version info, set at build time via -ldflags.
var Version string
var BuildTime string
var GoVersion string = runtime.Version()

// VersionInfo returns a human-readable version line.
func VersionInfo() string {
	version := Version
	if version == "" {
		version = "v0.x"
	}
	buildTime := BuildTime
	if buildTime == "" {
		buildTime = "not recorded"
	}
	return fmt.Sprintf("TravelDB %s, build time %s, %s", version, buildTime, GoVersion)
}
