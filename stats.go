// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"expvar"
	"sync"
	"time"
)

func init() {
	NopStatsClient = &nopStatsClient{}
}

// Expvar global expvar map.
var Expvar = expvar.NewMap("traveldb")

// StatsClient represents a client to a stats sink. The database and the
// executor report load and query counters through it; the default client
// discards everything.
type StatsClient interface {
	// Tracks the number of times something occurs.
	Count(name string, value int64)

	// Sets the value of a metric.
	Gauge(name string, value float64)

	// Tracks timing information for a metric.
	Timing(name string, value time.Duration)
}

// NopStatsClient represents a client that doesn't do anything.
var NopStatsClient StatsClient

type nopStatsClient struct{}

func (c *nopStatsClient) Count(name string, value int64)          {}
func (c *nopStatsClient) Gauge(name string, value float64)        {}
func (c *nopStatsClient) Timing(name string, value time.Duration) {}

// ExpvarStatsClient writes stats out to expvars.
type ExpvarStatsClient struct {
	mu sync.Mutex
	m  *expvar.Map
}

// NewExpvarStatsClient returns a new instance of ExpvarStatsClient.
// This client points at the root of the expvar traveldb map.
func NewExpvarStatsClient() *ExpvarStatsClient {
	return &ExpvarStatsClient{
		m: Expvar,
	}
}

// Count tracks the number of times something occurs.
func (c *ExpvarStatsClient) Count(name string, value int64) {
	c.m.Add(name, value)
}

// Gauge sets the value of a metric.
func (c *ExpvarStatsClient) Gauge(name string, value float64) {
	var f expvar.Float
	f.Set(value)
	c.m.Set(name, &f)
}

// Timing tracks cumulative timing information for a metric.
func (c *ExpvarStatsClient) Timing(name string, value time.Duration) {
	c.mu.Lock()
	d, _ := c.m.Get(name).(time.Duration)
	c.m.Set(name, d+value)
	c.mu.Unlock()
}

// Stat name constants reported by the core.
const (
	statUsersAdded        = "usersAdded"
	statFlightsAdded      = "flightsAdded"
	statReservationsAdded = "reservationsAdded"
	statFlightsInvalid    = "flightsInvalidated"
	statPassengersAdded   = "passengersAdded"
	statQueriesExecuted   = "queriesExecuted"
	statQueriesFailed     = "queriesFailed"
	statStatsGenerated    = "statisticsGenerated"
)
