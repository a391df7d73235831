// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"github.com/featurebasedb/traveldb/errors"
	"github.com/featurebasedb/traveldb/hashindex"
	"github.com/featurebasedb/traveldb/logger"
	"github.com/featurebasedb/traveldb/pool"
)

// Flight is a scheduled flight record. Airline and PlaneModel alias the
// manager's deduplicating interner; airports are packed codes; times are
// packed minutes. An empty ID marks a tombstone (canceled flight).
type Flight struct {
	ID          string
	Airline     string
	PlaneModel  string
	Origin      AirportCode
	Destination AirportCode
	Schedule    DateTime
	Actual      DateTime
	Seats       int32
	Passengers  int32
}

func (f *Flight) valid() bool { return f.ID != "" }

// Delay returns the departure delay in minutes. Early departures are
// negative.
func (f *Flight) Delay() int64 { return int64(f.Actual) - int64(f.Schedule) }

// Flights manages flight records. Ids go to a plain interner (expected
// unique); airline names and plane models repeat heavily across flights and
// go to the deduplicating interner.
type Flights struct {
	pool    *pool.Pool[Flight]
	ids     *pool.Interner
	strings *pool.DedupInterner
	index   *hashindex.Index[*Flight]

	logger logger.Logger
	stats  StatsClient
}

const (
	flightBlockCap    = 8192
	flightIDBlock     = 1 << 16
	flightStringBlock = 1 << 14
)

// NewFlights returns an empty flight manager.
func NewFlights(log logger.Logger, stats StatsClient) *Flights {
	if log == nil {
		log = logger.NopLogger
	}
	if stats == nil {
		stats = NopStatsClient
	}
	return &Flights{
		pool:    pool.NewPool[Flight](flightBlockCap),
		ids:     pool.NewInterner(flightIDBlock),
		strings: pool.NewDedupInterner(flightStringBlock),
		index:   hashindex.NewIndex[*Flight](),
		logger:  log,
		stats:   stats,
	}
}

// Add copies f into the manager, interning its strings, and indexes it by
// ID. A duplicate ID overwrites the index entry, tombstones the displaced
// record, and logs a diagnostic.
func (m *Flights) Add(f Flight) (*Flight, error) {
	if f.ID == "" {
		return nil, errors.New(errors.ErrFlightNotFound, "flight id must not be empty")
	}
	stored := m.pool.Alloc()
	*stored = f
	stored.ID = m.ids.Put(f.ID)
	stored.Airline = m.strings.Put(f.Airline)
	stored.PlaneModel = m.strings.Put(f.PlaneModel)

	if prev, displaced := m.index.Put(stored.ID, stored); displaced {
		m.logger.Warnf("duplicate flight id %q overwrites earlier record", f.ID)
		prev.ID = ""
	}
	m.stats.Count(statFlightsAdded, 1)
	return stored, nil
}

// GetByID returns the flight with the given id, or nil if absent or
// canceled.
func (m *Flights) GetByID(id string) *Flight {
	f, ok := m.index.Get(id)
	if !ok || !f.valid() {
		return nil
	}
	return f
}

// Invalidate tombstones the flight with the given id and removes it from the
// index. The pool slot is never reclaimed; memory is freed only at manager
// teardown. A second invalidate of the same id is a no-op.
func (m *Flights) Invalidate(id string) {
	f, ok := m.index.Get(id)
	if !ok {
		return
	}
	f.ID = ""
	m.index.Delete(id)
	m.stats.Count(statFlightsInvalid, 1)
}

// Iterate visits every live flight in insertion order until fn returns
// false.
func (m *Flights) Iterate(fn func(*Flight) bool) {
	m.pool.Iterate(func(f *Flight) bool {
		if !f.valid() {
			return true
		}
		return fn(f)
	})
}

// Len returns the number of live flights.
func (m *Flights) Len() int { return m.index.Len() }

// AddPassengers increments the flight's passenger count by n, bounded by its
// seat count. The increment is applied whole or not at all.
func (m *Flights) AddPassengers(id string, n int) error {
	f := m.GetByID(id)
	if f == nil {
		return errors.Newf(errors.ErrFlightNotFound, "flight %q not found", id)
	}
	if int(f.Passengers)+n > int(f.Seats) {
		return errors.Newf(errors.ErrSeatsExceeded,
			"flight %q: %d passengers + %d would exceed %d seats", id, f.Passengers, n, f.Seats)
	}
	f.Passengers += int32(n)
	m.stats.Count(statPassengersAdded, int64(n))
	return nil
}
