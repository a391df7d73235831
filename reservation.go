// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"github.com/featurebasedb/traveldb/errors"
	"github.com/featurebasedb/traveldb/hashindex"
	"github.com/featurebasedb/traveldb/logger"
	"github.com/featurebasedb/traveldb/pool"
)

// Reservation is a hotel stay record. The stay occupies the nights
// [Begin, End): the checkout day earns the hotel nothing. HotelID and
// HotelName repeat across reservations and alias the deduplicating
// interner; the reservation id and user id are expected unique per record
// and alias the plain interner.
type Reservation struct {
	ID            string
	UserID        string
	HotelID       string
	HotelName     string
	Begin         Date
	End           Date
	PricePerNight int64
	Rating        int8 // 1..5, 0 when unrated
}

func (r *Reservation) valid() bool { return r.ID != "" }

// Nights returns the number of nights the stay pays for.
func (r *Reservation) Nights() int { return int(r.End - r.Begin) }

// Revenue returns the stay's total price.
func (r *Reservation) Revenue() int64 { return r.PricePerNight * int64(r.Nights()) }

// OverlapNights returns how many of the stay's nights fall inside the
// inclusive filter range [begin, end]. A night is identified by its date;
// the night of r.End-1 is the last one that can count.
func (r *Reservation) OverlapNights(begin, end Date) int {
	lo := r.Begin
	if begin > lo {
		lo = begin
	}
	hi := r.End // exclusive
	if end+1 < hi {
		hi = end + 1
	}
	if hi <= lo {
		return 0
	}
	return int(hi - lo)
}

// Reservations manages reservation records.
type Reservations struct {
	pool    *pool.Pool[Reservation]
	ids     *pool.Interner
	strings *pool.DedupInterner
	index   *hashindex.Index[*Reservation]

	logger logger.Logger
	stats  StatsClient
}

const (
	reservationBlockCap    = 8192
	reservationIDBlock     = 1 << 16
	reservationStringBlock = 1 << 14
)

// NewReservations returns an empty reservation manager.
func NewReservations(log logger.Logger, stats StatsClient) *Reservations {
	if log == nil {
		log = logger.NopLogger
	}
	if stats == nil {
		stats = NopStatsClient
	}
	return &Reservations{
		pool:    pool.NewPool[Reservation](reservationBlockCap),
		ids:     pool.NewInterner(reservationIDBlock),
		strings: pool.NewDedupInterner(reservationStringBlock),
		index:   hashindex.NewIndex[*Reservation](),
		logger:  log,
		stats:   stats,
	}
}

// Add copies r into the manager, interning its strings, and indexes it by
// ID. A duplicate ID overwrites the index entry, tombstones the displaced
// record, and logs a diagnostic.
func (m *Reservations) Add(r Reservation) (*Reservation, error) {
	if r.ID == "" {
		return nil, errors.New(errors.ErrReservationNotFound, "reservation id must not be empty")
	}
	stored := m.pool.Alloc()
	*stored = r
	stored.ID = m.ids.Put(r.ID)
	stored.UserID = m.ids.Put(r.UserID)
	stored.HotelID = m.strings.Put(r.HotelID)
	stored.HotelName = m.strings.Put(r.HotelName)

	if prev, displaced := m.index.Put(stored.ID, stored); displaced {
		m.logger.Warnf("duplicate reservation id %q overwrites earlier record", r.ID)
		prev.ID = ""
	}
	m.stats.Count(statReservationsAdded, 1)
	return stored, nil
}

// GetByID returns the reservation with the given id, or nil if absent or
// tombstoned.
func (m *Reservations) GetByID(id string) *Reservation {
	r, ok := m.index.Get(id)
	if !ok || !r.valid() {
		return nil
	}
	return r
}

// Invalidate tombstones the reservation with the given id and removes it
// from the index.
func (m *Reservations) Invalidate(id string) {
	r, ok := m.index.Get(id)
	if !ok {
		return
	}
	r.ID = ""
	m.index.Delete(id)
}

// Iterate visits every live reservation in insertion order until fn returns
// false.
func (m *Reservations) Iterate(fn func(*Reservation) bool) {
	m.pool.Iterate(func(r *Reservation) bool {
		if !r.valid() {
			return true
		}
		return fn(r)
	})
}

// Len returns the number of live reservations.
func (m *Reservations) Len() int { return m.index.Len() }
