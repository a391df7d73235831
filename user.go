// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"github.com/featurebasedb/traveldb/errors"
	"github.com/featurebasedb/traveldb/hashindex"
	"github.com/featurebasedb/traveldb/logger"
	"github.com/featurebasedb/traveldb/pool"
)

// User is a traveler record. Name aliases manager-owned interner storage.
// An empty ID marks a tombstone; tombstones never surface from GetByID or
// Iterate.
type User struct {
	ID   string
	Name string

	flights      relList
	reservations relList
}

func (u *User) valid() bool { return u.ID != "" }

// Users manages user records: an entity pool, a string interner for ids and
// names, the id index, and the shared node pool backing every user's two
// relationship lists.
type Users struct {
	pool    *pool.Pool[User]
	strings *pool.Interner
	index   *hashindex.Index[*User]
	nodes   *pool.Pool[relNode]

	logger logger.Logger
	stats  StatsClient
}

// Block capacities are tuned so a dataset of tens of thousands of entities
// allocates a handful of blocks, not hundreds.
const (
	userBlockCap    = 8192
	userStringBlock = 1 << 16
	relNodeBlockCap = 1 << 14
)

// NewUsers returns an empty user manager.
func NewUsers(log logger.Logger, stats StatsClient) *Users {
	if log == nil {
		log = logger.NopLogger
	}
	if stats == nil {
		stats = NopStatsClient
	}
	return &Users{
		pool:    pool.NewPool[User](userBlockCap),
		strings: pool.NewInterner(userStringBlock),
		index:   hashindex.NewIndex[*User](),
		nodes:   pool.NewPool[relNode](relNodeBlockCap),
		logger:  log,
		stats:   stats,
	}
}

// Add copies u into the manager, interning its strings, and indexes it by ID.
// A duplicate ID overwrites the index entry, tombstones the displaced record
// so iteration stays consistent with lookup, and logs a diagnostic.
func (m *Users) Add(u User) (*User, error) {
	if u.ID == "" {
		return nil, errors.New(errors.ErrUserNotFound, "user id must not be empty")
	}
	stored := m.pool.Alloc()
	stored.ID = m.strings.Put(u.ID)
	stored.Name = m.strings.Put(u.Name)

	if prev, displaced := m.index.Put(stored.ID, stored); displaced {
		m.logger.Warnf("duplicate user id %q overwrites earlier record", u.ID)
		prev.ID = ""
	}
	m.stats.Count(statUsersAdded, 1)
	return stored, nil
}

// GetByID returns the user with the given id, or nil if absent or
// tombstoned.
func (m *Users) GetByID(id string) *User {
	u, ok := m.index.Get(id)
	if !ok || !u.valid() {
		return nil
	}
	return u
}

// Invalidate tombstones the user with the given id and removes it from the
// index. The pool slot lingers until teardown. Invalidating a missing or
// already-tombstoned id is a no-op.
func (m *Users) Invalidate(id string) {
	u, ok := m.index.Get(id)
	if !ok {
		return
	}
	u.ID = ""
	m.index.Delete(id)
}

// Iterate visits every live user in insertion order until fn returns false.
// This is the one place sequential scans learn about tombstones.
func (m *Users) Iterate(fn func(*User) bool) {
	m.pool.Iterate(func(u *User) bool {
		if !u.valid() {
			return true
		}
		return fn(u)
	})
}

// Len returns the number of live users.
func (m *Users) Len() int { return m.index.Len() }

// AssociateFlight prepends flightID to the user's flight list.
func (m *Users) AssociateFlight(userID, flightID string) error {
	u := m.GetByID(userID)
	if u == nil {
		return errors.Newf(errors.ErrUserNotFound, "user %q not found", userID)
	}
	u.flights.prepend(m.nodes, flightID)
	return nil
}

// AssociateReservation prepends reservationID to the user's reservation
// list.
func (m *Users) AssociateReservation(userID, reservationID string) error {
	u := m.GetByID(userID)
	if u == nil {
		return errors.Newf(errors.ErrUserNotFound, "user %q not found", userID)
	}
	u.reservations.prepend(m.nodes, reservationID)
	return nil
}

// FlightIDs returns the user's flight ids, newest association first.
func (u *User) FlightIDs() []string { return u.flights.ids() }

// ReservationIDs returns the user's reservation ids, newest association
// first.
func (u *User) ReservationIDs() []string { return u.reservations.ids() }
