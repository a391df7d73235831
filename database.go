// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"github.com/featurebasedb/traveldb/errors"
	"github.com/featurebasedb/traveldb/logger"
)

// Database owns exactly one manager per entity kind and exposes the
// cross-manager operations loaders use. It trusts referential integrity
// once rows are accepted: validation of raw input happens in the loaders,
// cross-reference validation happens here, and after that the query engine
// assumes consistency.
type Database struct {
	Users        *Users
	Flights      *Flights
	Reservations *Reservations

	logger logger.Logger
	stats  StatsClient
}

// DatabaseOpts configures a Database. Zero values get nop implementations.
type DatabaseOpts struct {
	Logger logger.Logger
	Stats  StatsClient
}

// NewDatabase returns an empty database.
func NewDatabase(opts DatabaseOpts) *Database {
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger
	}
	stats := opts.Stats
	if stats == nil {
		stats = NopStatsClient
	}
	return &Database{
		Users:        NewUsers(log, stats),
		Flights:      NewFlights(log, stats),
		Reservations: NewReservations(log, stats),
		logger:       log,
		stats:        stats,
	}
}

// AddUser adds a user record.
func (db *Database) AddUser(u User) error {
	_, err := db.Users.Add(u)
	return err
}

// AddFlight adds a flight record.
func (db *Database) AddFlight(f Flight) error {
	_, err := db.Flights.Add(f)
	return err
}

// InvalidateFlight tombstones a canceled flight.
func (db *Database) InvalidateFlight(id string) {
	db.Flights.Invalidate(id)
}

// AddReservation adds a reservation after checking its user exists, and
// associates it with the user.
func (db *Database) AddReservation(r Reservation) error {
	if db.Users.GetByID(r.UserID) == nil {
		return errors.Newf(errors.ErrUserNotFound, "reservation %q: user %q not found", r.ID, r.UserID)
	}
	stored, err := db.Reservations.Add(r)
	if err != nil {
		return err
	}
	return db.Users.AssociateReservation(stored.UserID, stored.ID)
}

// AddPassengers registers userIDs as passengers of the flight. The whole
// batch is validated before anything mutates: an unknown flight, an unknown
// user, or a seat overflow rejects the batch with no partial application.
func (db *Database) AddPassengers(flightID string, userIDs []string) error {
	f := db.Flights.GetByID(flightID)
	if f == nil {
		return errors.Newf(errors.ErrFlightNotFound, "flight %q not found", flightID)
	}
	if int(f.Passengers)+len(userIDs) > int(f.Seats) {
		return errors.Newf(errors.ErrSeatsExceeded,
			"flight %q: %d passengers + %d would exceed %d seats",
			flightID, f.Passengers, len(userIDs), f.Seats)
	}
	for _, id := range userIDs {
		if db.Users.GetByID(id) == nil {
			return errors.Newf(errors.ErrUserNotFound, "passenger %q of flight %q not found", id, flightID)
		}
	}

	// Validated whole; now apply whole.
	if err := db.Flights.AddPassengers(flightID, len(userIDs)); err != nil {
		return err
	}
	for _, id := range userIDs {
		if err := db.Users.AssociateFlight(id, flightID); err != nil {
			return err
		}
	}
	return nil
}
