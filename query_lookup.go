// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"strings"

	"github.com/featurebasedb/traveldb/errors"
	"golang.org/x/exp/slices"
)

// The two point-lookup query kinds answer straight from the id indexes.
// Batching buys them nothing: each instance is already O(1), or O(k) in the
// entity's own relationships, so neither implements statsGenerator.

// lookupQuery (tag 1) dumps the entity with the given id, whichever manager
// holds it. Ids are disjoint across managers in well-formed datasets; on
// overlap the user wins, then flight, then reservation.
type lookupQuery struct{}

type lookupArgs struct {
	id string
}

func (lookupQuery) name() string { return "lookup" }

func (lookupQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 1 {
		return nil, argCountError("lookup", "1", len(fields))
	}
	return lookupArgs{id: fields[0]}, nil
}

func (q lookupQuery) execute(db *Database, _ queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(lookupArgs)
	if u := db.Users.GetByID(args.id); u != nil {
		w.BeginObject()
		w.WriteField("kind", "user")
		w.WriteField("id", u.ID)
		w.WriteField("name", u.Name)
		w.WriteField("flights", formatInt(int64(u.flights.len())))
		w.WriteField("reservations", formatInt(int64(u.reservations.len())))
		return nil
	}
	if f := db.Flights.GetByID(args.id); f != nil {
		w.BeginObject()
		w.WriteField("kind", "flight")
		w.WriteField("id", f.ID)
		w.WriteField("airline", f.Airline)
		w.WriteField("plane_model", f.PlaneModel)
		w.WriteField("origin", f.Origin.String())
		w.WriteField("destination", f.Destination.String())
		w.WriteField("schedule", f.Schedule.String())
		w.WriteField("actual", f.Actual.String())
		w.WriteField("seats", formatInt(int64(f.Seats)))
		w.WriteField("passengers", formatInt(int64(f.Passengers)))
		return nil
	}
	if r := db.Reservations.GetByID(args.id); r != nil {
		w.BeginObject()
		w.WriteField("kind", "reservation")
		w.WriteField("id", r.ID)
		w.WriteField("user", r.UserID)
		w.WriteField("hotel", r.HotelID)
		w.WriteField("hotel_name", r.HotelName)
		w.WriteField("begin", r.Begin.String())
		w.WriteField("end", r.End.String())
		w.WriteField("price_per_night", formatInt(r.PricePerNight))
		w.WriteField("total", formatInt(r.Revenue()))
		return nil
	}
	// Legitimate miss: no output for this instance.
	return errors.Newf(errors.ErrNotFound, "no entity with id %q", args.id)
}

// userItemsQuery (tag 2) lists a user's flights and/or reservations in
// chronological order. Relationship lists hold ids newest-first, so the
// resolved entities are sorted here.
type userItemsQuery struct{}

type userItemsArgs struct {
	userID       string
	flights      bool
	reservations bool
}

func (userItemsQuery) name() string { return "user-items" }

func (userItemsQuery) parseArguments(fields []string) (queryArgs, error) {
	switch len(fields) {
	case 1:
		return userItemsArgs{userID: fields[0], flights: true, reservations: true}, nil
	case 2:
		switch strings.ToLower(fields[1]) {
		case "flights":
			return userItemsArgs{userID: fields[0], flights: true}, nil
		case "reservations":
			return userItemsArgs{userID: fields[0], reservations: true}, nil
		}
		return nil, errors.Newf(errors.ErrQueryMalformed,
			"user-items: filter must be \"flights\" or \"reservations\", got %q", fields[1])
	default:
		return nil, argCountError("user-items", "1 or 2", len(fields))
	}
}

func (q userItemsQuery) execute(db *Database, _ queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(userItemsArgs)
	u := db.Users.GetByID(args.userID)
	if u == nil {
		return errors.Newf(errors.ErrUserNotFound, "user %q not found", args.userID)
	}

	if args.flights {
		flights := make([]*Flight, 0, u.flights.len())
		for _, id := range u.FlightIDs() {
			// Canceled flights are tombstoned and must not surface.
			if f := db.Flights.GetByID(id); f != nil {
				flights = append(flights, f)
			}
		}
		slices.SortFunc(flights, func(a, b *Flight) bool {
			if a.Schedule != b.Schedule {
				return a.Schedule < b.Schedule
			}
			return a.ID < b.ID
		})
		for _, f := range flights {
			w.BeginObject()
			w.WriteField("flight", f.ID)
			w.WriteField("schedule", f.Schedule.String())
			w.WriteField("origin", f.Origin.String())
			w.WriteField("destination", f.Destination.String())
		}
	}

	if args.reservations {
		reservations := make([]*Reservation, 0, u.reservations.len())
		for _, id := range u.ReservationIDs() {
			if r := db.Reservations.GetByID(id); r != nil {
				reservations = append(reservations, r)
			}
		}
		slices.SortFunc(reservations, func(a, b *Reservation) bool {
			if a.Begin != b.Begin {
				return a.Begin < b.Begin
			}
			return a.ID < b.ID
		})
		for _, r := range reservations {
			w.BeginObject()
			w.WriteField("reservation", r.ID)
			w.WriteField("hotel", r.HotelID)
			w.WriteField("begin", r.Begin.String())
			w.WriteField("end", r.End.String())
		}
	}
	return nil
}
