// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb_test

import (
	"testing"
	"time"

	traveldb "github.com/featurebasedb/traveldb"
	"github.com/featurebasedb/traveldb/errors"
)

func TestDatabase_AddReservation(t *testing.T) {
	db := traveldb.NewDatabase(traveldb.DatabaseOpts{})
	if err := db.AddUser(traveldb.User{ID: "ana42", Name: "Ana"}); err != nil {
		t.Fatal(err)
	}

	r := traveldb.Reservation{
		ID:            "Book0001",
		UserID:        "ana42",
		HotelID:       "HTL001",
		HotelName:     "Hotel Mundial",
		Begin:         traveldb.MakeDate(2024, time.March, 1),
		End:           traveldb.MakeDate(2024, time.March, 3),
		PricePerNight: 60,
	}
	if err := db.AddReservation(r); err != nil {
		t.Fatal(err)
	}

	// The reservation lands in its manager and on the user's list.
	if db.Reservations.GetByID("Book0001") == nil {
		t.Fatal("reservation not stored")
	}
	u := db.Users.GetByID("ana42")
	if ids := u.ReservationIDs(); len(ids) != 1 || ids[0] != "Book0001" {
		t.Fatalf("unexpected association %v", ids)
	}

	r.ID = "Book0002"
	r.UserID = "nobody"
	err := db.AddReservation(r)
	if !errors.Is(err, errors.ErrUserNotFound) {
		t.Fatalf("expected user-not-found, got %v", err)
	}
	if db.Reservations.GetByID("Book0002") != nil {
		t.Fatal("rejected reservation must not be stored")
	}
}

func TestDatabase_AddPassengers(t *testing.T) {
	db := traveldb.NewDatabase(traveldb.DatabaseOpts{})
	for _, id := range []string{"u1", "u2", "u3"} {
		if err := db.AddUser(traveldb.User{ID: id, Name: "User " + id}); err != nil {
			t.Fatal(err)
		}
	}
	f := newFlight("TP0001", "LIS")
	f.Seats = 2
	if err := db.AddFlight(f); err != nil {
		t.Fatal(err)
	}

	t.Run("UnknownFlight", func(t *testing.T) {
		err := db.AddPassengers("TP9999", []string{"u1"})
		if !errors.Is(err, errors.ErrFlightNotFound) {
			t.Fatalf("expected flight-not-found, got %v", err)
		}
	})

	t.Run("UnknownUserRejectsWholeBatch", func(t *testing.T) {
		err := db.AddPassengers("TP0001", []string{"u1", "ghost"})
		if !errors.Is(err, errors.ErrUserNotFound) {
			t.Fatalf("expected user-not-found, got %v", err)
		}
		if got := db.Flights.GetByID("TP0001").Passengers; got != 0 {
			t.Fatalf("rejected batch must not change passenger count, got %d", got)
		}
		if ids := db.Users.GetByID("u1").FlightIDs(); len(ids) != 0 {
			t.Fatalf("rejected batch must not associate flights, got %v", ids)
		}
	})

	t.Run("SeatsExceededRejectsWholeBatch", func(t *testing.T) {
		err := db.AddPassengers("TP0001", []string{"u1", "u2", "u3"})
		if !errors.Is(err, errors.ErrSeatsExceeded) {
			t.Fatalf("expected seats-exceeded, got %v", err)
		}
		if got := db.Flights.GetByID("TP0001").Passengers; got != 0 {
			t.Fatalf("rejected batch must not change passenger count, got %d", got)
		}
	})

	t.Run("Accepted", func(t *testing.T) {
		if err := db.AddPassengers("TP0001", []string{"u1", "u2"}); err != nil {
			t.Fatal(err)
		}
		if got := db.Flights.GetByID("TP0001").Passengers; got != 2 {
			t.Fatalf("expected 2 passengers, got %d", got)
		}
		for _, id := range []string{"u1", "u2"} {
			if ids := db.Users.GetByID(id).FlightIDs(); len(ids) != 1 || ids[0] != "TP0001" {
				t.Fatalf("user %s: unexpected flights %v", id, ids)
			}
		}
	})
}

func TestDatabase_InvalidateFlight(t *testing.T) {
	db := traveldb.NewDatabase(traveldb.DatabaseOpts{})
	if err := db.AddUser(traveldb.User{ID: "u1", Name: "One"}); err != nil {
		t.Fatal(err)
	}
	if err := db.AddFlight(newFlight("TP0001", "LIS")); err != nil {
		t.Fatal(err)
	}
	if err := db.AddPassengers("TP0001", []string{"u1"}); err != nil {
		t.Fatal(err)
	}

	db.InvalidateFlight("TP0001")
	if db.Flights.GetByID("TP0001") != nil {
		t.Fatal("canceled flight must not resolve")
	}
	// The user's list still holds the id; resolution filters it out.
	if ids := db.Users.GetByID("u1").FlightIDs(); len(ids) != 1 {
		t.Fatalf("association list should keep the id, got %v", ids)
	}
}
