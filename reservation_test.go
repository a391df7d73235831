// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb_test

import (
	"testing"
	"time"

	traveldb "github.com/featurebasedb/traveldb"
)

func TestReservation_Nights(t *testing.T) {
	r := traveldb.Reservation{
		Begin:         traveldb.MakeDate(2024, time.January, 10),
		End:           traveldb.MakeDate(2024, time.January, 13),
		PricePerNight: 50,
	}
	if r.Nights() != 3 {
		t.Fatalf("expected 3 nights, got %d", r.Nights())
	}
	if r.Revenue() != 150 {
		t.Fatalf("expected revenue 150, got %d", r.Revenue())
	}
}

// A stay over [Jan 10, Jan 13) filtered with [Jan 12, Jan 20] contributes
// exactly the night of Jan 12: the checkout day earns nothing.
func TestReservation_OverlapNights(t *testing.T) {
	r := traveldb.Reservation{
		Begin: traveldb.MakeDate(2024, time.January, 10),
		End:   traveldb.MakeDate(2024, time.January, 13),
	}
	tests := []struct {
		begin, end traveldb.Date
		want       int
	}{
		{traveldb.MakeDate(2024, time.January, 12), traveldb.MakeDate(2024, time.January, 20), 1},
		{traveldb.MakeDate(2024, time.January, 1), traveldb.MakeDate(2024, time.January, 31), 3},
		{traveldb.MakeDate(2024, time.January, 10), traveldb.MakeDate(2024, time.January, 10), 1},
		{traveldb.MakeDate(2024, time.January, 13), traveldb.MakeDate(2024, time.January, 20), 0},
		{traveldb.MakeDate(2024, time.January, 1), traveldb.MakeDate(2024, time.January, 9), 0},
		{traveldb.MakeDate(2024, time.January, 11), traveldb.MakeDate(2024, time.January, 11), 1},
	}
	for i, test := range tests {
		if got := r.OverlapNights(test.begin, test.end); got != test.want {
			t.Fatalf("test %d: overlap [%s, %s]: got %d, want %d",
				i, test.begin, test.end, got, test.want)
		}
	}
}

func TestReservations_AddGet(t *testing.T) {
	m := traveldb.NewReservations(nil, nil)
	_, err := m.Add(traveldb.Reservation{
		ID:            "Book0001",
		UserID:        "ana42",
		HotelID:       "HTL001",
		HotelName:     "Hotel Mundial",
		Begin:         traveldb.MakeDate(2024, time.February, 1),
		End:           traveldb.MakeDate(2024, time.February, 4),
		PricePerNight: 80,
		Rating:        4,
	})
	if err != nil {
		t.Fatal(err)
	}

	r := m.GetByID("Book0001")
	if r == nil || r.HotelName != "Hotel Mundial" || r.Rating != 4 {
		t.Fatalf("unexpected reservation %+v", r)
	}

	m.Invalidate("Book0001")
	if m.GetByID("Book0001") != nil {
		t.Fatal("invalidated reservation must not resolve")
	}
}
