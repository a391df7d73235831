// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	traveldb "github.com/featurebasedb/traveldb"
	"github.com/featurebasedb/traveldb/loader"
)

func newLoader(t *testing.T) (*traveldb.Database, *loader.Loader, *bytes.Buffer) {
	t.Helper()
	db := traveldb.NewDatabase(traveldb.DatabaseOpts{})
	var sink bytes.Buffer
	return db, loader.New(db, loader.Opts{ErrSink: &sink}), &sink
}

func TestLoadUsers(t *testing.T) {
	db, l, sink := newLoader(t)
	input := strings.Join([]string{
		"u1;Ana Silva",
		"u2;Bruno Costa",
		"u3",             // missing name
		";No Id",         // empty id
		"",               // blank line, not a row
		"u4;Carlos Reis",
	}, "\n")
	if err := l.LoadUsers(loader.UsersFile, strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}

	if got, want := l.Loaded(), 3; got != want {
		t.Fatalf("loaded %d rows, want %d", got, want)
	}
	if got, want := l.Rejected(), 2; got != want {
		t.Fatalf("rejected %d rows, want %d", got, want)
	}
	if db.Users.GetByID("u4") == nil {
		t.Fatal("u4 missing after load")
	}
	diags := sink.String()
	for _, frag := range []string{"users.csv:3", "users.csv:4"} {
		if !strings.Contains(diags, frag) {
			t.Fatalf("missing %q in diagnostics:\n%s", frag, diags)
		}
	}
}

func TestLoadFlights(t *testing.T) {
	db, l, sink := newLoader(t)
	input := strings.Join([]string{
		"TP0001;TAP Air Portugal;A320neo;LIS;ZRH;2024/03/01 09:00;2024/03/01 09:10;180",
		"TP0002;TAP Air Portugal;A321;LIS;MAD;2024/03/01 12:00;2024/03/01 12:30;200;CANCELED",
		"TP0003;TAP Air Portugal;E195;XXXX;LIS;2024/03/02 08:00;2024/03/02 07:55;120", // bad airport
		"TP0004;TAP Air Portugal;E195;OPO;LIS;yesterday;2024/03/02 07:55;120",          // bad schedule
		"TP0005;TAP Air Portugal;E195;OPO;LIS;2024/03/02 08:00;2024/03/02 07:55;0",     // no seats
		"TP0006;TAP Air Portugal;E195;OPO;LIS;2024/03/02 08:00;2024/03/02 07:55;120;DELAYED", // bad status
	}, "\n")
	if err := l.LoadFlights(loader.FlightsFile, strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}

	if got, want := l.Loaded(), 2; got != want {
		t.Fatalf("loaded %d rows, want %d: %s", got, want, sink.String())
	}
	if got, want := l.Rejected(), 4; got != want {
		t.Fatalf("rejected %d rows, want %d", got, want)
	}
	if db.Flights.GetByID("TP0001") == nil {
		t.Fatal("TP0001 missing after load")
	}
	// The canceled flight counts as loaded but must not resolve.
	if db.Flights.GetByID("TP0002") != nil {
		t.Fatal("canceled TP0002 must not resolve")
	}
}

func TestLoadReservations(t *testing.T) {
	db, l, sink := newLoader(t)
	if err := l.LoadUsers(loader.UsersFile, strings.NewReader("u1;Ana Silva\n")); err != nil {
		t.Fatal(err)
	}
	input := strings.Join([]string{
		"R1;u1;HTL001;Hotel Mundial;2024/03/01;2024/03/04;100;4",
		"R2;u1;HTL002;Pensao Central;2024/03/02;2024/03/05;50;", // unrated
		"R3;u1;HTL001;Hotel Mundial;2024/03/04;2024/03/04;100;4", // zero nights
		"R4;u1;HTL001;Hotel Mundial;2024/03/01;2024/03/04;100;9", // rating out of range
		"R5;ghost;HTL001;Hotel Mundial;2024/03/01;2024/03/04;100;4", // unknown user
	}, "\n")
	if err := l.LoadReservations(loader.ReservationsFile, strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}

	if got, want := l.Loaded(), 3; got != want { // 1 user + 2 reservations
		t.Fatalf("loaded %d rows, want %d: %s", got, want, sink.String())
	}
	if r := db.Reservations.GetByID("R2"); r == nil || r.Rating != 0 {
		t.Fatalf("unrated reservation mishandled: %+v", r)
	}
	if db.Reservations.GetByID("R5") != nil {
		t.Fatal("reservation for unknown user must be rejected")
	}
	if !strings.Contains(sink.String(), "reservations.csv:3") {
		t.Fatalf("missing zero-nights diagnostic:\n%s", sink.String())
	}
}

func TestLoadPassengers(t *testing.T) {
	db, l, sink := newLoader(t)
	if err := l.LoadUsers(loader.UsersFile, strings.NewReader("u1;Ana\nu2;Bruno\n")); err != nil {
		t.Fatal(err)
	}
	flights := "TP0001;TAP Air Portugal;A320neo;LIS;ZRH;2024/03/01 09:00;2024/03/01 09:10;2\n"
	if err := l.LoadFlights(loader.FlightsFile, strings.NewReader(flights)); err != nil {
		t.Fatal(err)
	}

	input := strings.Join([]string{
		"TP0001;u1;ghost", // one unknown user rejects the whole row
		"TP0001;u1;u2",
		"TP0001;u2", // seats already full
		"TP0001",    // no user ids
	}, "\n")
	if err := l.LoadPassengers(loader.PassengersFile, strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}

	if got := db.Flights.GetByID("TP0001").Passengers; got != 2 {
		t.Fatalf("expected 2 passengers, got %d: %s", got, sink.String())
	}
	for _, frag := range []string{"passengers.csv:1", "passengers.csv:3", "passengers.csv:4"} {
		if !strings.Contains(sink.String(), frag) {
			t.Fatalf("missing %q in diagnostics:\n%s", frag, sink.String())
		}
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		loader.UsersFile:        "u1;Ana Silva\nu2;Bruno Costa\n",
		loader.FlightsFile:      "TP0001;TAP Air Portugal;A320neo;LIS;ZRH;2024/03/01 09:00;2024/03/01 09:10;180\n",
		loader.ReservationsFile: "R1;u1;HTL001;Hotel Mundial;2024/03/01;2024/03/04;100;4\n",
		loader.PassengersFile:   "TP0001;u1;u2\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	db, l, _ := newLoader(t)
	if err := l.LoadDir(dir); err != nil {
		t.Fatal(err)
	}
	if got, want := l.Loaded(), 5; got != want {
		t.Fatalf("loaded %d rows, want %d", got, want)
	}
	if got := db.Flights.GetByID("TP0001").Passengers; got != 2 {
		t.Fatalf("expected 2 passengers, got %d", got)
	}

	// A directory missing a dataset file is a load failure, not a skip.
	if err := loader.New(traveldb.NewDatabase(traveldb.DatabaseOpts{}), loader.Opts{}).LoadDir(t.TempDir()); err == nil {
		t.Fatal("expected error for missing dataset files")
	}
}
