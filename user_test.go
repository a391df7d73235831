// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb_test

import (
	"strings"
	"testing"

	traveldb "github.com/featurebasedb/traveldb"
	"github.com/featurebasedb/traveldb/logger"
)

func TestUsers_AddGet(t *testing.T) {
	m := traveldb.NewUsers(nil, nil)
	if _, err := m.Add(traveldb.User{ID: "ana42", Name: "Ana Silva"}); err != nil {
		t.Fatal(err)
	}

	u := m.GetByID("ana42")
	if u == nil || u.Name != "Ana Silva" {
		t.Fatalf("unexpected user %+v", u)
	}
	if m.GetByID("bob") != nil {
		t.Fatal("expected nil for unknown id")
	}
}

// The manager deep-copies strings on Add; caller-owned memory can be
// recycled afterwards.
func TestUsers_AddCopiesStrings(t *testing.T) {
	m := traveldb.NewUsers(nil, nil)
	raw := []byte("carlos7")
	if _, err := m.Add(traveldb.User{ID: string(raw), Name: "Carlos"}); err != nil {
		t.Fatal(err)
	}
	raw[0] = 'X'
	if m.GetByID("carlos7") == nil {
		t.Fatal("stored id must not alias caller memory")
	}
}

func TestUsers_DuplicateID(t *testing.T) {
	log := logger.NewBufferLogger()
	m := traveldb.NewUsers(log, nil)
	if _, err := m.Add(traveldb.User{ID: "dup", Name: "First"}); err != nil {
		t.Fatal(err)
	}
	// Not fatal: the later record wins and a diagnostic is logged.
	if _, err := m.Add(traveldb.User{ID: "dup", Name: "Second"}); err != nil {
		t.Fatal(err)
	}

	u := m.GetByID("dup")
	if u == nil || u.Name != "Second" {
		t.Fatalf("expected the later record, got %+v", u)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 live user, got %d", m.Len())
	}
	count := 0
	m.Iterate(func(*traveldb.User) bool { count++; return true })
	if count != 1 {
		t.Fatalf("displaced record must not be iterated, saw %d users", count)
	}

	buf, err := log.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(buf), "duplicate user id") {
		t.Fatalf("expected duplicate diagnostic, got %q", buf)
	}
}

func TestUsers_Associations(t *testing.T) {
	m := traveldb.NewUsers(nil, nil)
	if _, err := m.Add(traveldb.User{ID: "u1", Name: "One"}); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"TP0001", "TP0002", "TP0003"} {
		if err := m.AssociateFlight("u1", id); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.AssociateReservation("u1", "Book0001"); err != nil {
		t.Fatal(err)
	}
	if err := m.AssociateFlight("nobody", "TP0001"); err == nil {
		t.Fatal("expected error for unknown user")
	}

	u := m.GetByID("u1")
	got := u.FlightIDs()
	// Lists are built by prepend: newest first.
	want := []string{"TP0003", "TP0002", "TP0001"}
	if len(got) != len(want) {
		t.Fatalf("expected %d flights, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("flight order: got %v, want %v", got, want)
		}
	}
	if rs := u.ReservationIDs(); len(rs) != 1 || rs[0] != "Book0001" {
		t.Fatalf("unexpected reservations %v", rs)
	}
}
