// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"strconv"
	"time"

	"github.com/featurebasedb/traveldb/errors"
	"golang.org/x/exp/slices"
)

// calendarQuery (tag 10) reports time-bucketed activity counts: with no
// arguments one bucket per year, with a year one bucket per month, with a
// year and month one bucket per day. Each non-empty bucket reports flights
// departed, passenger seats filled, distinct users flying, and reservations
// begun.
//
// Unique-passenger counting uses a per-filter bitmask per user, one bit per
// bucket, so a user flying twice in one bucket raises passengers twice but
// unique_passengers once.
type calendarQuery struct{}

// calendarArgs is the filter: zero year means bucket by year, zero month
// with a year means bucket by month.
type calendarArgs struct {
	year  int
	month time.Month
}

type calendarBucket struct {
	flights          int64
	passengers       int64
	uniquePassengers int64
	reservations     int64
}

type calendarAcc struct {
	buckets map[int]*calendarBucket
	seen    map[string]uint64 // userID -> bucket bitmask
}

type calendarStats map[calendarArgs]*calendarAcc

func (calendarQuery) name() string { return "calendar" }

func (calendarQuery) parseArguments(fields []string) (queryArgs, error) {
	switch len(fields) {
	case 0:
		return calendarArgs{}, nil
	case 1:
		year, err := strconv.Atoi(fields[0])
		if err != nil || year < 1 {
			return nil, errors.Newf(errors.ErrQueryMalformed, "calendar: bad year %q", fields[0])
		}
		return calendarArgs{year: year}, nil
	case 2:
		year, err := strconv.Atoi(fields[0])
		if err != nil || year < 1 {
			return nil, errors.Newf(errors.ErrQueryMalformed, "calendar: bad year %q", fields[0])
		}
		month, err := strconv.Atoi(fields[1])
		if err != nil || month < 1 || month > 12 {
			return nil, errors.Newf(errors.ErrQueryMalformed, "calendar: bad month %q", fields[1])
		}
		return calendarArgs{year: year, month: time.Month(month)}, nil
	default:
		return nil, argCountError("calendar", "0 to 2", len(fields))
	}
}

// bucketOf maps a date to the filter's bucket number, or -1 when the date
// falls outside the filter.
func (a calendarArgs) bucketOf(d Date) int {
	switch {
	case a.year == 0:
		return d.Year()
	case a.month == 0:
		if d.Year() != a.year {
			return -1
		}
		return int(d.Month())
	default:
		if d.Year() != a.year || d.Month() != a.month {
			return -1
		}
		return d.Day()
	}
}

// bitOf maps a bucket number to its bit in the per-user mask. Month and day
// buckets fit a uint64 directly; year buckets wrap at 64, which only
// collides for the same user flying in years 64 apart.
func (a calendarArgs) bitOf(bucket int) uint64 {
	return 1 << (uint(bucket) & 63)
}

func (calendarQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	acc := make(calendarStats)
	for _, a := range args {
		key := a.(calendarArgs)
		if _, ok := acc[key]; !ok {
			acc[key] = &calendarAcc{
				buckets: make(map[int]*calendarBucket),
				seen:    make(map[string]uint64),
			}
		}
	}

	bucket := func(a *calendarAcc, idx int) *calendarBucket {
		b, ok := a.buckets[idx]
		if !ok {
			b = &calendarBucket{}
			a.buckets[idx] = b
		}
		return b
	}

	// Flights departed, by scheduled date.
	db.Flights.Iterate(func(f *Flight) bool {
		d := f.Schedule.Date()
		for key, a := range acc {
			if idx := key.bucketOf(d); idx >= 0 {
				bucket(a, idx).flights++
			}
		}
		return true
	})

	// Passenger events live on the user side: each (user, flight)
	// association is one seat filled.
	db.Users.Iterate(func(u *User) bool {
		for _, id := range u.FlightIDs() {
			f := db.Flights.GetByID(id)
			if f == nil {
				continue
			}
			d := f.Schedule.Date()
			for key, a := range acc {
				idx := key.bucketOf(d)
				if idx < 0 {
					continue
				}
				b := bucket(a, idx)
				b.passengers++
				if bit := key.bitOf(idx); a.seen[u.ID]&bit == 0 {
					a.seen[u.ID] |= bit
					b.uniquePassengers++
				}
			}
		}
		return true
	})

	// Reservations begun.
	db.Reservations.Iterate(func(r *Reservation) bool {
		for key, a := range acc {
			if idx := key.bucketOf(r.Begin); idx >= 0 {
				bucket(a, idx).reservations++
			}
		}
		return true
	})
	return acc, nil
}

func (q calendarQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(calendarArgs)
	a, ok := stats.(calendarStats)[args]
	if !ok {
		return statsMismatch(q, inst)
	}

	label := "year"
	switch {
	case args.year != 0 && args.month != 0:
		label = "day"
	case args.year != 0:
		label = "month"
	}

	indexes := make([]int, 0, len(a.buckets))
	for idx := range a.buckets {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)

	for _, idx := range indexes {
		b := a.buckets[idx]
		w.BeginObject()
		w.WriteField(label, strconv.Itoa(idx))
		w.WriteField("flights", formatInt(b.flights))
		w.WriteField("passengers", formatInt(b.passengers))
		w.WriteField("unique_passengers", formatInt(b.uniquePassengers))
		w.WriteField("reservations", formatInt(b.reservations))
	}
	return nil
}
