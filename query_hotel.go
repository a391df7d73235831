// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// The hotel query kinds (rating, reservation listing, revenue) all follow
// the shared statistics shape: deduplicate the batch's filters, scan the
// reservation manager once updating one accumulator per distinct filter,
// post-process each accumulator once, then answer every instance by keyed
// lookup.
package traveldb

import (
	"github.com/featurebasedb/traveldb/errors"
	"golang.org/x/exp/slices"
)

// hotelRatingQuery (tag 3) reports the average rating of a hotel's rated
// reservations.
type hotelRatingQuery struct{}

type hotelRatingArgs struct {
	hotelID string
}

type ratingAcc struct {
	sum   int64
	count int64
}

type hotelRatingStats map[string]*ratingAcc

func (hotelRatingQuery) name() string { return "hotel-rating" }

func (hotelRatingQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 1 {
		return nil, argCountError("hotel-rating", "1", len(fields))
	}
	return hotelRatingArgs{hotelID: fields[0]}, nil
}

func (hotelRatingQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	// Only hotels some instance asks about are tracked, bounding memory by
	// query fan-out rather than dataset size.
	acc := make(hotelRatingStats)
	for _, a := range args {
		acc[a.(hotelRatingArgs).hotelID] = &ratingAcc{}
	}
	db.Reservations.Iterate(func(r *Reservation) bool {
		if a, ok := acc[r.HotelID]; ok && r.Rating > 0 {
			a.sum += int64(r.Rating)
			a.count++
		}
		return true
	})
	return acc, nil
}

func (q hotelRatingQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(hotelRatingArgs)
	a, ok := stats.(hotelRatingStats)[args.hotelID]
	if !ok {
		return statsMismatch(q, inst)
	}
	w.BeginObject()
	w.WriteField("hotel", args.hotelID)
	if a.count == 0 {
		// Defined empty result for a hotel nobody rated (or nobody booked).
		w.WriteField("rating", "none")
	} else {
		w.WriteField("rating", formatMean(a.sum, a.count))
	}
	w.WriteField("ratings", formatInt(a.count))
	return nil
}

// hotelReservationsQuery (tag 4) lists a hotel's reservations, most recent
// begin date first, id ascending between equal dates.
type hotelReservationsQuery struct{}

type hotelReservationsArgs struct {
	hotelID string
}

type hotelReservationsStats map[string][]*Reservation

func (hotelReservationsQuery) name() string { return "hotel-reservations" }

func (hotelReservationsQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 1 {
		return nil, argCountError("hotel-reservations", "1", len(fields))
	}
	return hotelReservationsArgs{hotelID: fields[0]}, nil
}

func (hotelReservationsQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	acc := make(hotelReservationsStats)
	for _, a := range args {
		hotelID := a.(hotelReservationsArgs).hotelID
		if _, ok := acc[hotelID]; !ok {
			acc[hotelID] = nil
		}
	}
	db.Reservations.Iterate(func(r *Reservation) bool {
		if list, ok := acc[r.HotelID]; ok {
			acc[r.HotelID] = append(list, r)
		}
		return true
	})
	// Sort once per accumulator, never per execute.
	for _, list := range acc {
		slices.SortFunc(list, func(a, b *Reservation) bool {
			if a.Begin != b.Begin {
				return a.Begin > b.Begin
			}
			return a.ID < b.ID
		})
	}
	return acc, nil
}

func (q hotelReservationsQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(hotelReservationsArgs)
	list, ok := stats.(hotelReservationsStats)[args.hotelID]
	if !ok {
		return statsMismatch(q, inst)
	}
	for _, r := range list {
		w.BeginObject()
		w.WriteField("reservation", r.ID)
		w.WriteField("user", r.UserID)
		w.WriteField("begin", r.Begin.String())
		w.WriteField("end", r.End.String())
		w.WriteField("total", formatInt(r.Revenue()))
	}
	return nil
}

// hotelRevenueQuery (tag 8) sums a hotel's revenue over an inclusive date
// range. A reservation contributes price_per_night per night of overlap
// between its [begin, end) stay and the filter range; the checkout day
// earns nothing.
type hotelRevenueQuery struct{}

type hotelRevenueArgs struct {
	hotelID string
	begin   Date
	end     Date
}

// The accumulator is keyed by the full filter tuple, not just the hotel:
// two instances with the same hotel but different ranges are distinct
// filters, while identical tuples share one running sum.
type hotelRevenueStats map[hotelRevenueArgs]int64

func (hotelRevenueQuery) name() string { return "hotel-revenue" }

func (hotelRevenueQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 3 {
		return nil, argCountError("hotel-revenue", "3", len(fields))
	}
	begin, err := ParseDate(fields[1])
	if err != nil {
		return nil, errors.Wrap(err, "hotel-revenue begin")
	}
	end, err := ParseDate(fields[2])
	if err != nil {
		return nil, errors.Wrap(err, "hotel-revenue end")
	}
	if end < begin {
		return nil, errors.Newf(errors.ErrQueryMalformed,
			"hotel-revenue: range end %s before begin %s", end, begin)
	}
	return hotelRevenueArgs{hotelID: fields[0], begin: begin, end: end}, nil
}

func (hotelRevenueQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	acc := make(hotelRevenueStats)
	for _, a := range args {
		acc[a.(hotelRevenueArgs)] = 0
	}
	db.Reservations.Iterate(func(r *Reservation) bool {
		for key := range acc {
			if key.hotelID != r.HotelID {
				continue
			}
			if nights := r.OverlapNights(key.begin, key.end); nights > 0 {
				acc[key] += r.PricePerNight * int64(nights)
			}
		}
		return true
	})
	return acc, nil
}

func (q hotelRevenueQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(hotelRevenueArgs)
	revenue, ok := stats.(hotelRevenueStats)[args]
	if !ok {
		return statsMismatch(q, inst)
	}
	w.BeginObject()
	w.WriteField("hotel", args.hotelID)
	w.WriteField("begin", args.begin.String())
	w.WriteField("end", args.end.String())
	w.WriteField("revenue", formatInt(revenue))
	return nil
}
