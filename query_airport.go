// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"strconv"

	"github.com/featurebasedb/traveldb/errors"
	"golang.org/x/exp/slices"
)

// airportFlightsQuery (tag 5) lists the flights departing an airport,
// earliest scheduled departure first, id ascending between equal times.
type airportFlightsQuery struct{}

type airportFlightsArgs struct {
	origin AirportCode
}

type airportFlightsStats map[AirportCode][]*Flight

func (airportFlightsQuery) name() string { return "airport-flights" }

func (airportFlightsQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 1 {
		return nil, argCountError("airport-flights", "1", len(fields))
	}
	code, err := ParseAirportCode(fields[0])
	if err != nil {
		return nil, errors.Wrap(err, "airport-flights")
	}
	return airportFlightsArgs{origin: code}, nil
}

func (airportFlightsQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	acc := make(airportFlightsStats)
	for _, a := range args {
		origin := a.(airportFlightsArgs).origin
		if _, ok := acc[origin]; !ok {
			acc[origin] = nil
		}
	}
	db.Flights.Iterate(func(f *Flight) bool {
		if list, ok := acc[f.Origin]; ok {
			acc[f.Origin] = append(list, f)
		}
		return true
	})
	for _, list := range acc {
		slices.SortFunc(list, func(a, b *Flight) bool {
			if a.Schedule != b.Schedule {
				return a.Schedule < b.Schedule
			}
			return a.ID < b.ID
		})
	}
	return acc, nil
}

func (q airportFlightsQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(airportFlightsArgs)
	list, ok := stats.(airportFlightsStats)[args.origin]
	if !ok {
		return statsMismatch(q, inst)
	}
	for _, f := range list {
		w.BeginObject()
		w.WriteField("flight", f.ID)
		w.WriteField("destination", f.Destination.String())
		w.WriteField("schedule", f.Schedule.String())
	}
	return nil
}

// topAirportsQuery (tag 6) ranks origin airports by passengers flown in a
// year. The scan and the ranking are keyed by year alone; the instance's N
// only slices the materialized ranking at execute time, so instances asking
// about the same year with different N share one accumulator.
type topAirportsQuery struct{}

type topAirportsArgs struct {
	year int
	n    int
}

type airportCount struct {
	code       AirportCode
	passengers int64
}

type topAirportsStats map[int][]airportCount

func (topAirportsQuery) name() string { return "top-airports" }

func (topAirportsQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 2 {
		return nil, argCountError("top-airports", "2", len(fields))
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, errors.Newf(errors.ErrQueryMalformed, "top-airports: bad year %q", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return nil, errors.Newf(errors.ErrQueryMalformed, "top-airports: bad count %q", fields[1])
	}
	return topAirportsArgs{year: year, n: n}, nil
}

func (topAirportsQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	perYear := make(map[int]map[AirportCode]int64)
	for _, a := range args {
		year := a.(topAirportsArgs).year
		if _, ok := perYear[year]; !ok {
			perYear[year] = make(map[AirportCode]int64)
		}
	}
	db.Flights.Iterate(func(f *Flight) bool {
		if counts, ok := perYear[f.Schedule.Date().Year()]; ok {
			counts[f.Origin] += int64(f.Passengers)
		}
		return true
	})

	// Materialize each year's ranking once: passengers descending, code
	// ascending between ties.
	acc := make(topAirportsStats, len(perYear))
	for year, counts := range perYear {
		ranking := make([]airportCount, 0, len(counts))
		for code, passengers := range counts {
			ranking = append(ranking, airportCount{code: code, passengers: passengers})
		}
		slices.SortFunc(ranking, func(a, b airportCount) bool {
			if a.passengers != b.passengers {
				return a.passengers > b.passengers
			}
			return a.code < b.code
		})
		acc[year] = ranking
	}
	return acc, nil
}

func (q topAirportsQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(topAirportsArgs)
	ranking, ok := stats.(topAirportsStats)[args.year]
	if !ok {
		return statsMismatch(q, inst)
	}
	n := args.n
	if n > len(ranking) {
		// Asking for more airports than flew that year returns them all.
		n = len(ranking)
	}
	for _, entry := range ranking[:n] {
		w.BeginObject()
		w.WriteField("airport", entry.code.String())
		w.WriteField("passengers", formatInt(entry.passengers))
	}
	return nil
}

// delayMedianQuery (tag 7) reports the median departure delay, in minutes,
// of an airport's flights.
type delayMedianQuery struct{}

type delayMedianArgs struct {
	origin AirportCode
}

type delayAcc struct {
	delays []int64
	median float64
}

type delayMedianStats map[AirportCode]*delayAcc

func (delayMedianQuery) name() string { return "delay-median" }

func (delayMedianQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 1 {
		return nil, argCountError("delay-median", "1", len(fields))
	}
	code, err := ParseAirportCode(fields[0])
	if err != nil {
		return nil, errors.Wrap(err, "delay-median")
	}
	return delayMedianArgs{origin: code}, nil
}

func (delayMedianQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	acc := make(delayMedianStats)
	for _, a := range args {
		origin := a.(delayMedianArgs).origin
		if _, ok := acc[origin]; !ok {
			acc[origin] = &delayAcc{}
		}
	}
	db.Flights.Iterate(func(f *Flight) bool {
		if a, ok := acc[f.Origin]; ok {
			a.delays = append(a.delays, f.Delay())
		}
		return true
	})
	// One sort per airport after the scan; execute just reads the middle.
	for _, a := range acc {
		slices.Sort(a.delays)
		n := len(a.delays)
		switch {
		case n == 0:
		case n%2 == 1:
			a.median = float64(a.delays[n/2])
		default:
			a.median = float64(a.delays[n/2-1]+a.delays[n/2]) / 2
		}
	}
	return acc, nil
}

func (q delayMedianQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(delayMedianArgs)
	a, ok := stats.(delayMedianStats)[args.origin]
	if !ok {
		return statsMismatch(q, inst)
	}
	w.BeginObject()
	w.WriteField("airport", args.origin.String())
	if len(a.delays) == 0 {
		w.WriteField("median", "none")
	} else {
		w.WriteField("median", strconv.FormatFloat(a.median, 'f', -1, 64))
	}
	w.WriteField("flights", formatInt(int64(len(a.delays))))
	return nil
}
