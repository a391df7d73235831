// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package loader reads the flat-file travel dataset into a Database. Each
// file is semicolon-separated, one row per entity. Rows that fail
// validation, or that the database rejects (unknown references, seat
// overflow), go to an error sink as one diagnostic line each and do not
// abort the load; the storage layer is handed only accepted rows.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	traveldb "github.com/featurebasedb/traveldb"
	"github.com/featurebasedb/traveldb/errors"
	"github.com/featurebasedb/traveldb/logger"
)

// Dataset file names inside the data directory.
const (
	UsersFile        = "users.csv"
	FlightsFile      = "flights.csv"
	ReservationsFile = "reservations.csv"
	PassengersFile   = "passengers.csv"
)

// statusCanceled in a flight row's trailing status column invalidates the
// flight right after insertion, preserving its passengers' references.
const statusCanceled = "CANCELED"

// Loader loads dataset files into a database.
type Loader struct {
	db      *traveldb.Database
	logger  logger.Logger
	errSink io.Writer

	rejected int
	loaded   int
}

// Opts configures a Loader. A nil ErrSink discards diagnostics.
type Opts struct {
	Logger  logger.Logger
	ErrSink io.Writer
}

// New returns a loader into db.
func New(db *traveldb.Database, opts Opts) *Loader {
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger
	}
	sink := opts.ErrSink
	if sink == nil {
		sink = io.Discard
	}
	return &Loader{db: db, logger: log, errSink: sink}
}

// Loaded returns the number of accepted rows.
func (l *Loader) Loaded() int { return l.loaded }

// Rejected returns the number of rejected rows.
func (l *Loader) Rejected() int { return l.rejected }

// LoadDir loads the four dataset files from dir in dependency order: users
// and flights first, then the rows that reference them.
func (l *Loader) LoadDir(dir string) error {
	steps := []struct {
		file string
		load func(name string, r io.Reader) error
	}{
		{UsersFile, l.LoadUsers},
		{FlightsFile, l.LoadFlights},
		{ReservationsFile, l.LoadReservations},
		{PassengersFile, l.LoadPassengers},
	}
	for _, step := range steps {
		f, err := os.Open(filepath.Join(dir, step.file))
		if err != nil {
			return errors.Wrapf(err, "opening %s", step.file)
		}
		err = step.load(step.file, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	l.logger.Infof("dataset loaded: %d rows accepted, %d rejected", l.loaded, l.rejected)
	return nil
}

// LoadUsers reads user rows: id;name.
func (l *Loader) LoadUsers(name string, r io.Reader) error {
	return l.readRows(name, r, func(row []string) error {
		if len(row) != 2 {
			return errors.Errorf("want 2 fields, got %d", len(row))
		}
		if row[0] == "" || row[1] == "" {
			return errors.Errorf("empty id or name")
		}
		return l.db.AddUser(traveldb.User{ID: row[0], Name: row[1]})
	})
}

// LoadFlights reads flight rows:
// id;airline;plane_model;origin;destination;schedule;actual;seats[;CANCELED].
func (l *Loader) LoadFlights(name string, r io.Reader) error {
	return l.readRows(name, r, func(row []string) error {
		if len(row) != 8 && len(row) != 9 {
			return errors.Errorf("want 8 or 9 fields, got %d", len(row))
		}
		if row[0] == "" {
			return errors.Errorf("empty flight id")
		}
		origin, err := traveldb.ParseAirportCode(row[3])
		if err != nil {
			return err
		}
		destination, err := traveldb.ParseAirportCode(row[4])
		if err != nil {
			return err
		}
		schedule, err := traveldb.ParseDateTime(row[5])
		if err != nil {
			return err
		}
		actual, err := traveldb.ParseDateTime(row[6])
		if err != nil {
			return err
		}
		seats, err := strconv.Atoi(row[7])
		if err != nil || seats < 1 {
			return errors.Errorf("bad seat count %q", row[7])
		}
		canceled := len(row) == 9
		if canceled && row[8] != statusCanceled {
			return errors.Errorf("bad status %q", row[8])
		}
		err = l.db.AddFlight(traveldb.Flight{
			ID:          row[0],
			Airline:     row[1],
			PlaneModel:  row[2],
			Origin:      origin,
			Destination: destination,
			Schedule:    schedule,
			Actual:      actual,
			Seats:       int32(seats),
		})
		if err != nil {
			return err
		}
		if canceled {
			l.db.InvalidateFlight(row[0])
		}
		return nil
	})
}

// LoadReservations reads reservation rows:
// id;user_id;hotel_id;hotel_name;begin;end;price_per_night;rating.
// An empty rating field means unrated.
func (l *Loader) LoadReservations(name string, r io.Reader) error {
	return l.readRows(name, r, func(row []string) error {
		if len(row) != 8 {
			return errors.Errorf("want 8 fields, got %d", len(row))
		}
		if row[0] == "" {
			return errors.Errorf("empty reservation id")
		}
		begin, err := traveldb.ParseDate(row[4])
		if err != nil {
			return err
		}
		end, err := traveldb.ParseDate(row[5])
		if err != nil {
			return err
		}
		if end <= begin {
			return errors.Errorf("stay %s..%s has no nights", row[4], row[5])
		}
		price, err := strconv.ParseInt(row[6], 10, 64)
		if err != nil || price < 0 {
			return errors.Errorf("bad price %q", row[6])
		}
		rating := 0
		if row[7] != "" {
			rating, err = strconv.Atoi(row[7])
			if err != nil || rating < 1 || rating > 5 {
				return errors.Errorf("bad rating %q", row[7])
			}
		}
		return l.db.AddReservation(traveldb.Reservation{
			ID:            row[0],
			UserID:        row[1],
			HotelID:       row[2],
			HotelName:     row[3],
			Begin:         begin,
			End:           end,
			PricePerNight: price,
			Rating:        int8(rating),
		})
	})
}

// LoadPassengers reads passenger rows: flight_id;user_id;user_id;... Each
// row registers its whole passenger list or none of it.
func (l *Loader) LoadPassengers(name string, r io.Reader) error {
	return l.readRows(name, r, func(row []string) error {
		if len(row) < 2 {
			return errors.Errorf("want a flight id and at least one user id, got %d fields", len(row))
		}
		return l.db.AddPassengers(row[0], row[1:])
	})
}

// readRows applies accept to every row, diverting per-row failures to the
// error sink. Only read errors abort a file.
func (l *Loader) readRows(name string, r io.Reader, accept func(row []string) error) error {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "reading %s", name)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if err := accept(row); err != nil {
			fmt.Fprintf(l.errSink, "%s:%d: %v\n", name, line, err)
			l.rejected++
			continue
		}
		l.loaded++
	}
}
