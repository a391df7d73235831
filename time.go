// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"time"

	"github.com/featurebasedb/traveldb/errors"
)

// Layouts for the flat-file and query-argument date formats. Parser state is
// plain immutable values; nothing here is lazily initialized.
const (
	DateLayout     = "2006/01/02"
	DateTimeLayout = "2006/01/02 15:04"
)

// Date is a calendar day stored as days since the Unix epoch (UTC). Interval
// arithmetic (reservation nights) is plain subtraction.
type Date int32

// DateTime is a calendar minute stored as minutes since the Unix epoch (UTC).
// Departure delays are plain subtraction, in minutes.
type DateTime int64

const minutesPerDay = 24 * 60

// ParseDate parses a YYYY/MM/DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing date %q", s)
	}
	return Date(t.Unix() / 86400), nil
}

// MakeDate returns the Date for a year/month/day triple.
func MakeDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) Year() int        { return d.Time().Year() }
func (d Date) Month() time.Month { return d.Time().Month() }
func (d Date) Day() int         { return d.Time().Day() }

// ParseDateTime parses a "YYYY/MM/DD HH:MM" timestamp.
func ParseDateTime(s string) (DateTime, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing datetime %q", s)
	}
	return DateTime(t.Unix() / 60), nil
}

// MakeDateTime returns the DateTime for a calendar minute.
func MakeDateTime(year int, month time.Month, day, hour, min int) DateTime {
	return DateTime(time.Date(year, month, day, hour, min, 0, 0, time.UTC).Unix() / 60)
}

func (t DateTime) Time() time.Time {
	return time.Unix(int64(t)*60, 0).UTC()
}

func (t DateTime) String() string {
	return t.Time().Format(DateTimeLayout)
}

// Date truncates to the calendar day.
func (t DateTime) Date() Date {
	d := int64(t) / minutesPerDay
	if int64(t) < 0 && int64(t)%minutesPerDay != 0 {
		d--
	}
	return Date(d)
}

// AirportCode is a three-letter IATA code packed into a uint32 so flight
// records hold no airport strings at all.
type AirportCode uint32

// ParseAirportCode validates and packs a three-uppercase-letter code.
func ParseAirportCode(s string) (AirportCode, error) {
	if len(s) != 3 {
		return 0, errors.Errorf("airport code %q: must be 3 letters", s)
	}
	var c AirportCode
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return 0, errors.Errorf("airport code %q: must be uppercase letters", s)
		}
		c = c<<8 | AirportCode(s[i])
	}
	return c, nil
}

func (c AirportCode) String() string {
	return string([]byte{byte(c >> 16), byte(c >> 8), byte(c)})
}
