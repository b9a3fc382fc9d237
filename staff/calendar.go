package staff

import (
	"fmt"
	"time"
)

// =============================================================================
// TIMESTAMP - Seconds since the epoch, read in the local time zone
// =============================================================================

// Timestamp is a point in time in whole seconds since the Unix epoch.
// Calendar fields are always derived with the host's local time zone.
type Timestamp int64

// TimestampLayout is the textual form used by ParseTimestamp and String.
const TimestampLayout = "2006-01-02T15:04:05"

const dateLayout = "2006-01-02"

// Calendar field bounds.
const (
	BaseYear  = 1900
	MinMonth  = 1
	MaxMonth  = 12
	MinDay    = 1
	MaxDay    = 31
	MinHour   = 0
	MaxHour   = 23
	MinMinute = 0
	MaxMinute = 59
	MinSecond = 0
	MaxSecond = 59

	maxCalendarYear = 9999
)

// CalendarFields is a local civil date and time.
type CalendarFields struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

func (f CalendarFields) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second)
}

// Time returns the timestamp as a local time.Time.
func (ts Timestamp) Time() time.Time { return time.Unix(int64(ts), 0).In(time.Local) }

func (ts Timestamp) String() string { return ts.Time().Format(TimestampLayout) }

// TimestampOf truncates t to whole seconds.
func TimestampOf(t time.Time) Timestamp { return Timestamp(t.Unix()) }

// =============================================================================
// CONVERSIONS
// =============================================================================

// MakeTimestamp builds a timestamp from local calendar fields.
//
// Each field is range checked first (RangeError). The fields must then name
// an existing local instant at or after the epoch, otherwise the result is
// ErrCalendarConversion: February 30 or a skipped daylight-saving hour are
// rejected rather than normalized.
func MakeTimestamp(year, month, day, hour, minute, second int) (Timestamp, error) {
	if year < BaseYear {
		return 0, lowerBoundError("year", year, BaseYear)
	}
	if month < MinMonth || month > MaxMonth {
		return 0, rangeError("month", month, MinMonth, MaxMonth)
	}
	if day < MinDay || day > MaxDay {
		return 0, rangeError("day", day, MinDay, MaxDay)
	}
	if hour < MinHour || hour > MaxHour {
		return 0, rangeError("hour", hour, MinHour, MaxHour)
	}
	if minute < MinMinute || minute > MaxMinute {
		return 0, rangeError("minute", minute, MinMinute, MaxMinute)
	}
	if second < MinSecond || second > MaxSecond {
		return 0, rangeError("second", second, MinSecond, MaxSecond)
	}

	want := CalendarFields{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}
	if year > maxCalendarYear {
		return 0, fmt.Errorf("%w: %s is beyond the supported calendar", ErrCalendarConversion, want)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
	if fieldsOf(t) != want {
		return 0, fmt.Errorf("%w: %s does not exist in local time", ErrCalendarConversion, want)
	}
	if t.Unix() < 0 {
		return 0, fmt.Errorf("%w: %s precedes the epoch", ErrCalendarConversion, want)
	}
	return TimestampOf(t), nil
}

// ToCalendarFields decomposes ts into local calendar fields.
// It is not safe for concurrent use together with changes to time.Local.
func ToCalendarFields(ts Timestamp) (CalendarFields, error) {
	t := ts.Time()
	if t.Year() < 1 || t.Year() > maxCalendarYear {
		return CalendarFields{}, fmt.Errorf("%w: timestamp %d is outside the supported calendar",
			ErrCalendarConversion, int64(ts))
	}
	return fieldsOf(t), nil
}

func fieldsOf(t time.Time) CalendarFields {
	return CalendarFields{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// ParseTimestamp reads an RFC 3339 instant with its UTC offset, or
// "2006-01-02T15:04:05", "2006-01-02 15:04:05" or "2006-01-02" as local
// time validated through MakeTimestamp. Only the offset form names an hour
// repeated by a daylight-saving fall-back unambiguously.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return timestampAt(t)
	}
	for _, layout := range []string{TimestampLayout, "2006-01-02 15:04:05", dateLayout} {
		// Parsed in UTC so the fields come back exactly as written.
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		f := fieldsOf(t)
		return MakeTimestamp(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second)
	}
	return 0, fmt.Errorf("%w: %q is not a timestamp (want %s)", ErrInvalidArgument, s, TimestampLayout)
}

// timestampAt applies the bounds of MakeTimestamp to an exact instant.
func timestampAt(t time.Time) (Timestamp, error) {
	if year := t.In(time.Local).Year(); year < BaseYear {
		return 0, lowerBoundError("year", year, BaseYear)
	}
	if t.Unix() < 0 {
		return 0, fmt.Errorf("%w: %s precedes the epoch", ErrCalendarConversion, t.Format(time.RFC3339))
	}
	return TimestampOf(t), nil
}

// FormatInstant renders ts in local time with its UTC offset, the form
// ParseTimestamp reads back to the same instant.
func FormatInstant(ts Timestamp) string {
	return ts.Time().Format(time.RFC3339)
}

// =============================================================================
// WORK YEARS
// =============================================================================

// WholeWorkYears counts the completed years between start and end.
//
// A year completes only once the anniversary day has passed: hired on
// 2015-10-15, the count is 3 on 2019-10-15 and 4 on 2019-10-16. Time of day
// is ignored. Within one calendar year the result is always 0.
func WholeWorkYears(start, end Timestamp) (int, error) {
	if end < start {
		return 0, ErrEndBeforeStart
	}

	from, err := ToCalendarFields(start)
	if err != nil {
		return 0, err
	}
	to, err := ToCalendarFields(end)
	if err != nil {
		return 0, err
	}

	years := to.Year - from.Year
	if years > 0 && !anniversaryPassed(from, to) {
		years--
	}
	return years, nil
}

func anniversaryPassed(from, to CalendarFields) bool {
	if to.Month != from.Month {
		return to.Month > from.Month
	}
	return to.Day > from.Day
}
