package staff_test

import (
	"os"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/staff"
)

// Calendar math depends on the local zone; pin it for the whole package.
func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

func withLocal(t *testing.T, name string) {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func ts(t *testing.T, year, month, day int) staff.Timestamp {
	t.Helper()
	v, err := staff.MakeTimestamp(year, month, day, 0, 0, 0)
	require.NoError(t, err)
	return v
}

// =============================================================================
// MAKE TIMESTAMP
// =============================================================================

func TestMakeTimestamp_RoundTrip(t *testing.T) {
	got, err := staff.MakeTimestamp(2015, 10, 18, 13, 45, 7)
	require.NoError(t, err)

	assert.Equal(t, staff.Timestamp(time.Date(2015, 10, 18, 13, 45, 7, 0, time.UTC).Unix()), got)

	fields, err := staff.ToCalendarFields(got)
	require.NoError(t, err)
	assert.Equal(t, staff.CalendarFields{Year: 2015, Month: 10, Day: 18, Hour: 13, Minute: 45, Second: 7}, fields)
	assert.Equal(t, "2015-10-18T13:45:07", got.String())
}

func TestMakeTimestamp_AcceptsFieldEdges(t *testing.T) {
	// GIVEN: Fields at the first and last value of each range
	// WHEN: Building a timestamp and decomposing it again
	// THEN: The same fields come back

	tests := []staff.CalendarFields{
		{Year: 1970, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 0},
		{Year: 2020, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 0},
		{Year: 2020, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59},
		{Year: 2021, Month: 1, Day: 31, Hour: 0, Minute: 59, Second: 0},
		{Year: 2021, Month: 12, Day: 1, Hour: 23, Minute: 0, Second: 59},
		{Year: 2020, Month: 2, Day: 29, Hour: 12, Minute: 30, Second: 30},
		{Year: 9999, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59},
	}

	for _, zone := range []string{"UTC", "America/New_York"} {
		t.Run(zone, func(t *testing.T) {
			withLocal(t, zone)
			for _, want := range tests {
				got, err := staff.MakeTimestamp(want.Year, want.Month, want.Day, want.Hour, want.Minute, want.Second)
				require.NoError(t, err, want.String())

				fields, err := staff.ToCalendarFields(got)
				require.NoError(t, err, want.String())
				assert.Equal(t, want, fields)
			}
		})
	}
}

func TestMakeTimestamp_FieldOutOfRange(t *testing.T) {
	tests := []struct {
		name                 string
		y, mo, d, h, mi, sec int
		field                string
	}{
		{"year before base", 1899, 1, 1, 0, 0, 0, "year"},
		{"month zero", 2020, 0, 1, 0, 0, 0, "month"},
		{"month thirteen", 2020, 13, 1, 0, 0, 0, "month"},
		{"day zero", 2020, 1, 0, 0, 0, 0, "day"},
		{"day 32", 2020, 1, 32, 0, 0, 0, "day"},
		{"hour negative", 2020, 1, 1, -1, 0, 0, "hour"},
		{"hour 24", 2020, 1, 1, 24, 0, 0, "hour"},
		{"minute negative", 2020, 1, 1, 0, -1, 0, "minute"},
		{"minute 60", 2020, 1, 1, 0, 60, 0, "minute"},
		{"second negative", 2020, 1, 1, 0, 0, -1, "second"},
		{"second 60", 2020, 1, 1, 0, 0, 60, "second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := staff.MakeTimestamp(tt.y, tt.mo, tt.d, tt.h, tt.mi, tt.sec)

			var rangeErr *staff.RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.field, rangeErr.Field)
			assert.True(t, staff.IsInvalidArgument(err))
			assert.False(t, staff.IsCalendarFailure(err))
		})
	}
}

func TestMakeTimestamp_NonexistentDate(t *testing.T) {
	// GIVEN: Fields that pass range checks but name no real day
	// WHEN: Building a timestamp
	// THEN: Conversion fails instead of rolling over into March

	_, err := staff.MakeTimestamp(2021, 2, 30, 0, 0, 0)
	assert.ErrorIs(t, err, staff.ErrCalendarConversion)
	assert.False(t, staff.IsInvalidArgument(err))

	_, err = staff.MakeTimestamp(2020, 2, 29, 0, 0, 0)
	assert.NoError(t, err, "leap day exists")
}

func TestMakeTimestamp_DaylightSavingGap(t *testing.T) {
	withLocal(t, "America/New_York")

	// 2021-03-14 02:30 was skipped in New York.
	_, err := staff.MakeTimestamp(2021, 3, 14, 2, 30, 0)
	assert.True(t, staff.IsCalendarFailure(err))

	_, err = staff.MakeTimestamp(2021, 3, 14, 3, 30, 0)
	assert.NoError(t, err)
}

func TestMakeTimestamp_BeforeEpoch(t *testing.T) {
	_, err := staff.MakeTimestamp(1950, 6, 1, 0, 0, 0)
	assert.ErrorIs(t, err, staff.ErrCalendarConversion)

	epoch, err := staff.MakeTimestamp(1970, 1, 1, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, staff.Timestamp(0), epoch)
}

func TestToCalendarFields_OutsideCalendar(t *testing.T) {
	far := staff.Timestamp(time.Date(10000, 1, 2, 0, 0, 0, 0, time.UTC).Unix())

	_, err := staff.ToCalendarFields(far)
	assert.ErrorIs(t, err, staff.ErrCalendarConversion)
}

func TestParseTimestamp(t *testing.T) {
	got, err := staff.ParseTimestamp("2016-10-19")
	require.NoError(t, err)
	assert.Equal(t, ts(t, 2016, 10, 19), got)

	got, err = staff.ParseTimestamp("2016-10-19T08:30:00")
	require.NoError(t, err)
	assert.Equal(t, ts(t, 2016, 10, 19)+staff.Timestamp(8*3600+30*60), got)

	_, err = staff.ParseTimestamp("yesterday")
	assert.True(t, staff.IsInvalidArgument(err))

	_, err = staff.ParseTimestamp("1960-01-01")
	assert.True(t, staff.IsCalendarFailure(err), "pre-epoch dates are rejected")
}

func TestParseTimestamp_OffsetNamesRepeatedHour(t *testing.T) {
	// GIVEN: New York local time, where 01:30 happened twice on 2021-11-07
	// WHEN: Formatting both instants and parsing them back
	// THEN: Each comes back as itself, an hour apart

	withLocal(t, "America/New_York")

	first := staff.TimestampOf(time.Date(2021, 11, 7, 5, 30, 0, 0, time.UTC))
	second := staff.TimestampOf(time.Date(2021, 11, 7, 6, 30, 0, 0, time.UTC))
	assert.Equal(t, "2021-11-07T01:30:00-04:00", staff.FormatInstant(first))
	assert.Equal(t, "2021-11-07T01:30:00-05:00", staff.FormatInstant(second))

	for _, want := range []staff.Timestamp{first, second} {
		got, err := staff.ParseTimestamp(staff.FormatInstant(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := staff.ParseTimestamp("1969-12-31T23:00:00Z")
	assert.True(t, staff.IsCalendarFailure(err), "pre-epoch instants are rejected")

	_, err = staff.ParseTimestamp("1899-12-31T23:00:00-05:00")
	var rangeErr *staff.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "year", rangeErr.Field)
}

// =============================================================================
// WHOLE WORK YEARS
// =============================================================================

func TestWholeWorkYears_AnniversaryMustPass(t *testing.T) {
	// GIVEN: Hired 2015-10-18
	// WHEN: Counting years on and after the first anniversary
	// THEN: The year completes only the day after the anniversary

	hired := ts(t, 2015, 10, 18)

	tests := []struct {
		name string
		at   staff.Timestamp
		want int
	}{
		{"hire day", hired, 0},
		{"same calendar year", ts(t, 2015, 12, 31), 0},
		{"next year before anniversary month", ts(t, 2016, 9, 30), 0},
		{"on anniversary", ts(t, 2016, 10, 18), 0},
		{"day after anniversary", ts(t, 2016, 10, 19), 1},
		{"later month", ts(t, 2016, 11, 1), 1},
		{"four years on", ts(t, 2019, 10, 19), 4},
		{"new year's day", ts(t, 2020, 1, 1), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := staff.WholeWorkYears(hired, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWholeWorkYears_EndBeforeStart(t *testing.T) {
	_, err := staff.WholeWorkYears(ts(t, 2020, 1, 2), ts(t, 2020, 1, 1))

	assert.ErrorIs(t, err, staff.ErrEndBeforeStart)
	assert.True(t, staff.IsInvalidArgument(err))
}
