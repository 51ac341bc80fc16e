package calendar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/chronicle/internal/game/calendar"
)

func janFeb() calendar.Calendar {
	return calendar.Calendar{
		Months:       []calendar.Month{{Name: "Jan", Days: 31}, {Name: "Feb", Days: 28}},
		DayNames:     []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		DaysInWeek:   7,
		StartingYear: 1,
	}
}

func TestToDate_Epoch(t *testing.T) {
	d := janFeb().ToDate(0)
	assert.Equal(t, 1, d.Year)
	assert.Equal(t, "Jan", d.Month)
	assert.Equal(t, 1, d.Day)
	assert.Equal(t, "Sun", d.Weekday)
	assert.Equal(t, 0, d.Hour)
}

func TestToDate_SecondMonth(t *testing.T) {
	d := janFeb().ToDate(31 * calendar.MinutesPerDay)
	assert.Equal(t, 1, d.Year)
	assert.Equal(t, "Feb", d.Month)
	assert.Equal(t, 1, d.MonthIndex)
	assert.Equal(t, 1, d.Day)
	assert.Equal(t, "Wed", d.Weekday, "31 mod 7 = 3")
}

func TestToDate_WrapsYearAndClock(t *testing.T) {
	d := janFeb().ToDate(59*calendar.MinutesPerDay + 13*60 + 7)
	assert.Equal(t, 2, d.Year)
	assert.Equal(t, "Jan", d.Month)
	assert.Equal(t, 1, d.Day)
	assert.Equal(t, 13, d.Hour)
	assert.Equal(t, 7, d.Minute)
	assert.Equal(t, calendar.Afternoon, d.TimeOfDay())
}

func TestToDate_NegativeMinutesSkipYearZero(t *testing.T) {
	d := janFeb().ToDate(-1)
	assert.Equal(t, -1, d.Year, "the year before 1 is -1")
	assert.Equal(t, "Feb", d.Month)
	assert.Equal(t, 28, d.Day)
	assert.Equal(t, 23, d.Hour)
	assert.Equal(t, 59, d.Minute)
	assert.Equal(t, "Sat", d.Weekday)
}

func TestToDate_NoYearZeroAdjustmentWhenStartingAtZero(t *testing.T) {
	c := janFeb()
	c.StartingYear = 0
	d := c.ToDate(-calendar.MinutesPerDay)
	assert.Equal(t, -1, d.Year)
	d = c.ToDate(0)
	assert.Equal(t, 0, d.Year)
}

func TestToDate_Degenerate(t *testing.T) {
	c := calendar.Calendar{DayNames: []string{"A", "B", "C"}, StartingYear: 7}
	require.True(t, c.Degenerate())
	d := c.ToDate(4*calendar.MinutesPerDay + 30)
	assert.Equal(t, 7, d.Year)
	assert.Equal(t, "", d.Month)
	assert.Equal(t, 5, d.Day)
	assert.Equal(t, "B", d.Weekday)
	assert.Equal(t, 30, d.Minute)

	c.Months = []calendar.Month{{Name: "Void", Days: 0}}
	d = c.ToDate(0)
	assert.Equal(t, "Void", d.Month)
	assert.Equal(t, 1, d.Day)
	assert.Equal(t, int64(0), c.ToMinutes(calendar.DateTime{Year: 7, Day: 1}))
}

func TestToMinutes_Examples(t *testing.T) {
	c := janFeb()
	assert.Equal(t, int64(0), c.ToMinutes(calendar.DateTime{Year: 1, MonthIndex: 0, Day: 1}))
	assert.Equal(t, int64(31*calendar.MinutesPerDay), c.ToMinutes(calendar.DateTime{Year: 1, MonthIndex: 1, Day: 1}))
	assert.Equal(t, int64(-calendar.MinutesPerDay), c.ToMinutes(calendar.DateTime{Year: -1, MonthIndex: 1, Day: 28}))
	assert.Equal(t, int64(8*60+15), c.ToMinutes(calendar.DateTime{Year: 1, Day: 1, Hour: 8, Minute: 15}))
}

func TestDate_String(t *testing.T) {
	d := janFeb().ToDate(31*calendar.MinutesPerDay + 9*60 + 5)
	assert.Equal(t, "Wed, 1 Feb, Year 1, 09:05", d.String())
}

func TestBucket(t *testing.T) {
	cases := map[int]calendar.TimeOfDay{
		0: calendar.Night, 4: calendar.Night, 5: calendar.Morning, 11: calendar.Morning,
		12: calendar.Afternoon, 17: calendar.Afternoon, 18: calendar.Evening,
		21: calendar.Evening, 22: calendar.Night, 23: calendar.Night,
	}
	for hour, want := range cases {
		assert.Equal(t, want, calendar.Bucket(hour), "hour %d", hour)
	}
}

func genCalendar(t *rapid.T) calendar.Calendar {
	n := rapid.IntRange(1, 8).Draw(t, "months")
	c := calendar.Calendar{
		DaysInWeek:   rapid.IntRange(0, 9).Draw(t, "week"),
		StartingYear: rapid.IntRange(-5, 500).Draw(t, "start"),
	}
	for i := 0; i < n; i++ {
		c.Months = append(c.Months, calendar.Month{
			Name: string(rune('A' + i)),
			Days: rapid.IntRange(1, 40).Draw(t, "days"),
		})
	}
	for i := 0; i < c.DaysInWeek; i++ {
		c.DayNames = append(c.DayNames, string(rune('a'+i)))
	}
	return c
}

func TestRoundTrip_DateToMinutesToDate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCalendar(t)
		year := rapid.IntRange(c.StartingYear-300, c.StartingYear+300).Draw(t, "year")
		if c.StartingYear > 0 && year == 0 {
			year = 1
		}
		mi := rapid.IntRange(0, len(c.Months)-1).Draw(t, "month")
		dt := calendar.DateTime{
			Year:       year,
			MonthIndex: mi,
			Day:        rapid.IntRange(1, c.Months[mi].Days).Draw(t, "day"),
			Hour:       rapid.IntRange(0, 23).Draw(t, "hour"),
			Minute:     rapid.IntRange(0, 59).Draw(t, "minute"),
		}
		got := c.ToDate(c.ToMinutes(dt))
		if got.DateTime() != dt {
			t.Fatalf("round trip: %+v -> %+v", dt, got)
		}
		if got.Month != c.Months[mi].Name {
			t.Fatalf("month name %q, want %q", got.Month, c.Months[mi].Name)
		}
	})
}

func TestRoundTrip_MinutesToDateToMinutes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCalendar(t)
		m := rapid.Int64Range(-10_000_000, 10_000_000).Draw(t, "minutes")
		if got := c.ToMinutes(c.ToDate(m).DateTime()); got != m {
			t.Fatalf("minutes %d -> %d", m, got)
		}
	})
}

func TestLoad(t *testing.T) {
	c, err := calendar.Load(filepath.Join("testdata", "calendar.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 89, c.YearLength())
	assert.Equal(t, 412, c.StartingYear)
	d := c.ToDate(30 * calendar.MinutesPerDay)
	assert.Equal(t, "Thaw", d.Month)
	assert.Equal(t, "Moonday", d.Weekday)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("months:\n  - name: X\n    days: 0\n"), 0o600))
	_, err := calendar.Load(bad)
	assert.ErrorContains(t, err, "days > 0")

	short := filepath.Join(dir, "short.yaml")
	require.NoError(t, os.WriteFile(short, []byte("days_in_week: 3\nday_names: [a]\n"), 0o600))
	_, err = calendar.Load(short)
	assert.Error(t, err)

	_, err = calendar.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
