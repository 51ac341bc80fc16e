// Package calendar converts between absolute elapsed game minutes and dates
// on a configurable calendar.
package calendar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	MinutesPerDay  = MinutesPerHour * HoursPerDay
)

// Month is a named month with a fixed day count.
type Month struct {
	Name string `yaml:"name" json:"name"`
	Days int    `yaml:"days" json:"days"`
}

// Calendar is the immutable date configuration for one game.
// A StartingYear greater than zero means the calendar has no year zero:
// the year before 1 is -1.
type Calendar struct {
	Months       []Month  `yaml:"months" json:"months"`
	DayNames     []string `yaml:"day_names" json:"dayNames"`
	DaysInWeek   int      `yaml:"days_in_week" json:"daysInWeek"`
	StartingYear int      `yaml:"starting_year" json:"startingYear"`
}

// Date is a fully resolved calendar position.
type Date struct {
	Year       int    `json:"year"`
	Month      string `json:"month"`
	MonthIndex int    `json:"monthIndex"`
	Day        int    `json:"day"`
	Weekday    string `json:"weekday"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
}

// String renders the date as "Weekday, D Month, Year Y, HH:MM".
func (d Date) String() string {
	s := fmt.Sprintf("%d %s, Year %d, %02d:%02d", d.Day, d.Month, d.Year, d.Hour, d.Minute)
	if d.Weekday != "" {
		s = d.Weekday + ", " + s
	}
	return s
}

// DateTime is the input form of ToMinutes. MonthIndex is zero-based and Day
// is one-based.
type DateTime struct {
	Year       int `json:"year"`
	MonthIndex int `json:"monthIndex"`
	Day        int `json:"day"`
	Hour       int `json:"hour"`
	Minute     int `json:"minute"`
}

// YearLength is the number of days in one year.
func (c Calendar) YearLength() int {
	n := 0
	for _, m := range c.Months {
		n += m.Days
	}
	return n
}

// Degenerate reports whether the calendar has no usable year length.
func (c Calendar) Degenerate() bool { return c.YearLength() <= 0 }

// ToDate resolves an absolute minute count to a calendar date. Negative
// minutes count backwards from the epoch.
//
// Postcondition: for a non-degenerate calendar, 1 <= Day <= Months[MonthIndex].Days.
func (c Calendar) ToDate(minutes int64) Date {
	totalDays := floorDiv(minutes, MinutesPerDay)
	minuteOfDay := int(minutes - totalDays*MinutesPerDay)
	d := Date{
		Hour:    minuteOfDay / MinutesPerHour,
		Minute:  minuteOfDay % MinutesPerHour,
		Weekday: c.weekday(totalDays),
	}

	yearLength := int64(c.YearLength())
	if yearLength <= 0 {
		d.Year = c.StartingYear
		d.Day = int(totalDays) + 1
		if len(c.Months) > 0 {
			d.Month = c.Months[0].Name
		}
		return d
	}

	year := c.StartingYear + int(floorDiv(totalDays, yearLength))
	if c.StartingYear > 0 && year <= 0 {
		year--
	}
	d.Year = year

	daysIntoYear := int(((totalDays % yearLength) + yearLength) % yearLength)
	for i, m := range c.Months {
		if daysIntoYear < m.Days {
			d.Month = m.Name
			d.MonthIndex = i
			d.Day = daysIntoYear + 1
			return d
		}
		daysIntoYear -= m.Days
	}
	// unreachable while every month has a positive day count
	last := len(c.Months) - 1
	d.Month = c.Months[last].Name
	d.MonthIndex = last
	d.Day = c.Months[last].Days
	return d
}

// ToMinutes is the inverse of ToDate.
//
// Precondition: for a non-degenerate calendar, 0 <= MonthIndex < len(Months);
// Year is not zero when StartingYear > 0.
func (c Calendar) ToMinutes(dt DateTime) int64 {
	var days int64
	yearLength := int64(c.YearLength())
	if yearLength <= 0 {
		days = int64(dt.Day - 1)
	} else {
		year := dt.Year
		if c.StartingYear > 0 && year < 0 {
			year++
		}
		days = int64(year-c.StartingYear) * yearLength
		for i := 0; i < dt.MonthIndex && i < len(c.Months); i++ {
			days += int64(c.Months[i].Days)
		}
		days += int64(dt.Day - 1)
	}
	return days*MinutesPerDay + int64(dt.Hour*MinutesPerHour+dt.Minute)
}

// DateTime converts a resolved Date back to its input form.
func (d Date) DateTime() DateTime {
	return DateTime{Year: d.Year, MonthIndex: d.MonthIndex, Day: d.Day, Hour: d.Hour, Minute: d.Minute}
}

func (c Calendar) weekday(totalDays int64) string {
	n := int64(c.DaysInWeek)
	if n <= 0 {
		n = int64(len(c.DayNames))
	}
	if n <= 0 {
		return ""
	}
	i := ((totalDays % n) + n) % n
	if i >= int64(len(c.DayNames)) {
		return ""
	}
	return c.DayNames[i]
}

// Validate reports configuration errors. An empty month list is allowed and
// selects the degenerate date mode.
func (c Calendar) Validate() error {
	for i, m := range c.Months {
		if m.Name == "" {
			return fmt.Errorf("calendar: month %d has no name", i)
		}
		if m.Days <= 0 {
			return fmt.Errorf("calendar: month %q must have days > 0, got %d", m.Name, m.Days)
		}
	}
	if c.DaysInWeek < 0 {
		return fmt.Errorf("calendar: days_in_week must be >= 0, got %d", c.DaysInWeek)
	}
	if c.DaysInWeek > 0 && len(c.DayNames) < c.DaysInWeek {
		return fmt.Errorf("calendar: %d day names for a %d-day week", len(c.DayNames), c.DaysInWeek)
	}
	return nil
}

// Load reads a calendar from a YAML file.
//
// Postcondition: Returns a validated Calendar or a non-nil error.
func Load(path string) (Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Calendar{}, fmt.Errorf("reading calendar %s: %w", path, err)
	}
	var c Calendar
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Calendar{}, fmt.Errorf("parsing calendar %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Calendar{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
