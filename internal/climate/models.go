package climate

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format used by the archive API.
const DateLayout = "2006-01-02"

// Location is a named place shown on the dashboard.
// Name is unique and doubles as the display label.
type Location struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Coordinates returns the point used to fetch and cache data for this location.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Coordinates identifies a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing these coordinates in stores.
func (c Coordinates) Key() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Latitude, c.Longitude)
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate reports whether the range is usable for a fetch.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range must have both start and end")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("end date %s is before start date %s", r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return nil
}

// Day truncates t to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyRecord is one day of mean temperature for a location.
// Temperature is nil when the upstream reported no value for that day.
type DailyRecord struct {
	Date        time.Time   `json:"date"`
	Temperature *float64    `json:"temperature"`
	Location    Coordinates `json:"location"`
}

// YearlyRecord is the mean temperature of one calendar year.
// Days counts the daily values that contributed to the mean.
type YearlyRecord struct {
	Year        int     `json:"year"`
	Temperature float64 `json:"temperature"`
	Days        int     `json:"days"`
}

// EnrichedYearlyRecord adds the trailing rolling average and the
// deviation from the baseline to a YearlyRecord.
// RollingAvg is nil until the rolling window is full.
type EnrichedYearlyRecord struct {
	YearlyRecord
	RollingAvg *float64 `json:"rollingAvg"`
	Anomaly    float64  `json:"anomaly"`
}
