package climate

import (
	"fmt"
	"strings"
)

// FetchError reports any failure to obtain daily records from a provider:
// network errors, timeouts, bad status codes and malformed payloads alike.
type FetchError struct {
	Provider    string
	Coordinates Coordinates
	Err         error
}

func (e *FetchError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("fetch climate data for %s: %v", e.Coordinates, e.Err)
	}
	return fmt.Sprintf("%s: fetch climate data for %s: %v", e.Provider, e.Coordinates, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// EmptyDataError is returned when a fetch succeeded but no day carried a usable temperature.
type EmptyDataError struct {
	Location string
}

func (e *EmptyDataError) Error() string {
	return fmt.Sprintf("no usable temperature data for %s", e.Location)
}

// InsufficientDataError is returned when the baseline or modern window has no qualifying years.
type InsufficientDataError struct {
	MissingBaseline bool
	MissingModern   bool
}

func (e *InsufficientDataError) Error() string {
	var missing []string
	if e.MissingBaseline {
		missing = append(missing, fmt.Sprintf("baseline (before %d)", BaselineEndYear))
	}
	if e.MissingModern {
		missing = append(missing, fmt.Sprintf("modern (%d onward)", ModernStartYear))
	}
	return "insufficient data: no years in " + strings.Join(missing, " or ") + " window"
}
