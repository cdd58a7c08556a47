package climate

import (
	"fmt"
	"math"
)

const (
	// BaselineEndYear is the first year excluded from the historic baseline.
	BaselineEndYear = 1980
	// ModernStartYear is the first year included in the modern average.
	ModernStartYear = 2010
)

// Metrics are the headline numbers of the dashboard.
// An average is NaN when no year falls in its window, and Warming is then NaN too.
type Metrics struct {
	BaselineAverage float64
	ModernAverage   float64
	Warming         float64
	BaselineYears   int
	ModernYears     int
}

// ComputeMetrics derives the baseline and modern averages from yearly records.
func ComputeMetrics(yearly []YearlyRecord) Metrics {
	var (
		baseSum, modernSum float64
		baseN, modernN     int
	)
	for _, y := range yearly {
		switch {
		case y.Year < BaselineEndYear:
			baseSum += y.Temperature
			baseN++
		case y.Year >= ModernStartYear:
			modernSum += y.Temperature
			modernN++
		}
	}

	m := Metrics{
		BaselineAverage: mean(baseSum, baseN),
		ModernAverage:   mean(modernSum, modernN),
		BaselineYears:   baseN,
		ModernYears:     modernN,
	}
	m.Warming = m.ModernAverage - m.BaselineAverage
	return m
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Complete reports whether both averages are defined.
func (m Metrics) Complete() bool {
	return !math.IsNaN(m.BaselineAverage) && !math.IsNaN(m.ModernAverage)
}

// Err returns an *InsufficientDataError when either window is empty.
func (m Metrics) Err() error {
	if m.Complete() {
		return nil
	}
	return &InsufficientDataError{
		MissingBaseline: math.IsNaN(m.BaselineAverage),
		MissingModern:   math.IsNaN(m.ModernAverage),
	}
}

// NoData is what the dashboard shows in place of an undefined number.
const NoData = "no data"

// FormatTemperature renders an average such as "20.3°C".
func FormatTemperature(v float64) string {
	if math.IsNaN(v) {
		return NoData
	}
	return fmt.Sprintf("%.1f°C", v)
}

// FormatDelta renders a signed difference such as "+1.5°C".
func FormatDelta(v float64) string {
	if math.IsNaN(v) {
		return NoData
	}
	return fmt.Sprintf("%+.1f°C", v)
}
