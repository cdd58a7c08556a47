package climate

import "sort"

// RollingWindow is the number of years averaged by the trend line.
const RollingWindow = 5

// YearlyAverage groups daily records by calendar year and averages their temperatures.
// Days without a temperature are left out of the mean; a year where every day is
// missing does not appear. The result is ordered by ascending year.
func YearlyAverage(daily []DailyRecord) []YearlyRecord {
	type bucket struct {
		sum  float64
		days int
	}

	buckets := make(map[int]*bucket)
	for _, d := range daily {
		if d.Temperature == nil {
			continue
		}
		year := d.Date.Year()
		b, ok := buckets[year]
		if !ok {
			b = &bucket{}
			buckets[year] = b
		}
		b.sum += *d.Temperature
		b.days++
	}

	years := make([]int, 0, len(buckets))
	for y := range buckets {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearlyRecord, 0, len(years))
	for _, y := range years {
		b := buckets[y]
		out = append(out, YearlyRecord{
			Year:        y,
			Temperature: b.sum / float64(b.days),
			Days:        b.days,
		})
	}
	return out
}

// RollingAverage attaches a trailing moving average of temperature to each record.
// The average is positional: row i averages rows i-window+1..i. Rows before the
// window is full keep a nil RollingAvg. A window below 1 is treated as 1.
func RollingAverage(yearly []YearlyRecord, window int) []EnrichedYearlyRecord {
	if window < 1 {
		window = 1
	}

	out := make([]EnrichedYearlyRecord, len(yearly))
	for i, y := range yearly {
		out[i] = EnrichedYearlyRecord{YearlyRecord: y}
		if i+1 < window {
			continue
		}

		var sum float64
		for _, prev := range yearly[i+1-window : i+1] {
			sum += prev.Temperature
		}
		avg := sum / float64(window)
		out[i].RollingAvg = &avg
	}
	return out
}

// Anomaly returns a copy of records with Anomaly set to temperature minus baseline.
func Anomaly(records []EnrichedYearlyRecord, baseline float64) []EnrichedYearlyRecord {
	out := make([]EnrichedYearlyRecord, len(records))
	for i, r := range records {
		r.Anomaly = r.Temperature - baseline
		out[i] = r
	}
	return out
}

// Enrich applies RollingAverage and then Anomaly.
func Enrich(yearly []YearlyRecord, baseline float64, window int) []EnrichedYearlyRecord {
	return Anomaly(RollingAverage(yearly, window), baseline)
}
