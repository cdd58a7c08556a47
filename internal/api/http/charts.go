package httpapi

import "github.com/i474232898/climate-tracker/internal/climate"

// chartSeries is one plotted column of the yearly table.
type chartSeries struct {
	Name  string `json:"name"`
	Field string `json:"field"`
	Mode  string `json:"mode"`
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
}

// colorScale maps a numeric column onto a diverging palette.
type colorScale struct {
	Field  string     `json:"field"`
	Scheme string     `json:"scheme"`
	Center float64    `json:"center"`
	Range  [2]float64 `json:"range"`
}

// chartSpec tells the front end how to draw the yearly table.
// It carries no data; every series references a field of the years array.
type chartSpec struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	XField      string        `json:"xField"`
	XLabel      string        `json:"xLabel"`
	YLabel      string        `json:"yLabel"`
	Series      []chartSeries `json:"series"`
	ColorScale  *colorScale   `json:"colorScale,omitempty"`
	ShowLegend  bool          `json:"showLegend"`
}

// anomalyDisplayRange clamps the stripes palette so a single extreme year does not wash out the rest.
var anomalyDisplayRange = [2]float64{-1.5, 1.5}

func trendChart(loc climate.Location) chartSpec {
	return chartSpec{
		ID:     "trend",
		Type:   "line",
		Title:  "Temperature Trend: " + loc.Name,
		XField: "year",
		XLabel: "Year",
		YLabel: "Avg Temperature (°C)",
		Series: []chartSeries{
			{Name: "Yearly Average", Field: "temperature", Mode: "lines", Color: "#008080"},
			{Name: "5-Year Trend", Field: "rollingAvg", Mode: "lines", Color: "#FFA500", Width: 3},
		},
		ShowLegend: true,
	}
}

func anomalyChart() chartSpec {
	return chartSpec{
		ID:          "stripes",
		Type:        "bar",
		Title:       "Warming Stripes Visualization",
		Description: "Visualizing the shift from cooler years (Blue) to warmer years (Red).",
		XField:      "year",
		XLabel:      "Year",
		YLabel:      "Deviation from Baseline (°C)",
		Series: []chartSeries{
			{Name: "Anomaly", Field: "anomaly", Mode: "bars"},
		},
		ColorScale: &colorScale{
			Field:  "anomaly",
			Scheme: "RdBu_r",
			Center: 0,
			Range:  anomalyDisplayRange,
		},
	}
}
