package httpapi

import (
	"math"

	"github.com/i474232898/climate-tracker/internal/climate"
)

const dataSource = "Open-Meteo Historical Weather API (https://open-meteo.com/)"

// metricView is one headline number. Value is null when undefined; Display never is.
type metricView struct {
	Label   string   `json:"label"`
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
	Years   int      `json:"years,omitempty"`
}

type metricsView struct {
	Baseline metricView `json:"baseline"`
	Modern   metricView `json:"modern"`
	Warming  metricView `json:"warming"`
	// WarmingDeltaColor tells the front end that a positive delta is bad news.
	WarmingDeltaColor string `json:"warmingDeltaColor"`
}

type yearView struct {
	Year        int      `json:"year"`
	Temperature float64  `json:"temperature"`
	Days        int      `json:"days"`
	RollingAvg  *float64 `json:"rollingAvg"`
	Anomaly     *float64 `json:"anomaly"`
}

type analysisResponse struct {
	Location    climate.Location `json:"location"`
	Status      climate.Status   `json:"status"`
	Message     string           `json:"message,omitempty"`
	DaysFetched int              `json:"daysFetched"`
	Metrics     *metricsView     `json:"metrics,omitempty"`
	Years       []yearView       `json:"years,omitempty"`
	Charts      []chartSpec      `json:"charts,omitempty"`
	Source      string           `json:"source"`
}

// nullable maps NaN and infinities to JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newMetricsView(m climate.Metrics) *metricsView {
	return &metricsView{
		Baseline: metricView{
			Label:   "Historic Average (1950-79)",
			Value:   nullable(m.BaselineAverage),
			Display: climate.FormatTemperature(m.BaselineAverage),
			Years:   m.BaselineYears,
		},
		Modern: metricView{
			Label:   "Modern Average (2010s)",
			Value:   nullable(m.ModernAverage),
			Display: climate.FormatTemperature(m.ModernAverage),
			Years:   m.ModernYears,
		},
		Warming: metricView{
			Label:   "Warming Impact",
			Value:   nullable(m.Warming),
			Display: climate.FormatDelta(m.Warming),
		},
		WarmingDeltaColor: "inverse",
	}
}

// newAnalysisResponse renders an analysis. Only a complete analysis carries
// the yearly table and charts. An incomplete one shows every metric as no
// data, keeping the per-window year counts so the gap is visible.
func newAnalysisResponse(a climate.Analysis) analysisResponse {
	resp := analysisResponse{
		Location:    a.Location,
		Status:      a.Status,
		Message:     a.Message,
		DaysFetched: a.DaysFetched,
		Source:      dataSource,
	}

	if a.Status == climate.StatusFetchError {
		return resp
	}
	if !a.OK() {
		resp.Metrics = newMetricsView(withheld(a.Metrics))
		return resp
	}
	resp.Metrics = newMetricsView(a.Metrics)

	resp.Years = make([]yearView, 0, len(a.Years))
	for _, y := range a.Years {
		resp.Years = append(resp.Years, yearView{
			Year:        y.Year,
			Temperature: y.Temperature,
			Days:        y.Days,
			RollingAvg:  y.RollingAvg,
			Anomaly:     nullable(y.Anomaly),
		})
	}
	resp.Charts = []chartSpec{trendChart(a.Location), anomalyChart()}
	return resp
}

func withheld(m climate.Metrics) climate.Metrics {
	m.BaselineAverage = math.NaN()
	m.ModernAverage = math.NaN()
	m.Warming = math.NaN()
	return m
}
