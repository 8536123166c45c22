package folio

import (
	"math"
	"sort"
)

// Mode selects which value a chart plots per point. Both values are always
// computed so toggling the mode requires no refetch.
type Mode string

const (
	ModePrice       Mode = "price"
	ModePerformance Mode = "performance"
)

// PricePoint is one dated price observation. Dates are "YYYY-MM-DD" keys;
// lexicographic order is chronological order.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// SeriesPoint is one position on the unified date axis. Price is nil when
// the series has no observation at that date (no interpolation, no
// forward-fill). Performance is the percent change against the series' own
// first observed value, nil when either value is missing or the first
// value is zero.
type SeriesPoint struct {
	Date        string   `json:"date"`
	Price       *float64 `json:"price"`
	Performance *float64 `json:"performance"`
}

// Value returns the plotted value for the given mode.
func (p SeriesPoint) Value(mode Mode) *float64 {
	if mode == ModePerformance {
		return p.Performance
	}
	return p.Price
}

// AlignedSeries is one ticker's points aligned to the shared axis.
type AlignedSeries struct {
	Ticker string        `json:"ticker"`
	Points []SeriesPoint `json:"points"`
}

// Align builds a chart-ready structure from independently fetched price
// histories. The x-axis is the sorted union of all observed dates; each
// series contributes a point per axis date with price-or-nil and
// performance-or-nil. Series with no observations are dropped. Output
// series are ordered by ticker for determinism.
func Align(series map[string][]PricePoint) (dates []string, aligned []AlignedSeries) {
	seen := make(map[string]bool)
	for _, points := range series {
		for _, p := range points {
			if !seen[p.Date] {
				seen[p.Date] = true
				dates = append(dates, p.Date)
			}
		}
	}
	sort.Strings(dates)

	tickers := make([]string, 0, len(series))
	for t := range series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		points := sortedByDate(series[ticker])
		if len(points) == 0 {
			continue
		}

		byDate := make(map[string]float64, len(points))
		for _, p := range points {
			if isFiniteValue(p.Price) {
				byDate[p.Date] = p.Price
			}
		}

		first := points[0].Price
		firstUsable := isFiniteValue(first) && first != 0

		out := AlignedSeries{Ticker: ticker, Points: make([]SeriesPoint, 0, len(dates))}
		for _, d := range dates {
			sp := SeriesPoint{Date: d}
			if v, ok := byDate[d]; ok {
				sp.Price = Float(v)
				if firstUsable {
					sp.Performance = Float((v/first - 1) * 100)
				}
			}
			out.Points = append(out.Points, sp)
		}
		aligned = append(aligned, out)
	}

	return dates, aligned
}

// SeriesMetrics summarises one price series over the queried range.
// Start/end prices of exactly zero are reported as absent, matching the
// change-percent guard.
type SeriesMetrics struct {
	StartPrice   *float64 `json:"start_price"`
	EndPrice     *float64 `json:"end_price"`
	AbsChange    *float64 `json:"abs_change"`
	PctChange    *float64 `json:"pct_change"`
	High         *float64 `json:"high"`
	Low          *float64 `json:"low"`
	Observations int      `json:"observations"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
}

// Metrics computes the summary block for a single series. Returns nil for
// an empty series.
func Metrics(points []PricePoint) *SeriesMetrics {
	if len(points) == 0 {
		return nil
	}
	sorted := sortedByDate(points)

	start := sorted[0].Price
	end := sorted[len(sorted)-1].Price

	m := &SeriesMetrics{
		Observations: len(sorted),
		StartDate:    sorted[0].Date,
		EndDate:      sorted[len(sorted)-1].Date,
	}
	if isFiniteValue(start) && start != 0 {
		m.StartPrice = Float(start)
	}
	if isFiniteValue(end) && end != 0 {
		m.EndPrice = Float(end)
	}
	if isFiniteValue(start) && isFiniteValue(end) {
		m.AbsChange = Float(end - start)
		if start != 0 {
			m.PctChange = Float((end - start) / start * 100)
		}
	}

	for _, p := range sorted {
		if !isFiniteValue(p.Price) {
			continue
		}
		if m.High == nil || p.Price > *m.High {
			m.High = Float(p.Price)
		}
		if m.Low == nil || p.Price < *m.Low {
			m.Low = Float(p.Price)
		}
	}

	return m
}

// sortedByDate returns points sorted ascending by date key, copying only
// when the input is out of order.
func sortedByDate(points []PricePoint) []PricePoint {
	if sort.SliceIsSorted(points, func(i, j int) bool { return points[i].Date < points[j].Date }) {
		return points
	}
	out := make([]PricePoint, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func isFiniteValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
