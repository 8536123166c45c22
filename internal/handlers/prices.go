package handlers

import (
	"net/http"
	"strings"

	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
	"github.com/folioadmin/folio-portal/internal/folio"
)

// PriceSeriesHandler serves chart-ready multi-ticker price data: fetches
// each ticker's history concurrently, aligns the series on a shared date
// axis, and summarises the primary (first) ticker.
type PriceSeriesHandler struct {
	logger *common.Logger
	client *client.FolioClient
}

// NewPriceSeriesHandler creates a new price series handler.
func NewPriceSeriesHandler(logger *common.Logger, c *client.FolioClient) *PriceSeriesHandler {
	return &PriceSeriesHandler{logger: logger, client: c}
}

// ServeHTTP handles GET /api/price-series?tickers=A,B&from_date=&to_date=.
func (h *PriceSeriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	q := r.URL.Query()
	var tickers []string
	for _, t := range strings.Split(q.Get("tickers"), ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		WriteError(w, http.StatusBadRequest, "tickers query parameter is required")
		return
	}

	rows, err := h.client.FetchPriceSeries(r.Context(), tickers, q.Get("from_date"), q.Get("to_date"))
	if err != nil {
		h.logger.Error().Err(err).Msg("price series fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	series := make(map[string][]folio.PricePoint, len(rows))
	for ticker, prices := range rows {
		points := make([]folio.PricePoint, 0, len(prices))
		for _, p := range prices {
			points = append(points, folio.PricePoint{Date: p.PriceDate, Price: p.Price})
		}
		series[ticker] = points
	}

	dates, aligned := folio.Align(series)

	// The first requested ticker is the chart's primary series.
	metrics := folio.Metrics(series[tickers[0]])

	WriteData(w, http.StatusOK, map[string]interface{}{
		"dates":   dates,
		"series":  aligned,
		"metrics": metrics,
		"primary": tickers[0],
	})
}
