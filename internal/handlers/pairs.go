package handlers

import (
	"net/http"
	"strings"

	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
)

// PairsHandler serves linked original/duplicate transaction pairs and
// their performance comparison.
type PairsHandler struct {
	logger *common.Logger
	client *client.FolioClient
}

// NewPairsHandler creates a new pairs handler.
func NewPairsHandler(logger *common.Logger, c *client.FolioClient) *PairsHandler {
	return &PairsHandler{logger: logger, client: c}
}

// ServeHTTP routes /api/pairs and /api/pairs/{pair_id}/performance.
func (h *PairsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/pairs"), "/")

	if rest == "" {
		h.list(w, r)
		return
	}

	pairID, ok := strings.CutSuffix(rest, "/performance")
	if !ok || pairID == "" {
		WriteError(w, http.StatusNotFound, "unknown pairs route: "+rest)
		return
	}
	h.performance(w, r, pairID)
}

func (h *PairsHandler) list(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.client.LinkedPairs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("linked pairs fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, http.StatusOK, pairs)
}

func (h *PairsHandler) performance(w http.ResponseWriter, r *http.Request, pairID string) {
	q := r.URL.Query()
	comparison, err := h.client.PerformanceComparison(r.Context(), pairID, q.Get("from_date"), q.Get("to_date"))
	if err != nil {
		h.logger.Error().Err(err).Str("pair_id", pairID).Msg("performance comparison fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, http.StatusOK, comparison)
}
