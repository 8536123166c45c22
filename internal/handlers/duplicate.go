package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/folioadmin/folio-portal/internal/cache"
	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
	"github.com/folioadmin/folio-portal/internal/folio"
	"github.com/folioadmin/folio-portal/internal/models"
)

// DuplicateHandler implements the duplicate-as-reference-security flow:
// GET previews a candidate priced in the configured reference security,
// POST submits it. The preview never touches the backend's write surface;
// a fatal lookup failure aborts before any create.
type DuplicateHandler struct {
	logger    *common.Logger
	client    *client.FolioClient
	cache     *cache.Cache
	refTicker string
}

// NewDuplicateHandler creates a new duplicate handler.
func NewDuplicateHandler(logger *common.Logger, c *client.FolioClient, cc *cache.Cache, refTicker string) *DuplicateHandler {
	return &DuplicateHandler{logger: logger, client: c, cache: cc, refTicker: refTicker}
}

// ServeHTTP routes /api/transactions/{id}/duplicate.
func (h *DuplicateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/transactions/"), "/")
	idStr := strings.TrimSuffix(rest, "/duplicate")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		WriteError(w, http.StatusNotFound, "invalid transaction id: "+idStr)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.preview(w, r, id)
	case http.MethodPost:
		h.submit(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// buildCandidate runs the lookups and constructs the candidate.
func (h *DuplicateHandler) buildCandidate(r *http.Request, id int) (folio.DuplicateCandidate, int, error) {
	ctx := r.Context()

	original, err := h.client.GetTransaction(ctx, id)
	if err != nil {
		return folio.DuplicateCandidate{}, http.StatusBadGateway, err
	}

	form, err := h.client.GetTransactionFormData(ctx)
	if err != nil {
		return folio.DuplicateCandidate{}, http.StatusBadGateway, err
	}

	prices, err := h.client.ListSecurityPrices(ctx, client.PriceQuery{
		Ticker:   h.refTicker,
		FromDate: original.TransactionDate,
		ToDate:   original.TransactionDate,
	})
	if err != nil {
		return folio.DuplicateCandidate{}, http.StatusBadGateway, err
	}

	cand, err := folio.BuildDuplicate(*original, *form, h.client.Session().UserID, h.refTicker, prices)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, folio.ErrReferenceSecurityNotFound) && !errors.Is(err, folio.ErrNoPortfolioAvailable) {
			status = http.StatusBadGateway
		}
		return folio.DuplicateCandidate{}, status, err
	}

	return cand, http.StatusOK, nil
}

// preview handles GET: returns the candidate without creating anything.
func (h *DuplicateHandler) preview(w http.ResponseWriter, r *http.Request, id int) {
	cand, status, err := h.buildCandidate(r, id)
	if err != nil {
		h.logger.Warn().Err(err).Int("transaction_id", id).Msg("duplicate preview failed")
		WriteError(w, status, err.Error())
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"transaction": cand.Transaction,
		"warning":     cand.Warning,
		"submittable": cand.Submittable(),
	})
}

// submit handles POST: creates the duplicate. The body may carry
// user-supplied quantity and price for the degraded path where no
// reference price existed on the original's date.
func (h *DuplicateHandler) submit(w http.ResponseWriter, r *http.Request, id int) {
	// One duplicate per original. The check must run before any create: if
	// the register cannot be read, abort rather than risk a second link.
	rows, err := h.client.ListTransactions(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Int("transaction_id", id).Msg("duplicate cardinality check failed")
		WriteError(w, http.StatusBadGateway, "cannot verify existing duplicates: "+err.Error())
		return
	}
	if hasLinkedDuplicate(rows, id) {
		WriteError(w, http.StatusConflict, "transaction already has a linked duplicate")
		return
	}

	cand, status, err := h.buildCandidate(r, id)
	if err != nil {
		h.logger.Warn().Err(err).Int("transaction_id", id).Msg("duplicate submit aborted")
		WriteError(w, status, err.Error())
		return
	}

	if r.Body != nil {
		var override struct {
			TransactionQty   *float64 `json:"transaction_qty"`
			TransactionPrice *float64 `json:"transaction_price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&override); err == nil {
			if override.TransactionQty != nil {
				cand.Transaction.TransactionQty = override.TransactionQty
			}
			if override.TransactionPrice != nil {
				cand.Transaction.TransactionPrice = override.TransactionPrice
			}
		}
	}

	if !cand.Submittable() {
		WriteError(w, http.StatusUnprocessableEntity,
			"duplicate needs quantity and price: "+cand.Warning)
		return
	}

	cand.Transaction.TotalInvAmt = folio.ReconcileTotal(
		cand.Transaction.TransactionQty, cand.Transaction.TransactionPrice)

	created, err := h.client.CreateTransaction(r.Context(), cand.Transaction)
	if err != nil {
		h.logger.Error().Err(err).Int("transaction_id", id).Msg("duplicate create failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	if h.cache != nil {
		h.cache.Invalidate("transactions")
	}
	WriteData(w, http.StatusCreated, created)
}

// hasLinkedDuplicate reports whether id already has a linked duplicate.
func hasLinkedDuplicate(rows []models.TransactionFullView, id int) bool {
	txns := make([]models.Transaction, len(rows))
	for i := range rows {
		txns[i] = rows[i].Transaction
	}
	return folio.HasBeenDuplicated(txns, id)
}
