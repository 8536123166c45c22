package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/folioadmin/folio-portal/internal/cache"
	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
	"github.com/folioadmin/folio-portal/internal/folio"
	"github.com/folioadmin/folio-portal/internal/models"
)

// TransactionsHandler serves the transactions register: list with
// column filters, CRUD relay, and the editor's form data.
type TransactionsHandler struct {
	logger *common.Logger
	client *client.FolioClient
	cache  *cache.Cache
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(logger *common.Logger, c *client.FolioClient, cc *cache.Cache) *TransactionsHandler {
	return &TransactionsHandler{logger: logger, client: c, cache: cc}
}

// ServeHTTP routes /api/transactions and /api/transactions/{id}.
func (h *TransactionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "":
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case rest == "form-data":
		h.formData(w, r)
	default:
		id, err := strconv.Atoi(rest)
		if err != nil {
			WriteError(w, http.StatusNotFound, "unknown transactions route: "+rest)
			return
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// fetchTransactions returns the full-view rows, served from cache when a
// fresh copy exists.
func (h *TransactionsHandler) fetchTransactions(ctx context.Context) ([]models.TransactionFullView, error) {
	key := cache.Key(h.client.Session().UserID, "transactions", "")
	if h.cache != nil {
		if payload, ok := h.cache.Get(key); ok {
			var rows []models.TransactionFullView
			if err := json.Unmarshal(payload, &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := h.client.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if payload, err := json.Marshal(rows); err == nil {
			h.cache.Set(key, payload)
		}
	}
	return rows, nil
}

// list handles GET /api/transactions. Every query parameter is a column
// filter; rows must satisfy all of them.
func (h *TransactionsHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchTransactions(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list transactions failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	// Mark rows that already have a linked duplicate.
	txns := make([]models.Transaction, len(rows))
	for i := range rows {
		txns[i] = rows[i].Transaction
	}
	for i := range rows {
		rows[i].Duplicated = folio.HasBeenDuplicated(txns, rows[i].TransactionID)
	}

	raw := make(map[string]string)
	for column, values := range r.URL.Query() {
		if len(values) > 0 {
			raw[column] = values[0]
		}
	}
	filters := folio.ParseFilters(raw)

	filtered := rows[:0:0]
	for _, row := range rows {
		if folio.MatchRow(filters, transactionCells(row)) {
			filtered = append(filtered, row)
		}
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"transactions": filtered,
		"total":        len(rows),
		"filtered":     len(filtered),
	})
}

// transactionCells exposes the register's filterable columns.
func transactionCells(row models.TransactionFullView) map[string]folio.Cell {
	id := float64(row.TransactionID)

	return map[string]folio.Cell{
		"transaction_id":    folio.NumberCell(&id),
		"portfolio_name":    folio.TextCell(row.PortfolioName),
		"security_ticker":   folio.TextCell(row.SecurityTicker),
		"security_name":     folio.TextCell(row.SecurityName),
		"transaction_date":  folio.DateCell(row.TransactionDate),
		"transaction_type":  folio.TextCell(row.TransactionType),
		"transaction_qty":   folio.NumberCell(row.TransactionQty),
		"transaction_price": folio.NumberCell(row.TransactionPrice),
		"total_inv_amt":     folio.NumberCell(row.TotalInvAmt),
		"gross_amount":      folio.NumberCell(row.GrossAmount),
		"total_fee":         folio.NumberCell(row.TotalFee),
		"net_amount":        folio.NumberCell(row.NetAmount),
		"duplicated":        folio.BoolCell(row.Duplicated),
	}
}

func (h *TransactionsHandler) get(w http.ResponseWriter, r *http.Request, id int) {
	txn, err := h.client.GetTransaction(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int("transaction_id", id).Msg("get transaction failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, http.StatusOK, txn)
}

func (h *TransactionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var txn models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid transaction payload: "+err.Error())
		return
	}

	// The total is derived, never trusted from the payload.
	txn.TotalInvAmt = folio.ReconcileTotal(txn.TransactionQty, txn.TransactionPrice)

	created, err := h.client.CreateTransaction(r.Context(), txn)
	if err != nil {
		h.logger.Error().Err(err).Msg("create transaction failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.invalidate()
	WriteData(w, http.StatusCreated, created)
}

func (h *TransactionsHandler) update(w http.ResponseWriter, r *http.Request, id int) {
	var txn models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid transaction payload: "+err.Error())
		return
	}

	txn.TotalInvAmt = folio.ReconcileTotal(txn.TransactionQty, txn.TransactionPrice)

	updated, err := h.client.UpdateTransaction(r.Context(), id, txn)
	if err != nil {
		h.logger.Error().Err(err).Int("transaction_id", id).Msg("update transaction failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.invalidate()
	WriteData(w, http.StatusOK, updated)
}

func (h *TransactionsHandler) delete(w http.ResponseWriter, r *http.Request, id int) {
	if err := h.client.DeleteTransaction(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Int("transaction_id", id).Msg("delete transaction failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.invalidate()
	WriteData(w, http.StatusOK, map[string]int{"deleted": id})
}

// formData handles GET /api/transactions/form-data.
func (h *TransactionsHandler) formData(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	form, err := h.client.GetTransactionFormData(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("form data fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, http.StatusOK, form)
}

func (h *TransactionsHandler) invalidate() {
	if h.cache != nil {
		h.cache.Invalidate("transactions")
	}
}
