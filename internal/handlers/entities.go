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

// EntitiesHandler relays the backend's reference-entity CRUD surface:
// portfolios, securities, external platforms, security prices, holdings,
// and users. Lists
// accept the same column filters as the transactions register and are
// served from cache when fresh.
type EntitiesHandler struct {
	logger *common.Logger
	client *client.FolioClient
	cache  *cache.Cache
}

// NewEntitiesHandler creates a new entities handler.
func NewEntitiesHandler(logger *common.Logger, c *client.FolioClient, cc *cache.Cache) *EntitiesHandler {
	return &EntitiesHandler{logger: logger, client: c, cache: cc}
}

// ServeHTTP routes /api/{resource} and /api/{resource}/{id}.
func (h *EntitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	resource, idStr, hasID := strings.Cut(rest, "/")

	var id int
	if hasID {
		var err error
		id, err = strconv.Atoi(idStr)
		if err != nil {
			WriteError(w, http.StatusNotFound, "invalid id: "+idStr)
			return
		}
	}

	switch resource {
	case "portfolios":
		h.portfolios(w, r, id, hasID)
	case "securities":
		h.securities(w, r, id, hasID)
	case "external-platforms":
		h.externalPlatforms(w, r, id, hasID)
	case "security-prices":
		h.securityPrices(w, r, id, hasID)
	case "holdings":
		h.holdings(w, r, hasID)
	case "users":
		h.users(w, r, id, hasID)
	default:
		WriteError(w, http.StatusNotFound, "unknown resource: "+resource)
	}
}

// queryFilters parses every query parameter as a column filter.
func queryFilters(r *http.Request) map[string]folio.Predicate {
	raw := make(map[string]string)
	for column, values := range r.URL.Query() {
		if len(values) > 0 {
			raw[column] = values[0]
		}
	}
	return folio.ParseFilters(raw)
}

// cachedList serves a list payload from cache or loads it via fetch. The
// query string distinguishes narrowed fetches of the same resource.
func cachedList[T any](h *EntitiesHandler, ctx context.Context, resource, query string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := cache.Key(h.client.Session().UserID, resource, query)
	if h.cache != nil {
		if payload, ok := h.cache.Get(key); ok {
			var rows []T
			if err := json.Unmarshal(payload, &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := fetch(ctx)
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

// writeFiltered applies the request's filters and writes the rows.
func writeFiltered[T any](w http.ResponseWriter, r *http.Request, rows []T, cells func(T) map[string]folio.Cell) {
	filters := queryFilters(r)
	filtered := rows[:0:0]
	for _, row := range rows {
		if folio.MatchRow(filters, cells(row)) {
			filtered = append(filtered, row)
		}
	}
	WriteData(w, http.StatusOK, filtered)
}

func (h *EntitiesHandler) relayError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)
	WriteError(w, http.StatusBadGateway, err.Error())
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return payload, false
	}
	return payload, true
}

// --- Portfolios ---

func (h *EntitiesHandler) portfolios(w http.ResponseWriter, r *http.Request, id int, hasID bool) {
	switch {
	case !hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		rows, err := cachedList(h, r.Context(), "portfolios", "", h.client.ListPortfolios)
		if err != nil {
			h.relayError(w, err, "list portfolios failed")
			return
		}
		writeFiltered(w, r, rows, portfolioCells)
	case !hasID && r.Method == http.MethodPost:
		payload, ok := decodeBody[models.Portfolio](w, r)
		if !ok {
			return
		}
		created, err := h.client.CreatePortfolio(r.Context(), payload)
		if err != nil {
			h.relayError(w, err, "create portfolio failed")
			return
		}
		h.invalidate("portfolios")
		WriteData(w, http.StatusCreated, created)
	case hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		p, err := h.client.GetPortfolio(r.Context(), id)
		if err != nil {
			h.relayError(w, err, "get portfolio failed")
			return
		}
		WriteData(w, http.StatusOK, p)
	case hasID && r.Method == http.MethodPut:
		payload, ok := decodeBody[models.Portfolio](w, r)
		if !ok {
			return
		}
		updated, err := h.client.UpdatePortfolio(r.Context(), id, payload)
		if err != nil {
			h.relayError(w, err, "update portfolio failed")
			return
		}
		h.invalidate("portfolios")
		WriteData(w, http.StatusOK, updated)
	case hasID && r.Method == http.MethodDelete:
		if err := h.client.DeletePortfolio(r.Context(), id); err != nil {
			h.relayError(w, err, "delete portfolio failed")
			return
		}
		h.invalidate("portfolios")
		WriteData(w, http.StatusOK, map[string]int{"deleted": id})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func portfolioCells(p models.Portfolio) map[string]folio.Cell {
	id := float64(p.PortfolioID)
	userID := float64(p.UserID)
	return map[string]folio.Cell{
		"portfolio_id": folio.NumberCell(&id),
		"user_id":      folio.NumberCell(&userID),
		"name":         folio.TextCell(p.Name),
		"open_date":    folio.DateCell(p.OpenDate),
	}
}

// --- Securities ---

func (h *EntitiesHandler) securities(w http.ResponseWriter, r *http.Request, id int, hasID bool) {
	switch {
	case !hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		rows, err := cachedList(h, r.Context(), "securities", "", h.client.ListSecurities)
		if err != nil {
			h.relayError(w, err, "list securities failed")
			return
		}
		writeFiltered(w, r, rows, securityCells)
	case !hasID && r.Method == http.MethodPost:
		payload, ok := decodeBody[models.Security](w, r)
		if !ok {
			return
		}
		created, err := h.client.CreateSecurity(r.Context(), payload)
		if err != nil {
			h.relayError(w, err, "create security failed")
			return
		}
		h.invalidate("securities")
		WriteData(w, http.StatusCreated, created)
	case hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		s, err := h.client.GetSecurity(r.Context(), id)
		if err != nil {
			h.relayError(w, err, "get security failed")
			return
		}
		WriteData(w, http.StatusOK, s)
	case hasID && r.Method == http.MethodPut:
		payload, ok := decodeBody[models.Security](w, r)
		if !ok {
			return
		}
		updated, err := h.client.UpdateSecurity(r.Context(), id, payload)
		if err != nil {
			h.relayError(w, err, "update security failed")
			return
		}
		h.invalidate("securities")
		WriteData(w, http.StatusOK, updated)
	case hasID && r.Method == http.MethodDelete:
		if err := h.client.DeleteSecurity(r.Context(), id); err != nil {
			h.relayError(w, err, "delete security failed")
			return
		}
		h.invalidate("securities")
		WriteData(w, http.StatusOK, map[string]int{"deleted": id})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func securityCells(s models.Security) map[string]folio.Cell {
	id := float64(s.SecurityID)
	return map[string]folio.Cell{
		"security_id":       folio.NumberCell(&id),
		"ticker":            folio.TextCell(s.Ticker),
		"name":              folio.TextCell(s.Name),
		"company_name":      folio.TextCell(s.CompanyName),
		"security_currency": folio.TextCell(s.SecurityCurrency),
		"is_private":        folio.BoolCell(s.IsPrivate),
	}
}

// --- External platforms ---

func (h *EntitiesHandler) externalPlatforms(w http.ResponseWriter, r *http.Request, id int, hasID bool) {
	switch {
	case !hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		rows, err := cachedList(h, r.Context(), "external-platforms", "", h.client.ListExternalPlatforms)
		if err != nil {
			h.relayError(w, err, "list external platforms failed")
			return
		}
		writeFiltered(w, r, rows, platformCells)
	case !hasID && r.Method == http.MethodPost:
		payload, ok := decodeBody[models.ExternalPlatform](w, r)
		if !ok {
			return
		}
		created, err := h.client.CreateExternalPlatform(r.Context(), payload)
		if err != nil {
			h.relayError(w, err, "create external platform failed")
			return
		}
		h.invalidate("external-platforms")
		WriteData(w, http.StatusCreated, created)
	case hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		p, err := h.client.GetExternalPlatform(r.Context(), id)
		if err != nil {
			h.relayError(w, err, "get external platform failed")
			return
		}
		WriteData(w, http.StatusOK, p)
	case hasID && r.Method == http.MethodPut:
		payload, ok := decodeBody[models.ExternalPlatform](w, r)
		if !ok {
			return
		}
		updated, err := h.client.UpdateExternalPlatform(r.Context(), id, payload)
		if err != nil {
			h.relayError(w, err, "update external platform failed")
			return
		}
		h.invalidate("external-platforms")
		WriteData(w, http.StatusOK, updated)
	case hasID && r.Method == http.MethodDelete:
		if err := h.client.DeleteExternalPlatform(r.Context(), id); err != nil {
			h.relayError(w, err, "delete external platform failed")
			return
		}
		h.invalidate("external-platforms")
		WriteData(w, http.StatusOK, map[string]int{"deleted": id})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func platformCells(p models.ExternalPlatform) map[string]folio.Cell {
	id := float64(p.ExternalPlatformID)
	return map[string]folio.Cell{
		"external_platform_id": folio.NumberCell(&id),
		"name":                 folio.TextCell(p.Name),
		"platform_type":        folio.TextCell(p.PlatformType),
	}
}

// --- Security prices ---

// securityPrices relays the price admin surface. The ticker/from_date/
// to_date parameters narrow the backend query; every other parameter is a
// column filter applied portal-side. Prices are created and deleted, never
// edited in place.
func (h *EntitiesHandler) securityPrices(w http.ResponseWriter, r *http.Request, id int, hasID bool) {
	switch {
	case !hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		q := client.PriceQuery{
			Ticker:   strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker"))),
			FromDate: r.URL.Query().Get("from_date"),
			ToDate:   r.URL.Query().Get("to_date"),
		}
		rows, err := cachedList(h, r.Context(), "security-prices",
			q.Ticker+":"+q.FromDate+":"+q.ToDate,
			func(ctx context.Context) ([]models.SecurityPrice, error) {
				return h.client.ListSecurityPrices(ctx, q)
			})
		if err != nil {
			h.relayError(w, err, "list security prices failed")
			return
		}

		raw := make(map[string]string)
		for column, values := range r.URL.Query() {
			if column == "ticker" || column == "from_date" || column == "to_date" {
				continue
			}
			if len(values) > 0 {
				raw[column] = values[0]
			}
		}
		filters := folio.ParseFilters(raw)
		filtered := rows[:0:0]
		for _, row := range rows {
			if folio.MatchRow(filters, priceCells(row)) {
				filtered = append(filtered, row)
			}
		}
		WriteData(w, http.StatusOK, filtered)
	case !hasID && r.Method == http.MethodPost:
		payload, ok := decodeBody[models.SecurityPrice](w, r)
		if !ok {
			return
		}
		created, err := h.client.CreateSecurityPrice(r.Context(), payload)
		if err != nil {
			h.relayError(w, err, "create security price failed")
			return
		}
		h.invalidate("security-prices")
		WriteData(w, http.StatusCreated, created)
	case hasID && r.Method == http.MethodDelete:
		if err := h.client.DeleteSecurityPrice(r.Context(), id); err != nil {
			h.relayError(w, err, "delete security price failed")
			return
		}
		h.invalidate("security-prices")
		WriteData(w, http.StatusOK, map[string]int{"deleted": id})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func priceCells(p models.SecurityPrice) map[string]folio.Cell {
	id := float64(p.SecurityPriceID)
	secID := float64(p.SecurityID)
	price := p.Price
	mcap := p.MarketCap
	return map[string]folio.Cell{
		"security_price_id": folio.NumberCell(&id),
		"security_id":       folio.NumberCell(&secID),
		"price_date":        folio.DateCell(p.PriceDate),
		"price":             folio.NumberCell(&price),
		"market_cap":        folio.NumberCell(&mcap),
		"price_currency":    folio.TextCell(p.PriceCurrency),
		"addl_notes":        folio.TextCell(p.AddlNotes),
	}
}

// --- Holdings (read-only) ---

func (h *EntitiesHandler) holdings(w http.ResponseWriter, r *http.Request, hasID bool) {
	if hasID || !RequireMethod(w, r, "GET") {
		if hasID {
			WriteError(w, http.StatusNotFound, "holdings are listed, not addressed by id")
		}
		return
	}

	rows, err := cachedList(h, r.Context(), "holdings", "", h.client.ListHoldings)
	if err != nil {
		h.relayError(w, err, "list holdings failed")
		return
	}
	writeFiltered(w, r, rows, holdingCells)
}

func holdingCells(hd models.Holding) map[string]folio.Cell {
	qty := hd.Quantity
	mv := hd.MarketValue
	gl := hd.UnrealGainLossAmt
	glPct := hd.UnrealGainLossPerc
	return map[string]folio.Cell{
		"holding_dt":            folio.DateCell(hd.HoldingDt),
		"quantity":              folio.NumberCell(&qty),
		"market_value":          folio.NumberCell(&mv),
		"unreal_gain_loss_amt":  folio.NumberCell(&gl),
		"unreal_gain_loss_perc": folio.NumberCell(&glPct),
	}
}

// --- Users ---

func (h *EntitiesHandler) users(w http.ResponseWriter, r *http.Request, id int, hasID bool) {
	switch {
	case !hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		rows, err := cachedList(h, r.Context(), "users", "", h.client.ListUsers)
		if err != nil {
			h.relayError(w, err, "list users failed")
			return
		}
		writeFiltered(w, r, rows, userCells)
	case !hasID && r.Method == http.MethodPost:
		payload, ok := decodeBody[models.User](w, r)
		if !ok {
			return
		}
		created, err := h.client.CreateUser(r.Context(), payload)
		if err != nil {
			h.relayError(w, err, "create user failed")
			return
		}
		h.invalidate("users")
		WriteData(w, http.StatusCreated, created)
	case hasID && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		u, err := h.client.GetUser(r.Context(), id)
		if err != nil {
			h.relayError(w, err, "get user failed")
			return
		}
		WriteData(w, http.StatusOK, u)
	case hasID && r.Method == http.MethodPut:
		payload, ok := decodeBody[models.User](w, r)
		if !ok {
			return
		}
		updated, err := h.client.UpdateUser(r.Context(), id, payload)
		if err != nil {
			h.relayError(w, err, "update user failed")
			return
		}
		h.invalidate("users")
		WriteData(w, http.StatusOK, updated)
	case hasID && r.Method == http.MethodDelete:
		if err := h.client.DeleteUser(r.Context(), id); err != nil {
			h.relayError(w, err, "delete user failed")
			return
		}
		h.invalidate("users")
		WriteData(w, http.StatusOK, map[string]int{"deleted": id})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func userCells(u models.User) map[string]folio.Cell {
	id := float64(u.UserID)
	return map[string]folio.Cell{
		"user_id":    folio.NumberCell(&id),
		"first_name": folio.TextCell(u.FirstName),
		"last_name":  folio.TextCell(u.LastName),
		"email":      folio.TextCell(u.Email),
		"is_admin":   folio.BoolCell(u.IsAdmin),
	}
}

func (h *EntitiesHandler) invalidate(resource string) {
	if h.cache != nil {
		h.cache.Invalidate(resource)
	}
}
