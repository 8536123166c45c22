// Package client implements the REST client for the folio-server backend.
// All state lives server-side; the portal holds nothing but the session
// token passed to the constructor.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/folioadmin/folio-portal/internal/models"
)

// maxResponseBody caps how much of a backend response is read.
const maxResponseBody = 1 << 20

// Session carries the authenticated caller's identity. The token goes out
// as a bearer header on every request.
type Session struct {
	Token  string
	UserID int
}

// LoginResult is the payload returned by POST /users/login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// RecalculateResult reports how many transactions the backend updated.
type RecalculateResult struct {
	Updated int `json:"updated"`
}

// PriceQuery narrows GET /security-prices.
type PriceQuery struct {
	Ticker   string
	FromDate string
	ToDate   string
}

// FolioClient communicates with the folio-server REST API.
type FolioClient struct {
	baseURL    string
	session    Session
	httpClient *http.Client
}

// NewFolioClient creates a client targeting the given folio-server URL.
func NewFolioClient(baseURL string, session Session) *FolioClient {
	return NewFolioClientWithTimeout(baseURL, session, 30*time.Second)
}

// NewFolioClientWithTimeout creates a client with an explicit per-request
// timeout.
func NewFolioClientWithTimeout(baseURL string, session Session, timeout time.Duration) *FolioClient {
	return &FolioClient{
		baseURL:    baseURL,
		session:    session,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Session returns the session this client authenticates with.
func (c *FolioClient) Session() Session { return c.session }

// do performs one request and returns the raw body of a 2xx response.
func (c *FolioClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach folio-server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// envelope is the backend's { status, data } wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// request performs one call and decodes the enveloped data into out.
func (c *FolioClient) request(ctx context.Context, method, path string, payload, out any) error {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

// Health checks backend reachability.
func (c *FolioClient) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// --- Users ---

func (c *FolioClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.request(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

func (c *FolioClient) GetUser(ctx context.Context, id int) (*models.User, error) {
	var out models.User
	if err := c.request(ctx, http.MethodGet, "/users/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	var out models.User
	if err := c.request(ctx, http.MethodPost, "/users", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) UpdateUser(ctx context.Context, id int, u models.User) (*models.User, error) {
	var out models.User
	if err := c.request(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) DeleteUser(ctx context.Context, id int) error {
	return c.request(ctx, http.MethodDelete, "/users/"+strconv.Itoa(id), nil, nil)
}

// Login authenticates against the backend and returns the bearer token for
// subsequent sessions.
func (c *FolioClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.request(ctx, http.MethodPost, "/users/login", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Portfolios ---

func (c *FolioClient) ListPortfolios(ctx context.Context) ([]models.Portfolio, error) {
	var out []models.Portfolio
	err := c.request(ctx, http.MethodGet, "/portfolios", nil, &out)
	return out, err
}

func (c *FolioClient) GetPortfolio(ctx context.Context, id int) (*models.Portfolio, error) {
	var out models.Portfolio
	if err := c.request(ctx, http.MethodGet, "/portfolios/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) CreatePortfolio(ctx context.Context, p models.Portfolio) (*models.Portfolio, error) {
	var out models.Portfolio
	if err := c.request(ctx, http.MethodPost, "/portfolios", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) UpdatePortfolio(ctx context.Context, id int, p models.Portfolio) (*models.Portfolio, error) {
	var out models.Portfolio
	if err := c.request(ctx, http.MethodPut, "/portfolios/"+strconv.Itoa(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) DeletePortfolio(ctx context.Context, id int) error {
	return c.request(ctx, http.MethodDelete, "/portfolios/"+strconv.Itoa(id), nil, nil)
}

// --- Securities ---

func (c *FolioClient) ListSecurities(ctx context.Context) ([]models.Security, error) {
	var out []models.Security
	err := c.request(ctx, http.MethodGet, "/securities", nil, &out)
	return out, err
}

func (c *FolioClient) GetSecurity(ctx context.Context, id int) (*models.Security, error) {
	var out models.Security
	if err := c.request(ctx, http.MethodGet, "/securities/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) CreateSecurity(ctx context.Context, s models.Security) (*models.Security, error) {
	var out models.Security
	if err := c.request(ctx, http.MethodPost, "/securities", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) UpdateSecurity(ctx context.Context, id int, s models.Security) (*models.Security, error) {
	var out models.Security
	if err := c.request(ctx, http.MethodPut, "/securities/"+strconv.Itoa(id), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) DeleteSecurity(ctx context.Context, id int) error {
	return c.request(ctx, http.MethodDelete, "/securities/"+strconv.Itoa(id), nil, nil)
}

// --- External platforms ---

func (c *FolioClient) ListExternalPlatforms(ctx context.Context) ([]models.ExternalPlatform, error) {
	var out []models.ExternalPlatform
	err := c.request(ctx, http.MethodGet, "/external-platforms", nil, &out)
	return out, err
}

func (c *FolioClient) GetExternalPlatform(ctx context.Context, id int) (*models.ExternalPlatform, error) {
	var out models.ExternalPlatform
	if err := c.request(ctx, http.MethodGet, "/external-platforms/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) CreateExternalPlatform(ctx context.Context, p models.ExternalPlatform) (*models.ExternalPlatform, error) {
	var out models.ExternalPlatform
	if err := c.request(ctx, http.MethodPost, "/external-platforms", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) UpdateExternalPlatform(ctx context.Context, id int, p models.ExternalPlatform) (*models.ExternalPlatform, error) {
	var out models.ExternalPlatform
	if err := c.request(ctx, http.MethodPut, "/external-platforms/"+strconv.Itoa(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) DeleteExternalPlatform(ctx context.Context, id int) error {
	return c.request(ctx, http.MethodDelete, "/external-platforms/"+strconv.Itoa(id), nil, nil)
}

// --- Holdings (read-only; computed server-side) ---

func (c *FolioClient) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	var out []models.Holding
	err := c.request(ctx, http.MethodGet, "/holdings", nil, &out)
	return out, err
}

// --- Security prices ---

func (c *FolioClient) ListSecurityPrices(ctx context.Context, q PriceQuery) ([]models.SecurityPrice, error) {
	params := url.Values{}
	if q.Ticker != "" {
		params.Set("ticker", q.Ticker)
	}
	if q.FromDate != "" {
		params.Set("from_date", q.FromDate)
	}
	if q.ToDate != "" {
		params.Set("to_date", q.ToDate)
	}
	path := "/security-prices"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []models.SecurityPrice
	err := c.request(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *FolioClient) CreateSecurityPrice(ctx context.Context, p models.SecurityPrice) (*models.SecurityPrice, error) {
	var out models.SecurityPrice
	if err := c.request(ctx, http.MethodPost, "/security-prices", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) DeleteSecurityPrice(ctx context.Context, id int) error {
	return c.request(ctx, http.MethodDelete, "/security-prices/"+strconv.Itoa(id), nil, nil)
}

// FetchPriceSeries fetches each ticker's price history concurrently and
// returns per-ticker rows sorted by price_date ascending. The first error
// wins; in-flight requests are cancelled through ctx.
func (c *FolioClient) FetchPriceSeries(ctx context.Context, tickers []string, fromDate, toDate string) (map[string][]models.SecurityPrice, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		result   = make(map[string][]models.SecurityPrice, len(tickers))
	)

	for _, ticker := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			rows, err := c.ListSecurityPrices(ctx, PriceQuery{
				Ticker:   ticker,
				FromDate: fromDate,
				ToDate:   toDate,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("price series for %s: %w", ticker, err)
					cancel()
				}
				return
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].PriceDate < rows[j].PriceDate })
			result[ticker] = rows
		}(ticker)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// --- Transactions ---

// ListTransactions returns the denormalised full view the backend serves
// for the transactions register.
func (c *FolioClient) ListTransactions(ctx context.Context) ([]models.TransactionFullView, error) {
	var out []models.TransactionFullView
	err := c.request(ctx, http.MethodGet, "/transactions", nil, &out)
	return out, err
}

func (c *FolioClient) GetTransaction(ctx context.Context, id int) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.request(ctx, http.MethodGet, "/transactions/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) CreateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.request(ctx, http.MethodPost, "/transactions", t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) UpdateTransaction(ctx context.Context, id int, t models.Transaction) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.request(ctx, http.MethodPut, "/transactions/"+strconv.Itoa(id), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *FolioClient) DeleteTransaction(ctx context.Context, id int) error {
	return c.request(ctx, http.MethodDelete, "/transactions/"+strconv.Itoa(id), nil, nil)
}

// GetTransactionFormData returns the reference data bundle for the
// transaction editor.
func (c *FolioClient) GetTransactionFormData(ctx context.Context) (*models.TransactionFormData, error) {
	var out models.TransactionFormData
	if err := c.request(ctx, http.MethodGet, "/transactions/form-data", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LinkedPairs returns original/duplicate transaction pairs joined through
// rel_transaction_id.
func (c *FolioClient) LinkedPairs(ctx context.Context) (*models.LinkedPairList, error) {
	var out models.LinkedPairList
	if err := c.request(ctx, http.MethodGet, "/transactions/linked-pairs", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PerformanceComparison returns the original-vs-duplicate performance
// series for one linked pair.
func (c *FolioClient) PerformanceComparison(ctx context.Context, pairID, fromDate, toDate string) (*models.PerformanceComparison, error) {
	params := url.Values{}
	if fromDate != "" {
		params.Set("from_date", fromDate)
	}
	if toDate != "" {
		params.Set("to_date", toDate)
	}
	path := "/transactions/performance-comparison/" + url.PathEscape(pairID)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out models.PerformanceComparison
	if err := c.request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecalculateFees asks the backend to recompute derived fee amounts across
// all transactions.
func (c *FolioClient) RecalculateFees(ctx context.Context) (*RecalculateResult, error) {
	var out RecalculateResult
	if err := c.request(ctx, http.MethodPost, "/transactions/recalculate-fees", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
