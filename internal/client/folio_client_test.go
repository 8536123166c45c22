package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/folioadmin/folio-portal/internal/models"
)

func writeData(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"status": "ok", "data": data}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestListTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("expected bearer header, got %q", got)
		}
		writeData(t, w, []models.TransactionFullView{
			{Transaction: models.Transaction{TransactionID: 1}, SecurityTicker: "AAPL"},
		})
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{Token: "tok-123", UserID: 7})
	rows, err := c.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(rows) != 1 || rows[0].TransactionID != 1 || rows[0].SecurityTicker != "AAPL" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		var in models.Transaction
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if in.RelTransactionID == nil || *in.RelTransactionID != 42 {
			t.Errorf("expected rel_transaction_id 42, got %v", in.RelTransactionID)
		}
		in.TransactionID = 99
		writeData(t, w, in)
	}))
	defer srv.Close()

	rel := 42
	c := NewFolioClient(srv.URL, Session{Token: "t"})
	created, err := c.CreateTransaction(context.Background(), models.Transaction{RelTransactionID: &rel})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if created.TransactionID != 99 {
		t.Errorf("expected assigned id 99, got %d", created.TransactionID)
	}
}

func TestErrorSurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "transaction not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	_, err := c.GetTransaction(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "server returned 404") {
		t.Errorf("expected status in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "transaction not found") {
		t.Errorf("expected body in error, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	var called atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/transactions/7" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		called.Store(true)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	if err := c.DeleteTransaction(context.Background(), 7); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if !called.Load() {
		t.Error("backend never called")
	}
}

func TestGetTransactionFormData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/form-data" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeData(t, w, models.TransactionFormData{
			Securities: []models.Security{{SecurityID: 2, Ticker: "VOO"}},
		})
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	form, err := c.GetTransactionFormData(context.Background())
	if err != nil {
		t.Fatalf("GetTransactionFormData failed: %v", err)
	}
	if len(form.Securities) != 1 || form.Securities[0].Ticker != "VOO" {
		t.Errorf("unexpected form data: %+v", form)
	}
}

func TestGetExternalPlatform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/external-platforms/3" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeData(t, w, models.ExternalPlatform{ExternalPlatformID: 3, Name: "Fidelity"})
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	p, err := c.GetExternalPlatform(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetExternalPlatform failed: %v", err)
	}
	if p.Name != "Fidelity" {
		t.Errorf("unexpected platform: %+v", p)
	}
}

func TestSecurityPriceCreateAndDelete(t *testing.T) {
	var deleted atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/security-prices":
			var p models.SecurityPrice
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				t.Fatalf("decode create body: %v", err)
			}
			p.SecurityPriceID = 9
			writeData(t, w, p)
		case r.Method == http.MethodDelete && r.URL.Path == "/security-prices/9":
			deleted.Store(true)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	created, err := c.CreateSecurityPrice(context.Background(), models.SecurityPrice{SecurityID: 2, PriceDate: "2024-04-01", Price: 60})
	if err != nil {
		t.Fatalf("CreateSecurityPrice failed: %v", err)
	}
	if created.SecurityPriceID != 9 {
		t.Errorf("unexpected created price: %+v", created)
	}
	if err := c.DeleteSecurityPrice(context.Background(), 9); err != nil {
		t.Fatalf("DeleteSecurityPrice failed: %v", err)
	}
	if !deleted.Load() {
		t.Error("backend delete never called")
	}
}

func TestPerformanceComparisonQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/performance-comparison/42-99" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("from_date") != "2024-01-01" || q.Get("to_date") != "2024-06-30" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeData(t, w, models.PerformanceComparison{})
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	_, err := c.PerformanceComparison(context.Background(), "42-99", "2024-01-01", "2024-06-30")
	if err != nil {
		t.Fatalf("PerformanceComparison failed: %v", err)
	}
}

func TestRecalculateFees(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions/recalculate-fees" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeData(t, w, RecalculateResult{Updated: 12})
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	res, err := c.RecalculateFees(context.Background())
	if err != nil {
		t.Fatalf("RecalculateFees failed: %v", err)
	}
	if res.Updated != 12 {
		t.Errorf("expected 12 updated, got %d", res.Updated)
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode creds: %v", err)
		}
		if creds["email"] != "admin@example.com" {
			t.Errorf("unexpected email %q", creds["email"])
		}
		writeData(t, w, LoginResult{Token: "tok-999", User: models.User{UserID: 1}})
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	res, err := c.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Token != "tok-999" || res.User.UserID != 1 {
		t.Errorf("unexpected login result: %+v", res)
	}
}

func TestFetchPriceSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/security-prices" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("from_date") != "2024-01-01" {
			t.Errorf("unexpected from_date %q", q.Get("from_date"))
		}
		// Out of order on purpose; the client sorts by price_date.
		switch q.Get("ticker") {
		case "AAPL":
			writeData(t, w, []models.SecurityPrice{
				{PriceDate: "2024-01-02", Price: 110},
				{PriceDate: "2024-01-01", Price: 100},
			})
		case "VOO":
			writeData(t, w, []models.SecurityPrice{
				{PriceDate: "2024-01-01", Price: 50},
			})
		default:
			t.Errorf("unexpected ticker %q", q.Get("ticker"))
		}
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	series, err := c.FetchPriceSeries(context.Background(), []string{"AAPL", "VOO"}, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("FetchPriceSeries failed: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	aapl := series["AAPL"]
	if len(aapl) != 2 || aapl[0].PriceDate != "2024-01-01" || aapl[1].PriceDate != "2024-01-02" {
		t.Errorf("expected date-sorted AAPL rows, got %+v", aapl)
	}
}

func TestFetchPriceSeriesFirstErrorWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ticker") == "BAD" {
			http.Error(w, "unknown ticker", http.StatusBadRequest)
			return
		}
		writeData(t, w, []models.SecurityPrice{})
	}))
	defer srv.Close()

	c := NewFolioClient(srv.URL, Session{})
	_, err := c.FetchPriceSeries(context.Background(), []string{"AAPL", "BAD"}, "", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "BAD") {
		t.Errorf("expected failing ticker named in error, got %v", err)
	}
}

func TestRequestHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewFolioClient(srv.URL, Session{})
	_, err := c.ListUsers(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
