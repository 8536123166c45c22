package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/server-health", s.app.ServerHealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)
	mux.HandleFunc("/api/login", s.app.LoginHandler.ServeHTTP)

	// The duplicate sub-route shares the /api/transactions/ prefix, so the
	// dispatch happens here rather than in the handler.
	mux.HandleFunc("/api/transactions", s.app.TransactionsHandler.ServeHTTP)
	mux.HandleFunc("/api/transactions/", s.handleTransactionSubroutes)

	mux.HandleFunc("/api/pairs", s.app.PairsHandler.ServeHTTP)
	mux.HandleFunc("/api/pairs/", s.app.PairsHandler.ServeHTTP)

	mux.HandleFunc("/api/price-series", s.app.PriceSeriesHandler.ServeHTTP)
	mux.HandleFunc("/api/recalculate-fees", s.app.FeesHandler.ServeHTTP)

	// Reference-data resources relayed to the backend.
	for _, resource := range []string{"portfolios", "securities", "external-platforms", "security-prices", "holdings", "users"} {
		mux.HandleFunc("/api/"+resource, s.app.EntitiesHandler.ServeHTTP)
		mux.HandleFunc("/api/"+resource+"/", s.app.EntitiesHandler.ServeHTTP)
	}

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleTransactionSubroutes routes /api/transactions/{id}/duplicate to the
// duplicate handler and everything else under the prefix to the register.
func (s *Server) handleTransactionSubroutes(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/duplicate") {
		s.app.DuplicateHandler.ServeHTTP(w, r)
		return
	}
	s.app.TransactionsHandler.ServeHTTP(w, r)
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
