// Package mcp exposes the portal's operations as MCP tools over a
// streamable HTTP endpoint.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/config"
	"github.com/folioadmin/folio-portal/internal/folio"
)

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v into a text content result.
func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal result: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}
}

// ListTransactionsTool returns the list_transactions tool definition.
func ListTransactionsTool() mcp.Tool {
	return mcp.NewTool("list_transactions",
		mcp.WithDescription("List portfolio transactions. Optional column filters: plain text matches as a case-insensitive substring; numeric columns accept operator filters such as '>1000' or '<=50'."),
		mcp.WithString("security_ticker", mcp.Description("Filter by security ticker")),
		mcp.WithString("transaction_date", mcp.Description("Filter by exact date (YYYY-MM-DD)")),
		mcp.WithString("total_inv_amt", mcp.Description("Filter by invested amount, e.g. '>=1000'")),
	)
}

// ListTransactionsHandler routes list_transactions to the backend and
// applies the filters portal-side.
func ListTransactionsHandler(c *client.FolioClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rows, err := c.ListTransactions(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		raw := map[string]string{
			"security_ticker":  r.GetString("security_ticker", ""),
			"transaction_date": r.GetString("transaction_date", ""),
			"total_inv_amt":    r.GetString("total_inv_amt", ""),
		}
		filters := folio.ParseFilters(raw)

		filtered := rows[:0:0]
		for _, row := range rows {
			cells := map[string]folio.Cell{
				"security_ticker":  folio.TextCell(row.SecurityTicker),
				"transaction_date": folio.DateCell(row.TransactionDate),
				"total_inv_amt":    folio.NumberCell(row.TotalInvAmt),
			}
			if folio.MatchRow(filters, cells) {
				filtered = append(filtered, row)
			}
		}

		return jsonResult(map[string]any{
			"transactions": filtered,
			"total":        len(rows),
			"filtered":     len(filtered),
		}), nil
	}
}

// PreviewDuplicateTool returns the preview_duplicate tool definition.
func PreviewDuplicateTool() mcp.Tool {
	return mcp.NewTool("preview_duplicate",
		mcp.WithDescription("Preview a duplicate of a transaction priced in the reference security: same date and invested amount, quantity derived from the reference price on that date, fees zeroed. Nothing is created."),
		mcp.WithNumber("transaction_id", mcp.Required(), mcp.Description("Transaction to duplicate")),
	)
}

// PreviewDuplicateHandler builds the candidate without writing anything.
func PreviewDuplicateHandler(c *client.FolioClient, refTicker string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := r.GetInt("transaction_id", 0)
		if id <= 0 {
			return errorResult("Error: transaction_id parameter is required"), nil
		}

		original, err := c.GetTransaction(ctx, id)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		form, err := c.GetTransactionFormData(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		prices, err := c.ListSecurityPrices(ctx, client.PriceQuery{
			Ticker:   refTicker,
			FromDate: original.TransactionDate,
			ToDate:   original.TransactionDate,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		cand, err := folio.BuildDuplicate(*original, *form, c.Session().UserID, refTicker, prices)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(map[string]any{
			"transaction": cand.Transaction,
			"warning":     cand.Warning,
			"submittable": cand.Submittable(),
		}), nil
	}
}

// PerformanceComparisonTool returns the get_performance_comparison tool
// definition.
func PerformanceComparisonTool() mcp.Tool {
	return mcp.NewTool("get_performance_comparison",
		mcp.WithDescription("Get the performance series of a linked original/duplicate transaction pair."),
		mcp.WithString("pair_id", mcp.Required(), mcp.Description("Linked pair identifier")),
		mcp.WithString("from_date", mcp.Description("Range start (YYYY-MM-DD)")),
		mcp.WithString("to_date", mcp.Description("Range end (YYYY-MM-DD)")),
	)
}

// PerformanceComparisonHandler proxies the comparison to the backend.
func PerformanceComparisonHandler(c *client.FolioClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pairID := r.GetString("pair_id", "")
		if pairID == "" {
			return errorResult("Error: pair_id parameter is required"), nil
		}

		comparison, err := c.PerformanceComparison(ctx, pairID,
			r.GetString("from_date", ""), r.GetString("to_date", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(comparison), nil
	}
}

// PriceSeriesTool returns the get_price_series tool definition.
func PriceSeriesTool() mcp.Tool {
	return mcp.NewTool("get_price_series",
		mcp.WithDescription("Fetch aligned price and performance series for one or more tickers over a date range, plus summary metrics for the first ticker."),
		mcp.WithString("tickers", mcp.Required(), mcp.Description("Comma-separated tickers, e.g. 'AAPL,VOO'")),
		mcp.WithString("from_date", mcp.Description("Range start (YYYY-MM-DD)")),
		mcp.WithString("to_date", mcp.Description("Range end (YYYY-MM-DD)")),
	)
}

// PriceSeriesHandler fetches, aligns and summarises price histories.
func PriceSeriesHandler(c *client.FolioClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var tickers []string
		for _, t := range strings.Split(r.GetString("tickers", ""), ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t != "" {
				tickers = append(tickers, t)
			}
		}
		if len(tickers) == 0 {
			return errorResult("Error: tickers parameter is required"), nil
		}

		rows, err := c.FetchPriceSeries(ctx, tickers, r.GetString("from_date", ""), r.GetString("to_date", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
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

		return jsonResult(map[string]any{
			"dates":   dates,
			"series":  aligned,
			"metrics": folio.Metrics(series[tickers[0]]),
			"primary": tickers[0],
		}), nil
	}
}

// RecalculateFeesTool returns the recalculate_fees tool definition.
func RecalculateFeesTool() mcp.Tool {
	return mcp.NewTool("recalculate_fees",
		mcp.WithDescription("Trigger server-side recalculation of derived fee amounts across all transactions. Returns the number of updated rows."),
	)
}

// RecalculateFeesHandler triggers the backend recalculation.
func RecalculateFeesHandler(c *client.FolioClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := c.RecalculateFees(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(result), nil
	}
}

// versionInfo holds version fields for one component.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// VersionTool returns the get_version tool definition.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get folio-portal version and backend reachability. Use this to verify connectivity."),
	)
}

// VersionToolHandler combines portal version info with a backend probe.
func VersionToolHandler(c *client.FolioClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := map[string]any{
			"folio_portal": versionInfo{
				Version: config.GetVersion(),
				Build:   config.GetBuild(),
				Commit:  config.GetGitCommit(),
			},
		}

		// Graceful degradation when the backend is unreachable.
		if err := c.Health(ctx); err != nil {
			result["folio_server"] = map[string]string{"status": "unreachable", "error": err.Error()}
		} else {
			result["folio_server"] = map[string]string{"status": "ok"}
		}

		return jsonResult(result), nil
	}
}
