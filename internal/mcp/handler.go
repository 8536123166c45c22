package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
	"github.com/folioadmin/folio-portal/internal/config"
)

// Handler serves the MCP endpoint over streamable HTTP.
type Handler struct {
	logger     *common.Logger
	mcpServer  *mcpserver.MCPServer
	httpServer *mcpserver.StreamableHTTPServer
}

// NewHandler builds the MCP server and registers the portal tool set.
func NewHandler(logger *common.Logger, c *client.FolioClient, refTicker string) *Handler {
	srv := mcpserver.NewMCPServer(
		"folio-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	srv.AddTool(ListTransactionsTool(), ListTransactionsHandler(c))
	srv.AddTool(PreviewDuplicateTool(), PreviewDuplicateHandler(c, refTicker))
	srv.AddTool(PerformanceComparisonTool(), PerformanceComparisonHandler(c))
	srv.AddTool(PriceSeriesTool(), PriceSeriesHandler(c))
	srv.AddTool(RecalculateFeesTool(), RecalculateFeesHandler(c))
	srv.AddTool(VersionTool(), VersionToolHandler(c))

	httpServer := mcpserver.NewStreamableHTTPServer(srv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().Int("tools", 6).Msg("MCP handler initialized")

	return &Handler{
		logger:     logger,
		mcpServer:  srv,
		httpServer: httpServer,
	}
}

// ServeHTTP delegates to the streamable HTTP transport.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.httpServer.ServeHTTP(w, r)
}
