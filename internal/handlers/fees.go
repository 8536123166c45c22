package handlers

import (
	"net/http"

	"github.com/folioadmin/folio-portal/internal/cache"
	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
)

// FeesHandler triggers the backend's fee recalculation. The computation is
// opaque to the portal; only the updated row count comes back.
type FeesHandler struct {
	logger *common.Logger
	client *client.FolioClient
	cache  *cache.Cache
}

// NewFeesHandler creates a new fees handler.
func NewFeesHandler(logger *common.Logger, c *client.FolioClient, cc *cache.Cache) *FeesHandler {
	return &FeesHandler{logger: logger, client: c, cache: cc}
}

// ServeHTTP handles POST /api/recalculate-fees.
func (h *FeesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	result, err := h.client.RecalculateFees(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("fee recalculation failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	if h.cache != nil {
		h.cache.Invalidate("transactions")
	}

	h.logger.Info().Int("updated", result.Updated).Msg("fee recalculation complete")
	WriteData(w, http.StatusOK, result)
}
