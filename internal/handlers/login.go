package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
)

// LoginHandler relays credential checks to the backend and returns the
// bearer token a session carries. The portal itself stores nothing.
type LoginHandler struct {
	logger *common.Logger
	client *client.FolioClient
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(logger *common.Logger, c *client.FolioClient) *LoginHandler {
	return &LoginHandler{logger: logger, client: c}
}

// ServeHTTP handles POST /api/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid login payload: "+err.Error())
		return
	}
	if creds.Email == "" || creds.Password == "" {
		WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.client.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		h.logger.Warn().Err(err).Str("email", creds.Email).Msg("login failed")
		WriteError(w, http.StatusUnauthorized, "login failed")
		return
	}

	WriteData(w, http.StatusOK, result)
}
