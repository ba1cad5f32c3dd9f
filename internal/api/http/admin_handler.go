package http

import (
	"errors"
	"net/http"

	"fdms-kiosk-backend/internal/remote"
	"fdms-kiosk-backend/internal/security"
	"fdms-kiosk-backend/internal/service"
)

// AdminHandler exposes the admin session gate and kiosk branding.
type AdminHandler struct {
	adminSvc service.AdminService
	tokens   security.TokenManager
}

func NewAdminHandler(adminSvc service.AdminService, tokens security.TokenManager) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, tokens: tokens}
}

// HandleLogin verifies the admin password against the FDMS backend and
// answers with a kiosk session token. Any failure surfaces as an inline
// message; the form stays retryable.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	identity, err := h.adminSvc.Login(r.Context(), req.Password)
	if err != nil {
		var reqErr *remote.RequestError
		if errors.As(err, &reqErr) {
			writeError(w, http.StatusUnauthorized, reqErr.Message)
			return
		}
		writeError(w, http.StatusBadGateway, remote.ErrorMessage(err, remote.DefaultFailureMessage))
		return
	}

	token, err := h.tokens.GenerateAdminToken(identity.DisplayName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to establish admin session")
		return
	}

	writeContent(w, http.StatusOK, map[string]string{
		"token": token,
		"name":  identity.DisplayName,
	})
}

// HandleSettings serves the cached kiosk branding.
func (h *AdminHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	writeContent(w, http.StatusOK, h.adminSvc.Settings())
}

// HandleRefreshSettings re-fetches branding on demand. Admin only.
func (h *AdminHandler) HandleRefreshSettings(w http.ResponseWriter, r *http.Request) {
	writeContent(w, http.StatusOK, h.adminSvc.LoadSettings(r.Context()))
}

// HandleSession echoes the authenticated admin identity.
func (h *AdminHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	writeContent(w, http.StatusOK, map[string]string{"name": AdminName(r.Context())})
}
