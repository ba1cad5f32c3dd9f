package http

import (
	"github.com/gorilla/mux"

	"fdms-kiosk-backend/internal/security"
	"fdms-kiosk-backend/internal/service"
	"fdms-kiosk-backend/internal/workflow"
)

// RegisterRoutes wires the kiosk API onto the router.
func RegisterRoutes(router *mux.Router, adminSvc service.AdminService, tokens security.TokenManager, manager *workflow.Manager) {
	adminHandler := NewAdminHandler(adminSvc, tokens)
	workflowHandler := NewWorkflowHandler(manager)

	api := router.PathPrefix("/api").Subrouter()

	// Public kiosk surface
	api.HandleFunc("/settings", adminHandler.HandleSettings).Methods("GET")
	api.HandleFunc("/admin/login", adminHandler.HandleLogin).Methods("POST")

	api.HandleFunc("/kiosk/sessions", workflowHandler.HandleCreate).Methods("POST")
	api.HandleFunc("/kiosk/sessions/{id}", workflowHandler.HandleState).Methods("GET")
	api.HandleFunc("/kiosk/sessions/{id}/mode", workflowHandler.HandleChoose).Methods("POST")
	api.HandleFunc("/kiosk/sessions/{id}/back", workflowHandler.HandleBack).Methods("POST")
	api.HandleFunc("/kiosk/sessions/{id}/assets", workflowHandler.HandleSearch).Methods("GET")
	api.HandleFunc("/kiosk/sessions/{id}/checkout", workflowHandler.HandleSubmitCheckout).Methods("POST")
	api.HandleFunc("/kiosk/sessions/{id}/return", workflowHandler.HandleSubmitReturn).Methods("POST")
	api.HandleFunc("/kiosk/sessions/{id}/confirm", workflowHandler.HandleConfirm).Methods("POST")
	api.HandleFunc("/kiosk/sessions/{id}/cancel", workflowHandler.HandleCancel).Methods("POST")

	// Admin area
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin(tokens))
	admin.HandleFunc("/session", adminHandler.HandleSession).Methods("GET")
	admin.HandleFunc("/settings/refresh", adminHandler.HandleRefreshSettings).Methods("POST")
}
