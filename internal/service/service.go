package service

import (
	"context"

	"fdms-kiosk-backend/internal/domain"
)

// AdminIdentity is the outcome of a successful admin login: the opaque
// backend credential plus the resolved display name used for audit
// attribution.
type AdminIdentity struct {
	Token       string
	DisplayName string
}

type AdminService interface {
	// LoadSettings refreshes the cached kiosk branding. Best-effort: an
	// aborted fetch is silently dropped and any other failure falls back to
	// the cached or default settings. It never blocks kiosk startup.
	LoadSettings(ctx context.Context) domain.Settings

	// Settings returns the current cached branding.
	Settings() domain.Settings

	// Login verifies the admin password against the FDMS backend and
	// persists the session credential and display name.
	Login(ctx context.Context, password string) (*AdminIdentity, error)
}
