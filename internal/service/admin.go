package service

import (
	"context"
	"errors"
	"sync"

	"fdms-kiosk-backend/internal/domain"
	"fdms-kiosk-backend/internal/logger"
	"fdms-kiosk-backend/internal/remote"
	"fdms-kiosk-backend/internal/session"
)

// loginFailedMessage is shown for every login failure mode, including a
// success envelope that arrives without a token.
const loginFailedMessage = "Verification Failed: Access Unauthorized"

// fallbackAdminName is used when the login payload carries no usable name.
const fallbackAdminName = "Admin Officer"

type adminService struct {
	settingsAPI remote.SettingsAPI
	adminAPI    remote.AdminAPI
	sessions    session.Store

	mu       sync.RWMutex
	settings domain.Settings
}

func NewAdminService(settingsAPI remote.SettingsAPI, adminAPI remote.AdminAPI, sessions session.Store) AdminService {
	return &adminService{
		settingsAPI: settingsAPI,
		adminAPI:    adminAPI,
		sessions:    sessions,
		settings:    domain.DefaultSettings(),
	}
}

func (s *adminService) LoadSettings(ctx context.Context) domain.Settings {
	env, err := s.settingsAPI.Get(ctx)
	if err != nil {
		// An abort tied to kiosk shutdown is not a failure; drop it without
		// logging. Anything else is logged and never blocks rendering.
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Settings load failed", "error", err)
		}
		return s.Settings()
	}

	settings, err := remote.Content(env, domain.DefaultSettings(), "settings")
	if err != nil {
		logger.Warn("Settings payload unusable", "error", err)
		return s.Settings()
	}
	if settings.CompanyName == "" {
		settings.CompanyName = domain.DefaultSettings().CompanyName
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return settings
}

func (s *adminService) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// loginPayload covers the shapes the backend has been seen to answer login
// with; the display name lives under a different key depending on version.
type loginPayload struct {
	Token     string `json:"token"`
	FullName  string `json:"fullName"`
	Name      string `json:"name"`
	AdminName string `json:"adminName"`
	Email     string `json:"email"`
}

func (s *adminService) Login(ctx context.Context, password string) (*AdminIdentity, error) {
	env, err := s.adminAPI.Login(ctx, password)
	if err != nil {
		return nil, err
	}
	if err := remote.EnsureSuccess(env, loginFailedMessage); err != nil {
		return nil, err
	}

	payload, err := remote.Content(env, loginPayload{}, "login response")
	if err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, &remote.RequestError{Message: loginFailedMessage}
	}

	name := firstNonEmpty(payload.FullName, payload.Name, payload.AdminName, payload.Email)
	if name == "" {
		name = fallbackAdminName
	}

	if err := s.sessions.Set(ctx, session.KeyAuthToken, payload.Token); err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, session.KeyAdminSessionName, name); err != nil {
		return nil, err
	}

	logger.Info("Admin session established", "name", name)
	return &AdminIdentity{Token: payload.Token, DisplayName: name}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
