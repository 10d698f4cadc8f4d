package service

import (
	"time"

	"go.uber.org/zap"

	"org-service/internal/apperr"
	"org-service/internal/audit"
	"org-service/internal/auth"
)

// LoginResult is returned to the transport layer on successful
// authentication.
type LoginResult struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	ExpiresIn      int    `json:"expires_in"`
	AdminID        string `json:"admin_id"`
	OrganizationID string `json:"organization_id"`
}

// AuthService authenticates admins and issues session tokens.
type AuthService struct {
	store  Store
	tokens *auth.TokenIssuer
	audit  Auditor
	log    *zap.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(st Store, tokens *auth.TokenIssuer, auditor Auditor, log *zap.Logger) *AuthService {
	return &AuthService{store: st, tokens: tokens, audit: auditor, log: log}
}

// Login verifies the admin credentials and mints a session token. Every
// failure mode yields the same Unauthorized error.
func (s *AuthService) Login(email, password string, meta RequestMeta) (*LoginResult, error) {
	admin, err := s.store.FindAdminByEmail(email)
	if err != nil {
		s.log.Error("admin lookup failed", zap.Error(err))
		return nil, apperr.Internalf("login failed: %v", err)
	}
	if admin == nil || !admin.IsActive {
		return nil, apperr.Unauthorizedf("invalid email or password")
	}

	if !auth.VerifyPassword(password, admin.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("email", email))
		return nil, apperr.Unauthorizedf("invalid email or password")
	}

	now := time.Now().UTC()
	if err := s.store.UpdateAdminFields(admin.ID, map[string]interface{}{
		"last_login": now,
	}); err != nil {
		s.log.Error("failed to update last login", zap.Error(err))
	}

	token, err := s.tokens.Issue(admin.ID, admin.Email, admin.OrganizationID)
	if err != nil {
		s.log.Error("failed to issue token", zap.Error(err))
		return nil, apperr.Internalf("login failed: %v", err)
	}

	s.audit.Record(audit.Entry{
		Action:     "admin_login",
		AdminEmail: email,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details:    map[string]interface{}{"organization_id": admin.OrganizationID},
		Success:    true,
	})

	s.log.Info("Admin login successful", zap.String("email", email))

	return &LoginResult{
		AccessToken:    token,
		TokenType:      "bearer",
		ExpiresIn:      int(s.tokens.TTL().Seconds()),
		AdminID:        admin.ID,
		OrganizationID: admin.OrganizationID,
	}, nil
}

// Logout records the logout for the audit trail. Tokens are stateless, so
// there is nothing to revoke server-side; the client discards its token.
func (s *AuthService) Logout(caller *auth.CallerContext, meta RequestMeta) {
	s.audit.Record(audit.Entry{
		Action:     "admin_logout",
		AdminEmail: caller.Email,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details:    map[string]interface{}{"organization_id": caller.OrganizationID},
		Success:    true,
	})

	s.log.Info("Admin logout", zap.String("email", caller.Email))
}
