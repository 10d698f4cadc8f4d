package auth

import (
	"org-service/internal/apperr"
	"org-service/internal/model"
)

// AdminFinder is the slice of the store the gate needs to re-check live admin
// state.
type AdminFinder interface {
	FindAdminByID(id string) (*model.AdminUser, error)
}

// CallerContext identifies an authenticated admin and the organization it
// owns. It is produced by the gate and consumed by the authenticated
// lifecycle operations.
type CallerContext struct {
	AdminID        string
	Email          string
	OrganizationID string
}

// Gate verifies bearer tokens against live admin state. A token whose
// signature is still valid is rejected if its admin has since been
// deactivated or deleted.
type Gate struct {
	tokens *TokenIssuer
	admins AdminFinder
}

// NewGate creates a gate over the given token issuer and admin lookup.
func NewGate(tokens *TokenIssuer, admins AdminFinder) *Gate {
	return &Gate{tokens: tokens, admins: admins}
}

// Authenticate resolves a bearer token into a caller context. Every failure
// mode — missing token, bad signature, expiry, missing claims, inactive or
// absent admin — yields the same Unauthorized error so callers cannot probe
// which check failed.
func (g *Gate) Authenticate(token string) (*CallerContext, error) {
	if token == "" {
		return nil, errUnauthorized()
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, errUnauthorized()
	}
	if claims.AdminID == "" || claims.OrganizationID == "" {
		return nil, errUnauthorized()
	}

	admin, err := g.admins.FindAdminByID(claims.AdminID)
	if err != nil || admin == nil || !admin.IsActive {
		return nil, errUnauthorized()
	}

	return &CallerContext{
		AdminID:        admin.ID,
		Email:          admin.Email,
		OrganizationID: claims.OrganizationID,
	}, nil
}

func errUnauthorized() error {
	return apperr.Unauthorizedf("invalid authentication credentials")
}
