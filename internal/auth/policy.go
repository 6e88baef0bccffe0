package auth

import (
	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

// Action is the kind of access a request asks for.
type Action int

const (
	// ActionRead covers list and get; it is open to anonymous callers.
	ActionRead Action = iota
	// ActionWrite covers create, update and delete on catalog data.
	ActionWrite
	// ActionAdmin covers account administration.
	ActionAdmin
)

// Authorize decides whether caller may perform action. A nil caller is
// anonymous. It returns nil, an authentication error (no caller) or an
// authorization error (caller lacks the role).
func Authorize(caller *models.User, action Action) error {
	if action == ActionRead {
		return nil
	}
	if caller == nil {
		return apperr.Authentication("Authentication credentials were not provided.")
	}
	if !caller.IsActive {
		return apperr.Authorization("User account is disabled.")
	}

	switch action {
	case ActionWrite:
		if caller.IsStaff {
			return nil
		}
	case ActionAdmin:
		if caller.IsSuperuser {
			return nil
		}
	}
	return apperr.Authorization("You do not have permission to perform this action.")
}
