package auth

import "github.com/dmitrijs2005/admissions/internal/common"

// CanAccessApplication reports whether caller may read or write the
// application owned by targetUserID: owners and admins may.
func CanAccessApplication(caller *Identity, targetUserID string) bool {
	if caller == nil {
		return false
	}
	return caller.IsAdmin || caller.UserID == targetUserID
}

// RequireAdmin reports whether caller is an administrator.
func RequireAdmin(caller *Identity) bool {
	return caller != nil && caller.IsAdmin
}

// Authorize turns a guard decision into an error: ErrorUnauthorized when
// there is no caller, ErrorForbidden when the decision is negative.
func Authorize(caller *Identity, allowed bool) error {
	if caller == nil {
		return common.ErrorUnauthorized
	}
	if !allowed {
		return common.ErrorForbidden
	}
	return nil
}

// AuthorizeAdmin is Authorize(caller, RequireAdmin(caller)).
func AuthorizeAdmin(caller *Identity) error {
	return Authorize(caller, RequireAdmin(caller))
}
