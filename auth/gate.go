package auth

import (
	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

// Errors returned by the authorization gates. Their messages are part of the API.
var (
	ErrUnauthorized = errs.Errorf(errs.EUNAUTHORIZED, "unauthorized")
	ErrForbidden    = errs.Errorf(errs.EFORBIDDEN, "forbidden")
)

// AuthorizeUser lets through any authenticated principal except the administrator,
// who must not use the regular user routes.
func AuthorizeUser(user *domain.User) error {
	if user == nil {
		return ErrUnauthorized
	}
	if user.IsRoot() {
		return ErrForbidden
	}
	return nil
}

// AuthorizeAdmin only lets through the administrator.
func AuthorizeAdmin(user *domain.User) error {
	if user == nil {
		return ErrUnauthorized
	}
	if !user.IsRoot() {
		return ErrForbidden
	}
	return nil
}
