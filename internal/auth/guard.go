package auth

import "looplane/internal/apperrors"

// Owned is implemented by anything with exactly one owning identity.
type Owned interface {
	Owner() string
}

// RequireAuthenticated fails with UNAUTHENTICATED for anonymous callers.
func RequireAuthenticated(rc RequestContext) (Claims, error) {
	claims, ok := rc.Identity()
	if !ok {
		return Claims{}, apperrors.Unauthenticated("authentication required, no token provided")
	}
	return claims, nil
}

// RequireOwner fails with FORBIDDEN unless the caller owns res. It must run
// before any mutating storage call.
func RequireOwner(res Owned, rc RequestContext) error {
	claims, ok := rc.Identity()
	if !ok || claims.SubjectID != res.Owner() {
		return apperrors.Forbidden("not authorized to perform this action")
	}
	return nil
}
