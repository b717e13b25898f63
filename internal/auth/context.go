package auth

import "strings"

// RequestContext is the authentication result for one inbound call: either
// anonymous or bound to verified claims. It cannot be changed once built.
type RequestContext struct {
	claims *Claims
}

// Anonymous is the context of a call that offered no credential.
func Anonymous() RequestContext {
	return RequestContext{}
}

// Authenticated is the context of a call whose token verified.
func Authenticated(claims Claims) RequestContext {
	c := claims
	return RequestContext{claims: &c}
}

func (rc RequestContext) IsAuthenticated() bool {
	return rc.claims != nil
}

// Identity returns a copy of the caller's claims.
func (rc RequestContext) Identity() (Claims, bool) {
	if rc.claims == nil {
		return Claims{}, false
	}
	return *rc.claims, true
}

// Resolver builds a RequestContext from the raw authorization value.
type Resolver struct {
	tokens *TokenService
}

func NewResolver(tokens *TokenService) *Resolver {
	return &Resolver{tokens: tokens}
}

// Resolve returns Anonymous when no credential is present. A credential that
// is present but does not verify is an error, never Anonymous.
func (r *Resolver) Resolve(raw string) (RequestContext, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Anonymous(), nil
	}

	// The raw token is the documented form; "Bearer <token>" is also accepted.
	if len(raw) >= len("bearer") && strings.EqualFold(raw[:len("bearer")], "bearer") {
		rest := raw[len("bearer"):]
		if rest == "" || rest[0] == ' ' {
			raw = strings.TrimSpace(rest)
		}
	}

	claims, err := r.tokens.Verify(raw)
	if err != nil {
		return RequestContext{}, err
	}
	return Authenticated(claims), nil
}
