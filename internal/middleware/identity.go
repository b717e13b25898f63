package middleware

import (
	"looplane/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const requestContextKey = "request_context"

// Identity resolves the authorization header once per request and stores the
// resulting RequestContext for handlers. A supplied token that does not
// verify ends the request with JWT_DECODE_ERROR.
func Identity(resolver *auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, err := resolver.Resolve(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(requestContextKey, rc)
		return c.Next()
	}
}

// RequestContextFrom returns the context stored by Identity, or Anonymous
// when none was stored.
func RequestContextFrom(c *fiber.Ctx) auth.RequestContext {
	rc, ok := c.Locals(requestContextKey).(auth.RequestContext)
	if !ok {
		return auth.Anonymous()
	}
	return rc
}
