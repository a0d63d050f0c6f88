package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// authenticatedMiddleware only lets signed in users through; the auth backend's public key is refused.
func authenticatedMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if claims.Subject == "" || claims.Role == anonRole {
			return errHttpForbidden
		}
		return next(ctx)
	}
}
