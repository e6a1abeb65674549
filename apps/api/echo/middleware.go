package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core/user"
)

// capabilityMiddleware only lets through users whose role holds every capability in caps.
func capabilityMiddleware(svc *user.Service, caps user.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.Can(caps) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
