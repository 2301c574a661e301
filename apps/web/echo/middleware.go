package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/user"
)

// errAccessDenied is rendered by the error handler as the access-denied
// notice page, which bounces back to the dashboard after a short delay.
var errAccessDenied = echo.NewHTTPError(http.StatusForbidden, "You do not have access to this page.")

const msgProfileMissing = "User data not found. Please sign up again."

// requireRole resolves the signed-in identity to its profile and lets the
// request through only when the profile carries the wanted role. An identity
// without a profile is signed out entirely; a wrong role gets the
// access-denied notice, which bounces back to the dashboard after a beat.
func requireRole(role string, svc *user.Service, auth core.IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := getContextIdentity(ctx)
			if err != nil {
				return err
			}

			usr, err := svc.GetByUID(ctx.Request().Context(), ident.UID)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					_ = auth.RevokeTokens(ctx.Request().Context(), ident.UID)
					clearSessionCookie(ctx)
					setFlash(ctx, msgProfileMissing)
					return ctx.Redirect(http.StatusSeeOther, "/")
				}
				return errors.Wrap(err, "resolving profile")
			}

			ctx.Set(contextUserKey, usr)
			if usr.Role != role {
				return errAccessDenied
			}
			return next(ctx)
		}
	}
}
