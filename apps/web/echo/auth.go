package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/user"
)

const (
	sessionCookieName  = "kazi_session"
	contextIdentityKey = "identity"
	contextUserKey     = "user"
)

func setSessionCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(core.Conf.Server.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionGuard resolves the session cookie into an Identity on every request
// of the group. A missing or stale cookie sends the visitor back to the
// landing page rather than erroring.
func sessionGuard(auth core.IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return ctx.Redirect(http.StatusSeeOther, "/")
			}
			ident, err := auth.VerifyToken(ctx.Request().Context(), cookie.Value)
			if err != nil {
				clearSessionCookie(ctx)
				return ctx.Redirect(http.StatusSeeOther, "/")
			}
			ctx.Set(contextIdentityKey, ident)
			return next(ctx)
		}
	}
}

var errNoIdentityInCtx = errors.New("identity not found in echo.Context")

func getContextIdentity(ctx echo.Context) (core.Identity, error) {
	if ident, ok := ctx.Get(contextIdentityKey).(core.Identity); ok {
		return ident, nil
	}
	return core.Identity{}, errNoIdentityInCtx
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errors.New("user object not found in echo.Context")
}
