package echoweb

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

const flashCookieName = "kazi_flash"

// setFlash stores a one-shot notice for the next page render.
func setFlash(ctx echo.Context, msg string) {
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending notice, if any, and clears it.
func popFlash(ctx echo.Context) string {
	cookie, err := ctx.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}
