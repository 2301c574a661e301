package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
	"github.com/mzalendo/kazi/core/submission"
	"github.com/mzalendo/kazi/core/user"
)

type handler struct {
	auth    core.IdentityProvider
	userSvc *user.Service
	projSvc *project.Service
	subSvc  *submission.Service
	logger  core.Logger
}

func (h *handler) landing(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "landing", echo.Map{
		"Flash": popFlash(ctx),
	})
}

func (h *handler) signup(ctx echo.Context) error {
	data := user.NewUser{
		Name:     ctx.FormValue("name"),
		Email:    ctx.FormValue("email"),
		Password: ctx.FormValue("password"),
		Role:     ctx.FormValue("role"),
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	ident, token, err := h.auth.SignUp(rctx, data.Email, data.Password)
	if err != nil {
		return err
	}
	if _, err := h.userSvc.Register(rctx, ident.UID, data); err != nil {
		// the account exists but its profile write failed; sign it back out
		// so the guard does not bounce a profileless session around
		_ = h.auth.RevokeTokens(rctx, ident.UID)
		return errors.Wrap(err, "registering profile")
	}

	setSessionCookie(ctx, token)
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handler) login(ctx echo.Context) error {
	email := ctx.FormValue("email")
	password := ctx.FormValue("password")
	if email == "" || password == "" {
		return core.NewValidationError(errors.New("email and password are required"))
	}

	_, token, err := h.auth.SignIn(ctx.Request().Context(), email, password)
	if err != nil {
		return err
	}

	setSessionCookie(ctx, token)
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handler) logout(ctx echo.Context) error {
	clearSessionCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/")
}

// dashboard routes the signed-in profile to its panel.
func (h *handler) dashboard(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	usr, err := h.userSvc.GetByUID(ctx.Request().Context(), ident.UID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			_ = h.auth.RevokeTokens(ctx.Request().Context(), ident.UID)
			clearSessionCookie(ctx)
			setFlash(ctx, msgProfileMissing)
			return ctx.Redirect(http.StatusSeeOther, "/")
		}
		return errors.Wrap(err, "resolving profile")
	}

	if usr.IsTeacher() {
		return ctx.Redirect(http.StatusSeeOther, "/teacher")
	}
	return ctx.Redirect(http.StatusSeeOther, "/student")
}
