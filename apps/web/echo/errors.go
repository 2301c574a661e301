package echoweb

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/storage/docstore"
)

const msgRulesDenied = "The data store rejected this operation. " +
	"Check that the security rules allow it for your account."

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders
// errors as pages or flashed notices instead of JSON.
// signalShutdown is called in order to gracefully shutdown the Server
// whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			handleHTTPError(ctx, origErr)
		case validator.ValidationErrors:
			fldErrs := core.TranslateValidationErrors(origErr)
			flashAndBack(ctx, joinFieldErrors(fldErrs))
		case *core.ValidationError:
			if fldErrs := origErr.FieldMap(); fldErrs != nil {
				flashAndBack(ctx, joinFieldErrors(fldErrs))
			} else {
				flashAndBack(ctx, origErr.Error())
			}
		case *core.AuthError:
			// credential failures return to the landing page forms
			setFlash(ctx, origErr.Message())
			redirect(ctx, "/")
		default:
			if docstore.IsPermissionDenied(err) {
				renderError(ctx, http.StatusForbidden, msgRulesDenied)
				return
			}

			msg := http.StatusText(http.StatusInternalServerError)
			logArgs := []interface{}{errors.Wrap(err, msg)}
			if usr, uErr := getContextUser(ctx); uErr == nil {
				logArgs = append(logArgs, usr)
			}
			logger.Error(msg, logArgs...)

			if ctx.Echo().Debug {
				msg = err.Error()
			}
			renderError(ctx, http.StatusInternalServerError, msg)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}
	}
}

func handleHTTPError(ctx echo.Context, herr *echo.HTTPError) {
	if herr.Internal != nil {
		if inner, ok := herr.Internal.(*echo.HTTPError); ok {
			herr = inner
		}
	}

	if herr.Code == http.StatusForbidden {
		data := echo.Map{
			"DelaySeconds": core.Conf.Server.AccessDeniedRedirectDelay.Seconds(),
			"RedirectTo":   "/dashboard",
		}
		// a zero profile would render an empty name in the topbar
		if usr, err := getContextUser(ctx); err == nil {
			data["User"] = usr
		}
		_ = ctx.Render(http.StatusForbidden, "denied", data)
		return
	}

	msg, _ := herr.Message.(string)
	if msg == "" {
		msg = http.StatusText(herr.Code)
	}
	renderError(ctx, herr.Code, msg)
}

func renderError(ctx echo.Context, code int, msg string) {
	if err := ctx.Render(code, "error", echo.Map{"Code": code, "Message": msg}); err != nil {
		ctx.Echo().Logger.Error(err)
	}
}

// flashAndBack flashes a notice and sends the visitor back where the bad
// form came from. Only a same-origin Referer is honored; anything else falls
// back to the dashboard so the header cannot redirect off-site.
func flashAndBack(ctx echo.Context, msg string) {
	setFlash(ctx, msg)
	redirect(ctx, backPath(ctx))
}

func backPath(ctx echo.Context) string {
	ref, err := url.Parse(ctx.Request().Referer())
	if err != nil || !strings.HasPrefix(ref.Path, "/") {
		return "/dashboard"
	}
	if ref.Host != "" && ref.Host != ctx.Request().Host {
		return "/dashboard"
	}
	back := ref.Path
	if ref.RawQuery != "" {
		back += "?" + ref.RawQuery
	}
	return back
}

func redirect(ctx echo.Context, to string) {
	if err := ctx.Redirect(http.StatusSeeOther, to); err != nil {
		ctx.Echo().Logger.Error(err)
	}
}

func joinFieldErrors(fldErrs map[string]string) string {
	parts := make([]string, 0, len(fldErrs))
	for fld, msg := range fldErrs {
		parts = append(parts, fld+": "+msg)
	}
	return strings.Join(parts, "; ")
}
