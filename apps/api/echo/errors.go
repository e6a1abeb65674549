package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, core.ErrForbidden.Error())
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, validator *core.Validator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			code = http.StatusBadRequest
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = echo.Map{"error": origErr.Error(), "fields": fldErrs}
			} else {
				message = origErr.Error()
			}
		default:
			switch {
			case origErr == user.ErrInvalidCredentials, origErr == user.ErrUsernameExists, origErr == mark.ErrInvalidStudent:
				code = http.StatusBadRequest
				message = origErr.Error()
			case origErr == core.ErrForbidden:
				code = http.StatusForbidden
				message = origErr.Error()
			case origErr == mark.ErrNotFound, origErr == user.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			default:
				if fldErrs, ok := validator.Translate(origErr); ok {
					code = http.StatusBadRequest
					message = echo.Map{"error": "invalid request", "fields": fldErrs}
					break
				}

				// any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var args []interface{}
				args = append(args, errors.Wrap(err, msg))
				if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
					args = append(args, usr)
				}
				logger.Error(msg, args...)
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				logger.Error("sending error response", err)
			}
		}
	}
}
