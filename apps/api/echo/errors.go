package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// notFoundErrs are reported as 404s with their own message.
var notFoundErrs = []error{examiner.ErrNotFound, examiner.ErrPhotoNotFound, calculation.ErrNotFound}

// newAppHTTPErrorHandler maps handler errors to JSON responses.
// Unknown errors are logged as 500s and a core.ShutdownError triggers signalShutdown.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message, ok := resolveError(err)
		if !ok {
			text := http.StatusText(code)
			message = text
			if ctx.Echo().Debug {
				message = err.Error()
			}
			logger.Error(text, errors.Wrap(err, text), contextIdentity(ctx))
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}
		if m, isStr := message.(string); isStr {
			message = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// resolveError returns the status and body of a known error. ok is false for server errors.
func resolveError(err error) (code int, message interface{}, ok bool) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, cause.Message, true
		}
		if inner, isHTTP := cause.Internal.(*echo.HTTPError); isHTTP {
			cause = inner
		}
		return cause.Code, cause.Message, true
	case validator.ValidationErrors:
		fields := make(map[string]string, len(cause))
		for _, fe := range cause {
			fields[fe.Field()] = fe.Error()
		}
		return http.StatusBadRequest, fields, true
	case *core.ValidationError:
		if fields := cause.FieldMap(); fields != nil {
			return http.StatusBadRequest, fields, true
		}
		return http.StatusBadRequest, cause.Error(), true
	}

	cause := errors.Cause(err)
	for _, nf := range notFoundErrs {
		if cause == nf {
			return http.StatusNotFound, cause.Error(), true
		}
	}
	return http.StatusInternalServerError, nil, false
}
