package echoapi

import (
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/notification"
	"github.com/trezcool/kampus/core/placement"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHTTPForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// statusFor maps domain sentinel errors to HTTP status codes: missing
// things are 404s, scope violations 403s, state and schedule conflicts
// 409s, bad input 400s.
var statusFor = map[error]int{
	user.ErrNotFound:            http.StatusNotFound,
	course.ErrNotFound:          http.StatusNotFound,
	course.ErrSectionNotFound:   http.StatusNotFound,
	course.ErrSubjectNotFound:   http.StatusNotFound,
	timetable.ErrNotFound:       http.StatusNotFound,
	leave.ErrNotFound:           http.StatusNotFound,
	attendance.ErrNotFound:      http.StatusNotFound,
	placement.ErrNotFound:       http.StatusNotFound,
	placement.ErrAppNotFound:    http.StatusNotFound,
	placement.ErrResumeNotFound: http.StatusNotFound,
	notification.ErrNotFound:    http.StatusNotFound,

	timetable.ErrUnauthorized:  http.StatusForbidden,
	leave.ErrUnauthorized:      http.StatusForbidden,
	attendance.ErrUnauthorized: http.StatusForbidden,
	placement.ErrUnauthorized:  http.StatusForbidden,

	leave.ErrInvalidTransition:   http.StatusConflict,
	timetable.ErrFacultyConflict: http.StatusConflict,
	timetable.ErrSectionConflict: http.StatusConflict,
	timetable.ErrQuotaExceeded:   http.StatusConflict,
	placement.ErrClosed:          http.StatusConflict,

	user.ErrEmailExists:         http.StatusBadRequest,
	user.ErrInvalidCredentials:  http.StatusBadRequest,
	user.ErrNotPending:          http.StatusBadRequest,
	attendance.ErrInvalidStatus: http.StatusBadRequest,
	placement.ErrInvalidStatus:  http.StatusBadRequest,
}

// sentinelStatus finds the mapped status for a sentinel cause. Error types
// that are not comparable cannot be map keys; indexing with one would panic,
// so they never match.
func sentinelStatus(cause error) (int, bool) {
	if !reflect.TypeOf(cause).Comparable() {
		return 0, false
	}
	status, ok := statusFor[cause]
	return status, ok
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)

		switch origErr := cause.(type) {
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
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if status, ok := sentinelStatus(cause); ok {
				if !ctx.Response().Committed {
					if jErr := ctx.JSON(status, echo.Map{"error": cause.Error()}); jErr != nil {
						ctx.Echo().Logger.Error(jErr)
					}
				}
				return
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
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
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
