package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/user"
)

// requireKinds lets through only actors of one of the given kinds.
func requireKinds(kinds ...user.ActorKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			act, err := getContextActor(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}
			for _, kind := range kinds {
				if act.Kind == kind {
					return next(ctx)
				}
			}
			return errHTTPForbidden
		}
	}
}

// adminMiddleware restricts an endpoint to admins.
func adminMiddleware() echo.MiddlewareFunc {
	return requireKinds(user.ActorAdmin)
}

// staffOrAdminMiddleware lets any faculty position or an admin through.
func staffOrAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			act, err := getContextActor(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}
			if act.IsAdmin() || act.IsStaff() {
				return next(ctx)
			}
			return errHTTPForbidden
		}
	}
}
