package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/user"
)

type leaveApi struct {
	svc *leave.Service
}

func registerLeaveAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *leave.Service) {
	api := leaveApi{svc: svc}

	lg := g.Group("/leaves", jwt)
	lg.POST("", api.create, requireKinds(user.ActorStudent))
	lg.GET("/mine", api.mine, requireKinds(user.ActorStudent))
	lg.GET("/pending", api.pending, staffOrAdminMiddleware())
	lg.GET("/:id", api.retrieve)
	lg.PUT("/:id/approve", api.approve, staffOrAdminMiddleware())
	lg.PUT("/:id/reject", api.reject, staffOrAdminMiddleware())
}

// Handlers

func (api *leaveApi) create(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data leave.NewLeave
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLeave")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	l, err := api.svc.Create(act, data)
	if err != nil {
		return errors.Wrap(err, "creating leave")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *leaveApi) mine(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	leaves, err := api.svc.QueryByStudent(act.UserID)
	if err != nil {
		return errors.Wrap(err, "querying leaves")
	}
	return ctx.JSON(http.StatusOK, leaves)
}

// pending lists the leaves awaiting the caller's approval stage.
func (api *leaveApi) pending(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	leaves, err := api.svc.QueryPending(act)
	if err != nil {
		return errors.Wrap(err, "querying pending leaves")
	}
	return ctx.JSON(http.StatusOK, leaves)
}

func (api *leaveApi) retrieve(ctx echo.Context) error {
	l, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding leave by ID")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *leaveApi) approve(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	l, err := api.svc.Approve(act, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving leave")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *leaveApi) reject(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data leave.Rejection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Rejection")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	l, err := api.svc.Reject(act, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "rejecting leave")
	}
	return ctx.JSON(http.StatusOK, l)
}
