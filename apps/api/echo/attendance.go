package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/user"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.PUT("/slots/:id", api.mark, staffOrAdminMiddleware())
	ag.GET("/slots/:id", api.slotMarks, staffOrAdminMiddleware())
	ag.GET("/me/summary", api.mySummary, requireKinds(user.ActorStudent))
	ag.GET("/students/:id/summary", api.studentSummary, staffOrAdminMiddleware())
}

// Handlers

type markRequest struct {
	Marks map[string]string `json:"marks"` // studentID -> status
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data markRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to markRequest")
	}

	marks, err := api.svc.Mark(act, ctx.Param("id"), data.Marks)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *attendanceApi) slotMarks(ctx echo.Context) error {
	marks, err := api.svc.SlotMarks(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying slot marks")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *attendanceApi) mySummary(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	summary, err := api.svc.StudentSummary(act.UserID)
	if err != nil {
		return errors.Wrap(err, "querying attendance summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *attendanceApi) studentSummary(ctx echo.Context) error {
	summary, err := api.svc.StudentSummary(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}
