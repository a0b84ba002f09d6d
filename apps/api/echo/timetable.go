package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/timetable"
)

type timetableApi struct {
	svc *timetable.Service
}

func registerTimetableAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *timetable.Service) {
	api := timetableApi{svc: svc}

	tg := g.Group("/timetable", jwt)
	tg.POST("", api.schedule, staffOrAdminMiddleware())
	tg.GET("/:id", api.retrieve)
	tg.DELETE("/:id", api.remove, staffOrAdminMiddleware())
	tg.GET("/sections/:id", api.querySection)
}

// Handlers

func (api *timetableApi) schedule(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data timetable.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	entry, err := api.svc.Schedule(act, data)
	if err != nil {
		return errors.Wrap(err, "scheduling entry")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *timetableApi) retrieve(ctx echo.Context) error {
	entry, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding entry by ID")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *timetableApi) querySection(ctx echo.Context) error {
	weekday := ctx.QueryParam("weekday")
	if weekday != "" {
		entries, err := api.svc.ActiveEntriesOn(ctx.Param("id"), weekday)
		if err != nil {
			return errors.Wrap(err, "querying section day entries")
		}
		return ctx.JSON(http.StatusOK, entries)
	}

	entries, err := api.svc.QuerySection(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying section entries")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *timetableApi) remove(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Remove(act, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}
