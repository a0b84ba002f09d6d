package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/placement"
	"github.com/trezcool/kampus/core/user"
)

type placementApi struct {
	svc *placement.Service
}

func registerPlacementAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *placement.Service) {
	api := placementApi{svc: svc}

	pg := g.Group("/placements", jwt)
	pg.POST("", api.create, requireKinds(user.ActorPlacementManager, user.ActorAdmin))
	pg.GET("", api.query, requireKinds(user.ActorPlacementManager, user.ActorAdmin))
	pg.GET("/eligible", api.eligible, requireKinds(user.ActorStudent))
	pg.GET("/:id", api.retrieve)
	pg.POST("/:id/apply", api.apply, requireKinds(user.ActorStudent))
	pg.GET("/:id/applications", api.applications, requireKinds(user.ActorPlacementManager, user.ActorAdmin))
	pg.PUT("/applications/:id/status", api.updateAppStatus, requireKinds(user.ActorPlacementManager, user.ActorAdmin))

	rg := g.Group("/resume", jwt, requireKinds(user.ActorStudent))
	rg.GET("", api.myResume)
	rg.PUT("", api.upsertResume)
}

// Handlers

func (api *placementApi) create(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data placement.NewPlacement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPlacement")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Create(act, data)
	if err != nil {
		return errors.Wrap(err, "creating placement")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *placementApi) query(ctx echo.Context) error {
	placements, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying placements")
	}
	return ctx.JSON(http.StatusOK, placements)
}

// eligible lists active placements for the student's course with the
// skill-gate result attached.
func (api *placementApi) eligible(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	placements, err := api.svc.EligibleForStudent(act.UserID)
	if err != nil {
		return errors.Wrap(err, "querying eligible placements")
	}
	return ctx.JSON(http.StatusOK, placements)
}

func (api *placementApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding placement by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *placementApi) apply(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	app, err := api.svc.Apply(act, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "applying to placement")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *placementApi) applications(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	apps, err := api.svc.Applications(act, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

type appStatusUpdate struct {
	Status string `json:"status"`
}

func (api *placementApi) updateAppStatus(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data appStatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to appStatusUpdate")
	}

	app, err := api.svc.UpdateApplicationStatus(act, ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "updating application status")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *placementApi) myResume(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	resume, err := api.svc.GetResume(act.UserID)
	if err != nil {
		return errors.Wrap(err, "finding resume")
	}
	return ctx.JSON(http.StatusOK, resume)
}

func (api *placementApi) upsertResume(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data placement.NewResume
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResume")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	resume, err := api.svc.UpsertResume(act.UserID, data)
	if err != nil {
		return errors.Wrap(err, "saving resume")
	}
	return ctx.JSON(http.StatusOK, resume)
}
