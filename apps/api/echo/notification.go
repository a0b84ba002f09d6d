package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.unread)
	ng.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *notificationApi) unread(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	notifs, err := api.svc.Unread(act.UserID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.MarkRead(act.UserID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, n)
}
