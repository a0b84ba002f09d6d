package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/user"
)

type userApi struct {
	svc  *user.Service
	conf *core.Config
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service, conf *core.Config) {
	api := userApi{svc: svc, conf: conf}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)
	ug.POST("/admissions", api.submitAdmission)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.PUT("/me/password", api.changePassword)

	ag.POST("/register", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())
	ag.GET("/admissions", api.queryAdmissions, adminMiddleware())
	ag.PUT("/admissions/:id/approve", api.approveAdmission, adminMiddleware())
	ag.PUT("/admissions/:id/reject", api.rejectAdmission, adminMiddleware())

	dg := ag.Group("/:id", adminMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) submitAdmission(ctx echo.Context) error {
	var data user.NewAdmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmission")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.SubmitAdmission(data)
	if err != nil {
		return errors.Wrap(err, "submitting admission")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) queryAdmissions(ctx echo.Context) error {
	users, err := api.svc.Filter(user.QueryFilter{Role: user.RoleStudent})
	if err != nil {
		return errors.Wrap(err, "querying admissions")
	}
	pending := make([]user.User, 0, len(users))
	for _, usr := range users {
		if usr.AdmissionStatus.String == user.AdmissionPending {
			pending = append(pending, usr)
		}
	}
	return ctx.JSON(http.StatusOK, pending)
}

type admissionReview struct {
	SectionID string `json:"section_id"`
}

func (api *userApi) approveAdmission(ctx echo.Context) error {
	var data admissionReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to admissionReview")
	}

	usr, err := api.svc.ApproveAdmission(ctx.Param("id"), data.SectionID)
	if err != nil {
		return errors.Wrap(err, "approving admission")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) rejectAdmission(ctx echo.Context) error {
	usr, err := api.svc.RejectAdmission(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rejecting admission")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	users, err := api.svc.Filter(filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	usr, err := api.svc.GetByID(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	if err := data.Validate(usr); err != nil {
		return err
	}
	if err := api.svc.ChangePassword(claims.Subject, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "password changed"})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// do not leak account existence
	if err := api.svc.RequestPasswordReset(data.Email); err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return errors.Wrap(err, "requesting password reset")
		}
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "password reset sent"})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.svc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "password reset"})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	origUsr, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	if err := data.Validate(origUsr, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Update(origUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}
