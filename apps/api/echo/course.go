package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/user"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())
	cg.PUT("/:id/hod", api.assignHOD, adminMiddleware())
	cg.PUT("/:id/coordinator", api.assignCoordinator, adminMiddleware())
	cg.POST("/:id/sections", api.createSection, requireKinds(user.ActorHOD, user.ActorAdmin))
	cg.GET("/:id/sections", api.querySections)
	cg.POST("/:id/subjects", api.createSubject, requireKinds(user.ActorCoordinator, user.ActorAdmin))
	cg.GET("/:id/subjects", api.querySubjects)

	sg := g.Group("/sections", jwt)
	sg.GET("/:id", api.retrieveSection)
	sg.PUT("/:id/students", api.assignStudents, requireKinds(user.ActorHOD, user.ActorAdmin))
	sg.GET("/:id/subjects", api.querySectionSubjects)

	subg := g.Group("/subjects", jwt)
	subg.GET("/:id", api.retrieveSubject)
	subg.PUT("/:id", api.updateSubject, requireKinds(user.ActorCoordinator, user.ActorAdmin))
	subg.DELETE("/:id", api.removeSubject, requireKinds(user.ActorCoordinator, user.ActorAdmin))
	subg.PUT("/:id/faculty", api.assignFaculty, requireKinds(user.ActorCoordinator, user.ActorAdmin))
}

// courseScopeCheck rejects scoped staff acting on a course that is not
// their own; admins pass.
func courseScopeCheck(ctx echo.Context, courseID string) error {
	act, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	if act.IsAdmin() || act.CourseID == courseID {
		return nil
	}
	return errHTTPForbidden
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	crs, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type leadAssignment struct {
	FacultyID string `json:"faculty_id"`
}

func (api *courseApi) assignHOD(ctx echo.Context) error {
	var data leadAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to leadAssignment")
	}

	crs, err := api.svc.AssignHOD(ctx.Param("id"), data.FacultyID)
	if err != nil {
		return errors.Wrap(err, "assigning HOD")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) assignCoordinator(ctx echo.Context) error {
	var data leadAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to leadAssignment")
	}

	crs, err := api.svc.AssignCoordinator(ctx.Param("id"), data.FacultyID)
	if err != nil {
		return errors.Wrap(err, "assigning coordinator")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) createSection(ctx echo.Context) error {
	var data course.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	data.CourseID = ctx.Param("id")
	if err := courseScopeCheck(ctx, data.CourseID); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sec, err := api.svc.CreateSection(data)
	if err != nil {
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, sec)
}

func (api *courseApi) querySections(ctx echo.Context) error {
	sections, err := api.svc.QuerySections(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *courseApi) retrieveSection(ctx echo.Context) error {
	sec, err := api.svc.GetSection(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding section by ID")
	}
	return ctx.JSON(http.StatusOK, sec)
}

type studentAssignment struct {
	StudentIDs []string `json:"student_ids"`
}

func (api *courseApi) assignStudents(ctx echo.Context) error {
	var data studentAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to studentAssignment")
	}

	sec, err := api.svc.GetSection(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding section by ID")
	}
	if err := courseScopeCheck(ctx, sec.CourseID); err != nil {
		return err
	}

	if err := api.svc.AssignStudents(ctx.Param("id"), data.StudentIDs...); err != nil {
		return errors.Wrap(err, "assigning students")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "students assigned"})
}

func (api *courseApi) createSubject(ctx echo.Context) error {
	var data course.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	data.CourseID = ctx.Param("id")
	if err := courseScopeCheck(ctx, data.CourseID); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *courseApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *courseApi) querySectionSubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySectionSubjects(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying section subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *courseApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding subject by ID")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *courseApi) updateSubject(ctx echo.Context) error {
	var data course.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.subjectScopeCheck(ctx); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

// subjectScopeCheck resolves the subject under :id and rejects coordinators
// of another course.
func (api *courseApi) subjectScopeCheck(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding subject by ID")
	}
	return courseScopeCheck(ctx, sub.CourseID)
}

func (api *courseApi) removeSubject(ctx echo.Context) error {
	if err := api.subjectScopeCheck(ctx); err != nil {
		return err
	}
	if err := api.svc.RemoveSubject(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) assignFaculty(ctx echo.Context) error {
	var data leadAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to leadAssignment")
	}
	if err := api.subjectScopeCheck(ctx); err != nil {
		return err
	}

	sub, err := api.svc.AssignFaculty(ctx.Param("id"), data.FacultyID)
	if err != nil {
		return errors.Wrap(err, "assigning faculty")
	}
	return ctx.JSON(http.StatusOK, sub)
}
