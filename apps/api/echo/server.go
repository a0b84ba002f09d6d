package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/notification"
	"github.com/trezcool/kampus/core/placement"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger

		UserSvc       *user.Service
		CourseSvc     *course.Service
		TimetableSvc  *timetable.Service
		LeaveSvc      *leave.Service
		AttendanceSvc *attendance.Service
		PlacementSvc  *placement.Service
		NotifSvc      *notification.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, func() {
		s.shutdown <- syscall.SIGTERM
	})
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerUserAPI(v1, jwt, s.deps.UserSvc, conf)
	registerCourseAPI(v1, jwt, s.deps.CourseSvc)
	registerTimetableAPI(v1, jwt, s.deps.TimetableSvc)
	registerLeaveAPI(v1, jwt, s.deps.LeaveSvc)
	registerAttendanceAPI(v1, jwt, s.deps.AttendanceSvc)
	registerPlacementAPI(v1, jwt, s.deps.PlacementSvc)
	registerNotificationAPI(v1, jwt, s.deps.NotifSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Kampus API!")
}
