package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/trezcool/kampus/apps/api/echo"
	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/notification"
	"github.com/trezcool/kampus/core/placement"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
	emailsvc "github.com/trezcool/kampus/services/email"
	sendgridmail "github.com/trezcool/kampus/services/email/sendgrid"
	logsvc "github.com/trezcool/kampus/services/logger"
	"github.com/trezcool/kampus/storage/database"
	"github.com/trezcool/kampus/storage/database/postgres"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = sendgridmail.NewService(conf, logger)
	}

	usrSvc := user.NewService(postgres.NewUserRepository(db), mailSvc, nil, conf)
	crsSvc := course.NewService(postgres.NewCourseRepository(db), usrSvc, nil)
	usrSvc.SetCourseInfo(crsSvc)

	ttSvc := timetable.NewService(postgres.NewTimetableRepository(db), crsSvc, usrSvc, conf)
	crsSvc.SetTimetableRef(ttSvc)

	attRepo := postgres.NewAttendanceRepository(db)
	reconciler := attendance.NewReconciler(attRepo, ttSvc)
	leaveSvc := leave.NewService(postgres.NewLeaveRepository(db), crsSvc, reconciler)
	attSvc := attendance.NewService(attRepo, ttSvc, leaveSvc)

	notifSvc := notification.NewService(postgres.NewNotificationRepository(db))
	plcSvc := placement.NewService(
		postgres.NewPlacementRepository(db), leaveSvc, notifSvc, usrSvc, mailSvc, nil, conf)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		TimetableSvc:  ttSvc,
		LeaveSvc:      leaveSvc,
		AttendanceSvc: attSvc,
		PlacementSvc:  plcSvc,
		NotifSvc:      notifSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
