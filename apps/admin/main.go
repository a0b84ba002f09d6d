package main

import (
	"log"
	"os"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/notification"
	"github.com/trezcool/kampus/core/placement"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
	emailsvc "github.com/trezcool/kampus/services/email"
	logsvc "github.com/trezcool/kampus/services/logger"
	schedsvc "github.com/trezcool/kampus/services/scheduler"
	"github.com/trezcool/kampus/storage/database"
	"github.com/trezcool/kampus/storage/database/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	mailSvc := emailsvc.NewConsoleService(conf)

	usrRepo := postgres.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, nil, conf)
	crsSvc := course.NewService(postgres.NewCourseRepository(db), usrSvc, nil)
	usrSvc.SetCourseInfo(crsSvc)

	ttSvc := timetable.NewService(postgres.NewTimetableRepository(db), crsSvc, usrSvc, conf)
	crsSvc.SetTimetableRef(ttSvc)

	attRepo := postgres.NewAttendanceRepository(db)
	reconciler := attendance.NewReconciler(attRepo, ttSvc)
	leaveSvc := leave.NewService(postgres.NewLeaveRepository(db), crsSvc, reconciler)

	notifSvc := notification.NewService(postgres.NewNotificationRepository(db))
	plcSvc := placement.NewService(
		postgres.NewPlacementRepository(db), leaveSvc, notifSvc, usrSvc, mailSvc, nil, conf)

	schedSvc := schedsvc.NewService(
		plcSvc, leaveSvc, notifSvc, usrSvc, mailSvc, logsvc.NewStdLogger(logger), conf)

	// start CLI
	cli := commandLine{
		db:        db.DB,
		usrRepo:   usrRepo,
		scheduler: schedSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
