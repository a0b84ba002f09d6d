package dummydb

import (
	"sync"

	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/notification"
	"github.com/trezcool/kampus/core/placement"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
)

// DB is an in-memory store with one guarded table per entity. It backs the
// service tests and local experimentation; postgres is the real store.
type (
	DB struct {
		user         *userTable
		course       *courseTable
		section      *sectionTable
		subject      *subjectTable
		timetable    *timetableTable
		leave        *leaveTable
		attendance   *attendanceTable
		placement    *placementTable
		application  *applicationTable
		resume       *resumeTable
		notification *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}
	sectionTable struct {
		sync.RWMutex
		table map[string]*course.Section
	}
	subjectTable struct {
		sync.RWMutex
		table map[string]*course.Subject
	}
	timetableTable struct {
		sync.RWMutex
		table map[string]*timetable.Entry
	}
	leaveTable struct {
		sync.RWMutex
		table map[string]*leave.Leave
	}
	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Attendance
	}
	placementTable struct {
		sync.RWMutex
		table map[string]*placement.Placement
	}
	applicationTable struct {
		sync.RWMutex
		table map[string]*placement.Application
	}
	resumeTable struct {
		sync.RWMutex
		table map[string]*placement.Resume // keyed by student ID
	}
	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		course:       &courseTable{table: make(map[string]*course.Course)},
		section:      &sectionTable{table: make(map[string]*course.Section)},
		subject:      &subjectTable{table: make(map[string]*course.Subject)},
		timetable:    &timetableTable{table: make(map[string]*timetable.Entry)},
		leave:        &leaveTable{table: make(map[string]*leave.Leave)},
		attendance:   &attendanceTable{table: make(map[string]*attendance.Attendance)},
		placement:    &placementTable{table: make(map[string]*placement.Placement)},
		application:  &applicationTable{table: make(map[string]*placement.Application)},
		resume:       &resumeTable{table: make(map[string]*placement.Resume)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
