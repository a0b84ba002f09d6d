package timetable_test

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
	dummydb "github.com/trezcool/kampus/storage/database/dummy"
)

// noQuota leaves every faculty member on the configured default cap.
type noQuota struct{}

func (noQuota) MaxLecturesPerDay(string) (int, error) { return 0, nil }

// fixedQuota caps every faculty member at the same number of lectures.
type fixedQuota int

func (q fixedQuota) MaxLecturesPerDay(string) (int, error) { return int(q), nil }

type scheduleFixture struct {
	svc     *timetable.Service
	repo    timetable.Repository
	section course.Section
	other   course.Section // second section of the same course
}

func newScheduleFixture(t *testing.T, faculty timetable.FacultyInfo) scheduleFixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatal(err)
	}
	crsRepo := dummydb.NewCourseRepository(db)
	crsSvc := course.NewService(crsRepo, nil, nil)

	crs, err := crsRepo.CreateCourse(course.Course{Name: "Computer Science", Code: "CS", DurationYears: 4, IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	sec, err := crsRepo.CreateSection(course.Section{Name: "A", CourseID: crs.ID, Year: 2, IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	other, err := crsRepo.CreateSection(course.Section{Name: "B", CourseID: crs.ID, Year: 2, IsActive: true})
	if err != nil {
		t.Fatal(err)
	}

	repo := dummydb.NewTimetableRepository(db)
	return scheduleFixture{
		svc:     timetable.NewService(repo, crsSvc, faculty, core.NewConfig()),
		repo:    repo,
		section: sec,
		other:   other,
	}
}

func newEntry(sectionID, facultyID, start, end string) timetable.NewEntry {
	return timetable.NewEntry{
		SectionID: sectionID,
		SubjectID: "sub1",
		FacultyID: facultyID,
		Weekday:   "Monday",
		StartTime: start,
		EndTime:   end,
	}
}

func TestServiceSchedule_scope(t *testing.T) {
	fix := newScheduleFixture(t, noQuota{})

	tests := []struct {
		name    string
		act     user.Actor
		wantErr error
	}{
		{
			name: "advisor own section",
			act:  user.Actor{Kind: user.ActorClassAdvisor, UserID: "adv", SectionID: fix.section.ID},
		},
		{
			name:    "advisor other section",
			act:     user.Actor{Kind: user.ActorClassAdvisor, UserID: "adv", SectionID: fix.other.ID},
			wantErr: timetable.ErrUnauthorized,
		},
		{
			name: "coordinator of the course",
			act:  user.Actor{Kind: user.ActorCoordinator, UserID: "coo", CourseID: fix.section.CourseID},
		},
		{
			name:    "coordinator of another course",
			act:     user.Actor{Kind: user.ActorCoordinator, UserID: "coo", CourseID: "nope"},
			wantErr: timetable.ErrUnauthorized,
		},
		{
			name: "admin",
			act:  user.Actor{Kind: user.ActorAdmin, UserID: "adm"},
		},
		{
			name:    "student",
			act:     user.Actor{Kind: user.ActorStudent, UserID: "stu"},
			wantErr: timetable.ErrUnauthorized,
		},
		{
			name:    "plain faculty",
			act:     user.Actor{Kind: user.ActorFaculty, UserID: "fac"},
			wantErr: timetable.ErrUnauthorized,
		},
	}
	start := 8
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// non-overlapping hour per case so only scope can fail
			ne := newEntry(fix.section.ID, "fac-"+tt.name, hhmm(start), hhmm(start+1))
			start++
			_, err := fix.svc.Schedule(tt.act, ne)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("Schedule() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func hhmm(h int) string { return fmt.Sprintf("%02d:00", h) }

func TestServiceSchedule_facultyConflict(t *testing.T) {
	fix := newScheduleFixture(t, noQuota{})
	adm := user.Actor{Kind: user.ActorAdmin, UserID: "adm"}

	if _, err := fix.svc.Schedule(adm, newEntry(fix.section.ID, "fac1", "09:00", "10:00")); err != nil {
		t.Fatal(err)
	}

	// overlapping slot for the same faculty in another section
	_, err := fix.svc.Schedule(adm, newEntry(fix.other.ID, "fac1", "09:30", "10:30"))
	if errors.Cause(err) != timetable.ErrFacultyConflict {
		t.Errorf("Schedule() error = %v, want ErrFacultyConflict", err)
	}

	// back to back is fine
	if _, err := fix.svc.Schedule(adm, newEntry(fix.other.ID, "fac1", "10:00", "11:00")); err != nil {
		t.Errorf("Schedule() back-to-back error = %v", err)
	}

	// other faculty, same slot, other section
	if _, err := fix.svc.Schedule(adm, newEntry(fix.other.ID, "fac2", "09:00", "09:30")); err != nil {
		t.Errorf("Schedule() other faculty error = %v", err)
	}
}

func TestServiceSchedule_sectionConflict(t *testing.T) {
	fix := newScheduleFixture(t, noQuota{})
	adm := user.Actor{Kind: user.ActorAdmin, UserID: "adm"}

	if _, err := fix.svc.Schedule(adm, newEntry(fix.section.ID, "fac1", "09:00", "10:00")); err != nil {
		t.Fatal(err)
	}

	// different faculty, same section, overlapping time
	_, err := fix.svc.Schedule(adm, newEntry(fix.section.ID, "fac2", "09:00", "10:00"))
	if errors.Cause(err) != timetable.ErrSectionConflict {
		t.Errorf("Schedule() error = %v, want ErrSectionConflict", err)
	}

	// advisors skip the section-overlap check; double booking their own
	// section is on them
	adv := user.Actor{Kind: user.ActorClassAdvisor, UserID: "adv", SectionID: fix.section.ID}
	if _, err := fix.svc.Schedule(adv, newEntry(fix.section.ID, "fac2", "09:00", "10:00")); err != nil {
		t.Errorf("Schedule() advisor error = %v", err)
	}
}

func TestServiceSchedule_quota(t *testing.T) {
	fix := newScheduleFixture(t, fixedQuota(3))
	adm := user.Actor{Kind: user.ActorAdmin, UserID: "adm"}

	for i := 0; i < 3; i++ {
		if _, err := fix.svc.Schedule(adm, newEntry(fix.section.ID, "fac1", hhmm(9+i), hhmm(10+i))); err != nil {
			t.Fatal(err)
		}
	}

	_, err := fix.svc.Schedule(adm, newEntry(fix.section.ID, "fac1", "14:00", "15:00"))
	if errors.Cause(err) != timetable.ErrQuotaExceeded {
		t.Errorf("Schedule() error = %v, want ErrQuotaExceeded", err)
	}

	// the quota is per weekday
	tue := newEntry(fix.section.ID, "fac1", "09:00", "10:00")
	tue.Weekday = "Tuesday"
	if _, err := fix.svc.Schedule(adm, tue); err != nil {
		t.Errorf("Schedule() on another day error = %v", err)
	}

	// and per faculty
	if _, err := fix.svc.Schedule(adm, newEntry(fix.section.ID, "fac2", "14:00", "15:00")); err != nil {
		t.Errorf("Schedule() other faculty error = %v", err)
	}
}

func TestServiceRemove(t *testing.T) {
	fix := newScheduleFixture(t, noQuota{})
	adm := user.Actor{Kind: user.ActorAdmin, UserID: "adm"}

	entry, err := fix.svc.Schedule(adm, newEntry(fix.section.ID, "fac1", "09:00", "10:00"))
	if err != nil {
		t.Fatal(err)
	}

	adv := user.Actor{Kind: user.ActorClassAdvisor, UserID: "adv", SectionID: fix.section.ID}
	if err := fix.svc.Remove(adv, entry.ID); errors.Cause(err) != timetable.ErrUnauthorized {
		t.Errorf("Remove() as advisor error = %v, want ErrUnauthorized", err)
	}

	coo := user.Actor{Kind: user.ActorCoordinator, UserID: "coo", CourseID: "nope"}
	if err := fix.svc.Remove(coo, entry.ID); errors.Cause(err) != timetable.ErrUnauthorized {
		t.Errorf("Remove() as foreign coordinator error = %v, want ErrUnauthorized", err)
	}

	coo.CourseID = fix.section.CourseID
	if err := fix.svc.Remove(coo, entry.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := fix.svc.GetByID(entry.ID); errors.Cause(err) != timetable.ErrNotFound {
		t.Errorf("GetByID() after removal error = %v, want ErrNotFound", err)
	}
}
