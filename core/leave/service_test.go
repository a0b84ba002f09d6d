package leave_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
	dummydb "github.com/trezcool/kampus/storage/database/dummy"
)

// aMonday is a fixed Monday used by the reconciliation tests.
var aMonday = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

type leaveFixture struct {
	svc     *leave.Service
	attRepo attendance.Repository
	section course.Section

	student     user.Actor
	advisor     user.Actor
	coordinator user.Actor
	hod         user.Actor
}

// newLeaveFixture builds a leave service over in-memory storage with the
// full approval chain wired: one course, one section, and three active
// Monday lectures that the reconciler will materialize leave rows for.
func newLeaveFixture(t *testing.T) leaveFixture {
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

	ttRepo := dummydb.NewTimetableRepository(db)
	for i, subjectID := range []string{"sub1", "sub2", "sub3"} {
		_, err := ttRepo.CreateEntry(timetable.Entry{
			SectionID: sec.ID,
			SubjectID: subjectID,
			FacultyID: "fac1",
			Weekday:   "Monday",
			StartTime: []string{"09:00", "10:00", "11:00"}[i],
			EndTime:   []string{"10:00", "11:00", "12:00"}[i],
			IsActive:  true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	// an inactive slot the reconciler must skip
	if _, err := ttRepo.CreateEntry(timetable.Entry{
		SectionID: sec.ID, SubjectID: "sub4", FacultyID: "fac1",
		Weekday: "Monday", StartTime: "13:00", EndTime: "14:00",
	}); err != nil {
		t.Fatal(err)
	}

	attRepo := dummydb.NewAttendanceRepository(db)
	ttSvc := timetable.NewService(ttRepo, crsSvc, nil, nil)
	reconciler := attendance.NewReconciler(attRepo, ttSvc)

	return leaveFixture{
		svc:     leave.NewService(dummydb.NewLeaveRepository(db), crsSvc, reconciler),
		attRepo: attRepo,
		section: sec,

		student:     user.Actor{Kind: user.ActorStudent, UserID: "stu1", SectionID: sec.ID},
		advisor:     user.Actor{Kind: user.ActorClassAdvisor, UserID: "adv1", SectionID: sec.ID},
		coordinator: user.Actor{Kind: user.ActorCoordinator, UserID: "coo1", CourseID: crs.ID},
		hod:         user.Actor{Kind: user.ActorHOD, UserID: "hod1", CourseID: crs.ID},
	}
}

func (fix leaveFixture) file(t *testing.T, date time.Time) leave.Leave {
	t.Helper()
	l, err := fix.svc.Create(fix.student, leave.NewLeave{Date: date, Reason: "family function"})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestServiceCreate(t *testing.T) {
	fix := newLeaveFixture(t)

	l := fix.file(t, aMonday)
	if l.Status != leave.StatusPending {
		t.Errorf("Create() status = %q, want %q", l.Status, leave.StatusPending)
	}
	if l.StudentID != fix.student.UserID || l.SectionID != fix.section.ID {
		t.Errorf("Create() ownership = (%q, %q), want (%q, %q)", l.StudentID, l.SectionID, fix.student.UserID, fix.section.ID)
	}

	// only students file leave requests
	if _, err := fix.svc.Create(fix.advisor, leave.NewLeave{Date: aMonday, Reason: "nope"}); errors.Cause(err) != leave.ErrUnauthorized {
		t.Errorf("Create() as advisor error = %v, want ErrUnauthorized", err)
	}
}

func TestServiceApprove_chain(t *testing.T) {
	fix := newLeaveFixture(t)
	l := fix.file(t, aMonday)

	l, err := fix.svc.Approve(fix.advisor, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if l.Status != leave.StatusApprovedByAdvisor || l.ApprovedByAdvisor.String != fix.advisor.UserID {
		t.Errorf("advisor approval = (%q, %q)", l.Status, l.ApprovedByAdvisor.String)
	}

	l, err = fix.svc.Approve(fix.coordinator, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if l.Status != leave.StatusApprovedByCoordinator || l.ApprovedByCoordinator.String != fix.coordinator.UserID {
		t.Errorf("coordinator approval = (%q, %q)", l.Status, l.ApprovedByCoordinator.String)
	}

	l, err = fix.svc.Approve(fix.hod, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if l.Status != leave.StatusApprovedByHOD || l.ApprovedByHOD.String != fix.hod.UserID {
		t.Errorf("HOD approval = (%q, %q)", l.Status, l.ApprovedByHOD.String)
	}
	if !l.Terminal() {
		t.Error("Terminal() = false after HOD approval")
	}

	// terminal: no further approvals
	if _, err := fix.svc.Approve(fix.hod, l.ID); errors.Cause(err) != leave.ErrInvalidTransition {
		t.Errorf("Approve() on terminal leave error = %v, want ErrInvalidTransition", err)
	}

	ok, err := fix.svc.ApprovedOn(fix.student.UserID, aMonday)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("ApprovedOn() = false, want true")
	}
}

func TestServiceApprove_stageSkipping(t *testing.T) {
	fix := newLeaveFixture(t)

	tests := []struct {
		name    string
		advance int // approvals applied before the attempt
		act     user.Actor
	}{
		{name: "coordinator on pending", advance: 0, act: fix.coordinator},
		{name: "hod on pending", advance: 0, act: fix.hod},
		{name: "hod after advisor only", advance: 1, act: fix.hod},
		{name: "advisor twice", advance: 1, act: fix.advisor},
		{name: "coordinator twice", advance: 2, act: fix.coordinator},
	}
	chain := []user.Actor{fix.advisor, fix.coordinator}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// separate day per case so the dedup by (student, date) never bites
			l := fix.file(t, aMonday.AddDate(0, 0, 7*i))
			for _, act := range chain[:tt.advance] {
				if _, err := fix.svc.Approve(act, l.ID); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := fix.svc.Approve(tt.act, l.ID); errors.Cause(err) != leave.ErrInvalidTransition {
				t.Errorf("Approve() error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestServiceApprove_scope(t *testing.T) {
	fix := newLeaveFixture(t)
	l := fix.file(t, aMonday)

	foreignAdvisor := user.Actor{Kind: user.ActorClassAdvisor, UserID: "adv2", SectionID: "other-section"}
	if _, err := fix.svc.Approve(foreignAdvisor, l.ID); errors.Cause(err) != leave.ErrUnauthorized {
		t.Errorf("Approve() by foreign advisor error = %v, want ErrUnauthorized", err)
	}

	foreignHOD := user.Actor{Kind: user.ActorHOD, UserID: "hod2", CourseID: "other-course"}
	if _, err := fix.svc.Approve(foreignHOD, l.ID); errors.Cause(err) != leave.ErrUnauthorized {
		t.Errorf("Approve() by foreign HOD error = %v, want ErrUnauthorized", err)
	}

	if _, err := fix.svc.Approve(fix.student, l.ID); errors.Cause(err) != leave.ErrUnauthorized {
		t.Errorf("Approve() by student error = %v, want ErrUnauthorized", err)
	}

	// scope errors leave the stage untouched
	got, err := fix.svc.GetByID(l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != leave.StatusPending {
		t.Errorf("status after denied approvals = %q, want %q", got.Status, leave.StatusPending)
	}
}

func TestServiceReject(t *testing.T) {
	fix := newLeaveFixture(t)
	rej := leave.Rejection{Reason: "attendance already short"}

	t.Run("from pending", func(t *testing.T) {
		l := fix.file(t, aMonday)
		l, err := fix.svc.Reject(fix.advisor, l.ID, rej)
		if err != nil {
			t.Fatal(err)
		}
		if l.Status != leave.StatusRejected || l.RejectedBy.String != fix.advisor.UserID || l.RejectionReason.String != rej.Reason {
			t.Errorf("Reject() = (%q, %q, %q)", l.Status, l.RejectedBy.String, l.RejectionReason.String)
		}
	})

	t.Run("mid chain by hod", func(t *testing.T) {
		l := fix.file(t, aMonday.AddDate(0, 0, 7))
		if _, err := fix.svc.Approve(fix.advisor, l.ID); err != nil {
			t.Fatal(err)
		}
		l, err := fix.svc.Reject(fix.hod, l.ID, rej)
		if err != nil {
			t.Fatal(err)
		}
		if l.Status != leave.StatusRejected {
			t.Errorf("Reject() status = %q, want %q", l.Status, leave.StatusRejected)
		}
	})

	t.Run("terminal", func(t *testing.T) {
		l := fix.file(t, aMonday.AddDate(0, 0, 14))
		for _, act := range []user.Actor{fix.advisor, fix.coordinator, fix.hod} {
			if _, err := fix.svc.Approve(act, l.ID); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := fix.svc.Reject(fix.hod, l.ID, rej); errors.Cause(err) != leave.ErrInvalidTransition {
			t.Errorf("Reject() on approved leave error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("foreign scope", func(t *testing.T) {
		l := fix.file(t, aMonday.AddDate(0, 0, 21))
		foreign := user.Actor{Kind: user.ActorCoordinator, UserID: "coo2", CourseID: "other-course"}
		if _, err := fix.svc.Reject(foreign, l.ID, rej); errors.Cause(err) != leave.ErrUnauthorized {
			t.Errorf("Reject() by foreign coordinator error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestRejectionValidate(t *testing.T) {
	rej := leave.Rejection{Reason: "  "}
	if err := rej.Validate(); err == nil {
		t.Error("Validate() = nil, want required-reason error")
	}
	rej.Reason = "quota exhausted"
	if err := rej.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// HOD approval must materialize a leave row for every active lecture of
// the section on the leave day, overwriting whatever was marked before.
func TestHODApprovalReconcilesAttendance(t *testing.T) {
	fix := newLeaveFixture(t)
	l := fix.file(t, aMonday)

	// a prior absent mark for one of the day's subjects
	if err := fix.attRepo.ReplaceMarks("sub1", fix.section.ID, aMonday, []attendance.Attendance{{
		StudentID: fix.student.UserID,
		SubjectID: "sub1",
		SectionID: fix.section.ID,
		Date:      aMonday,
		Status:    attendance.StatusAbsent,
		MarkedBy:  "fac1",
	}}); err != nil {
		t.Fatal(err)
	}

	for _, act := range []user.Actor{fix.advisor, fix.coordinator, fix.hod} {
		if _, err := fix.svc.Approve(act, l.ID); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := fix.attRepo.QueryByStudent(fix.student.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("attendance rows = %d, want 3 (one per active Monday lecture)", len(rows))
	}
	subjects := make(map[string]bool)
	for _, row := range rows {
		subjects[row.SubjectID] = true
		if row.Status != attendance.StatusLeave {
			t.Errorf("row %s status = %q, want %q", row.SubjectID, row.Status, attendance.StatusLeave)
		}
		if row.MarkedBy != fix.hod.UserID {
			t.Errorf("row %s marked by %q, want %q", row.SubjectID, row.MarkedBy, fix.hod.UserID)
		}
		if !row.Date.Equal(aMonday) {
			t.Errorf("row %s date = %v, want %v", row.SubjectID, row.Date, aMonday)
		}
	}
	for _, subjectID := range []string{"sub1", "sub2", "sub3"} {
		if !subjects[subjectID] {
			t.Errorf("no leave row for %s", subjectID)
		}
	}
	if subjects["sub4"] {
		t.Error("leave row created for inactive slot sub4")
	}
}

func TestServiceCreateAuto_dedup(t *testing.T) {
	fix := newLeaveFixture(t)

	first, err := fix.svc.CreateAuto(fix.student.UserID, fix.section.ID, "plc1", "", aMonday)
	if err != nil {
		t.Fatal(err)
	}
	if !first.IsAutoApplied || first.Reason != "Placement Drive" || first.PlacementID.String != "plc1" {
		t.Errorf("CreateAuto() = %+v", first)
	}

	again, err := fix.svc.CreateAuto(fix.student.UserID, fix.section.ID, "plc2", "", aMonday)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != first.ID {
		t.Errorf("CreateAuto() created a second leave for the same day: %q vs %q", again.ID, first.ID)
	}

	// a manually filed leave also blocks the auto one
	manual := fix.file(t, aMonday.AddDate(0, 0, 7))
	got, err := fix.svc.CreateAuto(fix.student.UserID, fix.section.ID, "plc1", "", manual.Date)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != manual.ID {
		t.Errorf("CreateAuto() ignored the existing manual leave: %q vs %q", got.ID, manual.ID)
	}
}

func TestServiceQueryPending(t *testing.T) {
	fix := newLeaveFixture(t)

	l1 := fix.file(t, aMonday)
	l2 := fix.file(t, aMonday.AddDate(0, 0, 7))
	if _, err := fix.svc.Approve(fix.advisor, l2.ID); err != nil {
		t.Fatal(err)
	}

	pending, err := fix.svc.QueryPending(fix.advisor)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != l1.ID {
		t.Errorf("QueryPending(advisor) = %d leaves, want just the pending one", len(pending))
	}

	pending, err = fix.svc.QueryPending(fix.coordinator)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != l2.ID {
		t.Errorf("QueryPending(coordinator) = %d leaves, want just the advisor-approved one", len(pending))
	}

	if _, err := fix.svc.QueryPending(fix.student); errors.Cause(err) != leave.ErrUnauthorized {
		t.Errorf("QueryPending(student) error = %v, want ErrUnauthorized", err)
	}
}
