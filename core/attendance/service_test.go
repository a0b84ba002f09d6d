package attendance_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/attendance"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
	dummydb "github.com/trezcool/kampus/storage/database/dummy"
)

// stubLeaves reports an approved leave for the listed student IDs.
type stubLeaves map[string]bool

func (s stubLeaves) ApprovedOn(studentID string, _ time.Time) (bool, error) {
	return s[studentID], nil
}

type markFixture struct {
	svc     *attendance.Service
	repo    attendance.Repository
	entry   timetable.Entry
	faculty user.Actor
}

func newMarkFixture(t *testing.T, leaves stubLeaves) markFixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatal(err)
	}
	ttRepo := dummydb.NewTimetableRepository(db)
	entry, err := ttRepo.CreateEntry(timetable.Entry{
		SectionID: "sec1",
		SubjectID: "sub1",
		FacultyID: "fac1",
		Weekday:   core.WeekdayName(core.Today()),
		StartTime: "09:00",
		EndTime:   "10:00",
		IsActive:  true,
	})
	if err != nil {
		t.Fatal(err)
	}

	repo := dummydb.NewAttendanceRepository(db)
	ttSvc := timetable.NewService(ttRepo, nil, nil, nil)
	return markFixture{
		svc:     attendance.NewService(repo, ttSvc, leaves),
		repo:    repo,
		entry:   entry,
		faculty: user.Actor{Kind: user.ActorFaculty, UserID: "fac1"},
	}
}

func TestServiceMark(t *testing.T) {
	fix := newMarkFixture(t, stubLeaves{})

	rows, err := fix.svc.Mark(fix.faculty, fix.entry.ID, map[string]string{
		"stu1": attendance.StatusPresent,
		"stu2": attendance.StatusAbsent,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("Mark() rows = %d, want 2", len(rows))
	}
	byStudent := make(map[string]attendance.Attendance)
	for _, row := range rows {
		byStudent[row.StudentID] = row
	}
	if byStudent["stu1"].Status != attendance.StatusPresent || byStudent["stu2"].Status != attendance.StatusAbsent {
		t.Errorf("Mark() statuses = %q, %q", byStudent["stu1"].Status, byStudent["stu2"].Status)
	}
	if byStudent["stu1"].MarkedBy != fix.faculty.UserID {
		t.Errorf("Mark() marked by %q, want %q", byStudent["stu1"].MarkedBy, fix.faculty.UserID)
	}

	// re-marking replaces the earlier rows instead of stacking them
	rows, err = fix.svc.Mark(fix.faculty, fix.entry.ID, map[string]string{
		"stu1": attendance.StatusAbsent,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Status != attendance.StatusAbsent {
		t.Errorf("Mark() after re-mark = %d rows, status %q", len(rows), rows[0].Status)
	}
}

func TestServiceMark_authorization(t *testing.T) {
	fix := newMarkFixture(t, stubLeaves{})
	marks := map[string]string{"stu1": attendance.StatusPresent}

	tests := []struct {
		name    string
		act     user.Actor
		wantErr error
	}{
		{name: "teaching faculty", act: fix.faculty},
		{name: "admin", act: user.Actor{Kind: user.ActorAdmin, UserID: "adm1"}},
		{name: "other faculty", act: user.Actor{Kind: user.ActorFaculty, UserID: "fac2"}, wantErr: attendance.ErrUnauthorized},
		{name: "student", act: user.Actor{Kind: user.ActorStudent, UserID: "stu1"}, wantErr: attendance.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fix.svc.Mark(tt.act, fix.entry.ID, marks)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("Mark() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestServiceMark_invalidStatus(t *testing.T) {
	fix := newMarkFixture(t, stubLeaves{})
	_, err := fix.svc.Mark(fix.faculty, fix.entry.ID, map[string]string{"stu1": "sick"})
	if errors.Cause(err) != attendance.ErrInvalidStatus {
		t.Errorf("Mark() error = %v, want ErrInvalidStatus", err)
	}
}

// A fully approved leave wins over whatever the faculty submits.
func TestServiceMark_approvedLeaveWins(t *testing.T) {
	fix := newMarkFixture(t, stubLeaves{"stu2": true})

	rows, err := fix.svc.Mark(fix.faculty, fix.entry.ID, map[string]string{
		"stu1": attendance.StatusPresent,
		"stu2": attendance.StatusAbsent,
	})
	if err != nil {
		t.Fatal(err)
	}
	byStudent := make(map[string]string)
	for _, row := range rows {
		byStudent[row.StudentID] = row.Status
	}
	if byStudent["stu1"] != attendance.StatusPresent {
		t.Errorf("stu1 status = %q, want %q", byStudent["stu1"], attendance.StatusPresent)
	}
	if byStudent["stu2"] != attendance.StatusLeave {
		t.Errorf("stu2 status = %q, want %q", byStudent["stu2"], attendance.StatusLeave)
	}
}

func TestServiceStudentSummary(t *testing.T) {
	fix := newMarkFixture(t, stubLeaves{})
	day := core.Today()

	seed := []struct {
		subjectID string
		date      time.Time
		status    string
	}{
		{"sub1", day.AddDate(0, 0, -3), attendance.StatusPresent},
		{"sub1", day.AddDate(0, 0, -2), attendance.StatusPresent},
		{"sub1", day.AddDate(0, 0, -1), attendance.StatusAbsent},
		{"sub1", day, attendance.StatusLeave},
		{"sub2", day, attendance.StatusPresent},
	}
	for _, s := range seed {
		err := fix.repo.ReplaceMarks(s.subjectID, "sec1", s.date, []attendance.Attendance{{
			StudentID: "stu1",
			SubjectID: s.subjectID,
			SectionID: "sec1",
			Date:      s.date,
			Status:    s.status,
			MarkedBy:  "fac1",
		}})
		if err != nil {
			t.Fatal(err)
		}
	}

	summaries, err := fix.svc.StudentSummary("stu1")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("StudentSummary() = %d subjects, want 2", len(summaries))
	}
	bySubject := make(map[string]attendance.SubjectSummary)
	for _, sum := range summaries {
		bySubject[sum.SubjectID] = sum
	}

	sub1 := bySubject["sub1"]
	if sub1.Total != 4 || sub1.Present != 2 || sub1.Absent != 1 || sub1.Leave != 1 {
		t.Errorf("sub1 summary = %+v", sub1)
	}
	if sub1.Percentage != 50 {
		t.Errorf("sub1 percentage = %v, want 50", sub1.Percentage)
	}
	sub2 := bySubject["sub2"]
	if sub2.Total != 1 || sub2.Percentage != 100 {
		t.Errorf("sub2 summary = %+v", sub2)
	}
}
