package user_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/user"
	emailsvc "github.com/trezcool/kampus/services/email"
	dummydb "github.com/trezcool/kampus/storage/database/dummy"
)

// stubCourses maps course IDs to codes for student ID generation.
type stubCourses map[string]string

func (c stubCourses) CourseCode(id string) (string, error) {
	if code, ok := c[id]; ok {
		return code, nil
	}
	return "", errors.New("unknown course")
}

func newUserService(t *testing.T) *user.Service {
	t.Helper()
	emailsvc.ClearSentMessages()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatal(err)
	}
	conf := core.NewConfig()
	return user.NewService(
		dummydb.NewUserRepository(db),
		emailsvc.NewDummyService(conf),
		stubCourses{"crs1": "CS"},
		conf,
	)
}

func newAdmission() user.NewAdmission {
	return user.NewAdmission{
		Name:     "Asha",
		Email:    "asha@test.test",
		Password: "G00d.Pa$$",
		CourseID: "crs1",
		Year:     1,
		Skills:   []string{"go", "sql"},
	}
}

func TestServiceAdmissionFlow(t *testing.T) {
	svc := newUserService(t)

	usr, err := svc.SubmitAdmission(newAdmission())
	if err != nil {
		t.Fatal(err)
	}
	if usr.IsActive || usr.AdmissionStatus.String != user.AdmissionPending {
		t.Errorf("SubmitAdmission() = active %v, status %q", usr.IsActive, usr.AdmissionStatus.String)
	}

	// an unreviewed applicant cannot sign in
	if _, err := svc.Authenticate(usr.Email, "G00d.Pa$$"); errors.Cause(err) != user.ErrInvalidCredentials {
		t.Errorf("Authenticate() before review error = %v, want ErrInvalidCredentials", err)
	}

	usr, err = svc.ApproveAdmission(usr.ID, "sec1")
	if err != nil {
		t.Fatal(err)
	}
	if !usr.IsActive || usr.AdmissionStatus.String != user.AdmissionApproved {
		t.Errorf("ApproveAdmission() = active %v, status %q", usr.IsActive, usr.AdmissionStatus.String)
	}
	if usr.SectionID.String != "sec1" {
		t.Errorf("SectionID = %q, want sec1", usr.SectionID.String)
	}
	wantPrefix := fmt.Sprintf("CS%d", time.Now().Year())
	if !strings.HasPrefix(usr.StudentID.String, wantPrefix) || len(usr.StudentID.String) != len(wantPrefix)+4 {
		t.Errorf("StudentID = %q, want %s followed by 4 digits", usr.StudentID.String, wantPrefix)
	}

	if _, err := svc.Authenticate(usr.Email, "G00d.Pa$$"); err != nil {
		t.Errorf("Authenticate() after approval error = %v", err)
	}

	// reviewing twice is a no-go
	if _, err := svc.ApproveAdmission(usr.ID, "sec1"); errors.Cause(err) != user.ErrNotPending {
		t.Errorf("ApproveAdmission() twice error = %v, want ErrNotPending", err)
	}
	if _, err := svc.RejectAdmission(usr.ID); errors.Cause(err) != user.ErrNotPending {
		t.Errorf("RejectAdmission() after approval error = %v, want ErrNotPending", err)
	}
}

func TestServiceRejectAdmission(t *testing.T) {
	svc := newUserService(t)

	usr, err := svc.SubmitAdmission(newAdmission())
	if err != nil {
		t.Fatal(err)
	}
	usr, err = svc.RejectAdmission(usr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if usr.IsActive || usr.AdmissionStatus.String != user.AdmissionRejected {
		t.Errorf("RejectAdmission() = active %v, status %q", usr.IsActive, usr.AdmissionStatus.String)
	}
	if _, err := svc.Authenticate(usr.Email, "G00d.Pa$$"); errors.Cause(err) != user.ErrInvalidCredentials {
		t.Errorf("Authenticate() after rejection error = %v, want ErrInvalidCredentials", err)
	}
}

func TestServiceCreateStaff(t *testing.T) {
	svc := newUserService(t)

	usr, err := svc.Create(user.NewUser{
		Name:       "Prof. Rao",
		Email:      "rao@test.test",
		Role:       user.RoleFaculty,
		Department: "CSE",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !usr.IsActive || !usr.FacultyID.Valid || !strings.HasPrefix(usr.FacultyID.String, "FAC") {
		t.Errorf("Create() = %+v", usr)
	}
	if usr.MaxLecturesPerDay.Int <= 0 {
		t.Errorf("MaxLecturesPerDay = %d, want the configured default", usr.MaxLecturesPerDay.Int)
	}
	// the generated password goes out by mail
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(emailsvc.SentMessages))
	}
	if got := emailsvc.SentMessages[0].TemplateName; got != "user-welcome" {
		t.Errorf("welcome template = %q", got)
	}
}

func TestServiceAuthenticate(t *testing.T) {
	svc := newUserService(t)
	usr, err := svc.SubmitAdmission(newAdmission())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ApproveAdmission(usr.ID, "sec1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Authenticate(usr.Email, "wrong"); errors.Cause(err) != user.ErrInvalidCredentials {
		t.Errorf("Authenticate() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate("nobody@test.test", "G00d.Pa$$"); errors.Cause(err) != user.ErrInvalidCredentials {
		t.Errorf("Authenticate() unknown email error = %v, want ErrInvalidCredentials", err)
	}

	got, err := svc.Authenticate(usr.Email, "G00d.Pa$$")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastLogin.IsZero() {
		t.Error("LastLogin not recorded")
	}
}

func TestServiceSetFacultyPosition(t *testing.T) {
	svc := newUserService(t)

	fac, err := svc.Create(user.NewUser{Name: "Prof. Rao", Email: "rao@test.test", Role: user.RoleFaculty})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SetFacultyPosition(fac.ID, user.PositionCoordinator, "crs1", ""); err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetByID(fac.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Position.String != user.PositionCoordinator || got.CourseID.String != "crs1" {
		t.Errorf("position = %q, course = %q", got.Position.String, got.CourseID.String)
	}

	// students cannot hold a faculty position
	stu, err := svc.SubmitAdmission(newAdmission())
	if err != nil {
		t.Fatal(err)
	}
	err = svc.SetFacultyPosition(stu.ID, user.PositionHOD, "crs1", "")
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("SetFacultyPosition() on student error = %v, want *core.ValidationError", err)
	}
}

func TestServiceMaxLecturesPerDay(t *testing.T) {
	svc := newUserService(t)
	conf := core.NewConfig()

	fac, err := svc.Create(user.NewUser{Name: "Prof. Rao", Email: "rao@test.test", Role: user.RoleFaculty})
	if err != nil {
		t.Fatal(err)
	}
	max, err := svc.MaxLecturesPerDay(fac.ID)
	if err != nil {
		t.Fatal(err)
	}
	if max != conf.DefaultMaxLecturesPerDay {
		t.Errorf("MaxLecturesPerDay() = %d, want the default %d", max, conf.DefaultMaxLecturesPerDay)
	}
}

func TestServiceResetPassword(t *testing.T) {
	svc := newUserService(t)
	conf := core.NewConfig()

	usr, err := svc.SubmitAdmission(newAdmission())
	if err != nil {
		t.Fatal(err)
	}

	token, err := user.MakeToken(usr, conf)
	if err != nil {
		t.Fatal(err)
	}
	rp := user.ResetUserPassword{
		UID:      user.EncodeUID(usr),
		Token:    token,
		Password: "N3w.Secret!",
	}
	if err := svc.ResetPassword(rp); err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetByID(usr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := got.CheckPassword("N3w.Secret!"); err != nil {
		t.Error("new password does not verify")
	}

	// a used token no longer verifies: the hash it signs changed
	rp.Password = "An0ther.0ne!"
	err = svc.ResetPassword(rp)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("ResetPassword() with stale token error = %v, want *core.ValidationError", err)
	}
}
