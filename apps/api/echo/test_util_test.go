package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

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
	dummydb "github.com/trezcool/kampus/storage/database/dummy"
)

type httpErr struct {
	Error string `json:"error"`
}

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	app  Server
	conf *core.Config

	usrSvc   *user.Service
	crsSvc   *course.Service
	ttSvc    *timetable.Service
	leaveSvc *leave.Service
	attSvc   *attendance.Service
	plcSvc   *placement.Service
	notifSvc *notification.Service
}

// newTestApp wires the full service graph over in-memory storage, the way
// the API binary does against postgres.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	emailsvc.ClearSentMessages()

	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false

	db, err := dummydb.Open()
	if err != nil {
		t.Fatal(err)
	}
	mailSvc := emailsvc.NewDummyService(conf)

	usrSvc := user.NewService(dummydb.NewUserRepository(db), mailSvc, nil, conf)
	crsSvc := course.NewService(dummydb.NewCourseRepository(db), usrSvc, nil)
	usrSvc.SetCourseInfo(crsSvc)

	ttSvc := timetable.NewService(dummydb.NewTimetableRepository(db), crsSvc, usrSvc, conf)
	crsSvc.SetTimetableRef(ttSvc)

	attRepo := dummydb.NewAttendanceRepository(db)
	reconciler := attendance.NewReconciler(attRepo, ttSvc)
	leaveSvc := leave.NewService(dummydb.NewLeaveRepository(db), crsSvc, reconciler)
	attSvc := attendance.NewService(attRepo, ttSvc, leaveSvc)

	notifSvc := notification.NewService(dummydb.NewNotificationRepository(db))
	plcSvc := placement.NewService(dummydb.NewPlacementRepository(db), leaveSvc, notifSvc, usrSvc, mailSvc, nil, conf)

	app := NewServer(ServerDeps{
		Conf:   conf,
		Logger: logsvc.NewStdLogger(log.New(io.Discard, "", 0)),

		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		TimetableSvc:  ttSvc,
		LeaveSvc:      leaveSvc,
		AttendanceSvc: attSvc,
		PlacementSvc:  plcSvc,
		NotifSvc:      notifSvc,
	})
	return &testApp{
		app:  app,
		conf: conf,

		usrSvc:   usrSvc,
		crsSvc:   crsSvc,
		ttSvc:    ttSvc,
		leaveSvc: leaveSvc,
		attSvc:   attSvc,
		plcSvc:   plcSvc,
		notifSvc: notifSvc,
	}
}

// seedSection creates a course with one section for scope fixtures.
func (ta *testApp) seedSection(t *testing.T) course.Section {
	t.Helper()
	crs, err := ta.crsSvc.Create(course.NewCourse{Name: "Computer Science", Code: "CS", DurationYears: 4})
	if err != nil {
		t.Fatal(err)
	}
	sec, err := ta.crsSvc.CreateSection(course.NewSection{Name: "A", CourseID: crs.ID, Year: 2})
	if err != nil {
		t.Fatal(err)
	}
	return sec
}

// actors for tokens; leave/timetable authorization runs off the claims, so
// these do not have to exist in storage.

func testStudent(sec course.Section) user.User {
	return user.User{
		ID: "stu1", Name: "Asha", Email: "asha@test.test", Role: user.RoleStudent, IsActive: true,
		CourseID:  null.StringFrom(sec.CourseID),
		SectionID: null.StringFrom(sec.ID),
	}
}

func testAdvisor(sec course.Section) user.User {
	return user.User{
		ID: "adv1", Name: "Advisor", Email: "adv@test.test", Role: user.RoleFaculty, IsActive: true,
		Position:  null.StringFrom(user.PositionClassAdvisor),
		CourseID:  null.StringFrom(sec.CourseID),
		SectionID: null.StringFrom(sec.ID),
	}
}

func testCoordinator(sec course.Section) user.User {
	return user.User{
		ID: "coo1", Name: "Coordinator", Email: "coo@test.test", Role: user.RoleFaculty, IsActive: true,
		Position: null.StringFrom(user.PositionCoordinator),
		CourseID: null.StringFrom(sec.CourseID),
	}
}

func testHOD(sec course.Section) user.User {
	return user.User{
		ID: "hod1", Name: "HOD", Email: "hod@test.test", Role: user.RoleFaculty, IsActive: true,
		Position: null.StringFrom(user.PositionHOD),
		CourseID: null.StringFrom(sec.CourseID),
	}
}

func testAdmin() user.User {
	return user.User{ID: "adm1", Name: "Admin", Email: "adm@test.test", Role: user.RoleAdmin, IsActive: true}
}

func (ta *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr, ta.conf), ta.conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, data []byte, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarchallObj(): %v", err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCode(t *testing.T, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, want, rec.Body.String())
	}
}

func checkErrBody(t *testing.T, want httpErr, rec *httptest.ResponseRecorder) {
	t.Helper()
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, want))
	if err != nil {
		t.Fatalf("jsonBytesEqual(): %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %+v", rec.Body.String(), want)
	}
}
