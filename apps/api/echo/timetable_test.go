package echoapi

import (
	"net/http"
	"testing"

	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
)

func TestTimetableAPI(t *testing.T) {
	ta := newTestApp(t)
	sec := ta.seedSection(t)
	admToken := ta.getToken(t, testAdmin())

	fac, err := ta.usrSvc.Create(user.NewUser{Name: "Prof. Rao", Email: "rao@test.test", Role: user.RoleFaculty})
	if err != nil {
		t.Fatal(err)
	}

	slot := func(start, end string) []byte {
		return marchallObj(t, timetable.NewEntry{
			SectionID: sec.ID,
			SubjectID: "sub1",
			FacultyID: fac.ID,
			Weekday:   "Monday",
			StartTime: start,
			EndTime:   end,
		})
	}

	var entry timetable.Entry
	t.Run("schedule", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timetable", admToken, slot("09:00", "10:00"))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)
		unmarchallObj(t, rec.Body.Bytes(), &entry)
		if !entry.IsActive {
			t.Errorf("entry = %+v", entry)
		}
	})

	t.Run("students cannot schedule", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timetable", ta.getToken(t, testStudent(sec)), slot("11:00", "12:00"))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("overlap conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timetable", admToken, slot("09:30", "10:30"))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusConflict, rec)
		checkErrBody(t, httpErr{Error: timetable.ErrFacultyConflict.Error()}, rec)
	})

	t.Run("foreign advisor forbidden", func(t *testing.T) {
		foreign := testAdvisor(course.Section{ID: "other-sec", CourseID: "other-crs"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/timetable", ta.getToken(t, foreign), slot("11:00", "12:00"))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
		checkErrBody(t, httpErr{Error: timetable.ErrUnauthorized.Error()}, rec)
	})

	t.Run("malformed time rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timetable", admToken, slot("9:00", "10:00"))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("section listing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable/sections/"+sec.ID+"?weekday=Monday", ta.getToken(t, testStudent(sec)))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)
		var entries []timetable.Entry
		unmarchallObj(t, rec.Body.Bytes(), &entries)
		if len(entries) != 1 || entries[0].ID != entry.ID {
			t.Errorf("entries = %+v, want just the scheduled slot", entries)
		}
	})

	t.Run("remove", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/timetable/"+entry.ID, admToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNoContent, rec)

		req, rec = newAuthRequest(http.MethodGet, "/v1/timetable/"+entry.ID, admToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})
}
