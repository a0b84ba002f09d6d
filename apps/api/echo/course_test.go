package echoapi

import (
	"net/http"
	"testing"

	"github.com/trezcool/kampus/core/course"
)

func TestCourseAPI(t *testing.T) {
	ta := newTestApp(t)
	admToken := ta.getToken(t, testAdmin())

	var crs course.Course
	t.Run("admin creates course", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{Name: "Computer Science", Code: "CS", DurationYears: 4})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", admToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)
		unmarchallObj(t, rec.Body.Bytes(), &crs)
		if crs.Code != "CS" || !crs.IsActive {
			t.Errorf("course = %+v", crs)
		}
	})

	t.Run("students cannot create courses", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{Name: "Economics", Code: "ECO", DurationYears: 3})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", ta.getToken(t, testStudent(course.Section{CourseID: crs.ID})), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
	})

	ownScope := course.Section{CourseID: crs.ID}
	foreignScope := course.Section{CourseID: "other-crs"}

	var sec course.Section
	t.Run("hod creates section", func(t *testing.T) {
		body := marchallObj(t, course.NewSection{Name: "A", Year: 2})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/sections", ta.getToken(t, testHOD(ownScope)), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)
		unmarchallObj(t, rec.Body.Bytes(), &sec)
		if sec.CourseID != crs.ID {
			t.Errorf("section = %+v", sec)
		}
	})

	t.Run("foreign hod forbidden", func(t *testing.T) {
		body := marchallObj(t, course.NewSection{Name: "B", Year: 2})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/sections", ta.getToken(t, testHOD(foreignScope)), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
	})

	var sub course.Subject
	t.Run("coordinator creates subject", func(t *testing.T) {
		body := marchallObj(t, course.NewSubject{Name: "Databases", Code: "DB101", Year: 2, Credits: 4})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/subjects", ta.getToken(t, testCoordinator(ownScope)), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)
		unmarchallObj(t, rec.Body.Bytes(), &sub)
		if sub.Code != "DB101" || sub.CourseID != crs.ID {
			t.Errorf("subject = %+v", sub)
		}
	})

	t.Run("foreign coordinator cannot touch the subject", func(t *testing.T) {
		body := marchallObj(t, course.UpdateSubject{Name: "Databases II"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/subjects/"+sub.ID, ta.getToken(t, testCoordinator(foreignScope)), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("coordinator removes an orphan subject", func(t *testing.T) {
		token := ta.getToken(t, testCoordinator(ownScope))
		req, rec := newAuthRequest(http.MethodDelete, "/v1/subjects/"+sub.ID, token)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNoContent, rec)

		req, rec = newAuthRequest(http.MethodGet, "/v1/subjects/"+sub.ID, token)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("courses listing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses", ta.getToken(t, testStudent(ownScope)))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)
		var courses []course.Course
		unmarchallObj(t, rec.Body.Bytes(), &courses)
		if len(courses) != 1 || courses[0].ID != crs.ID {
			t.Errorf("courses = %+v", courses)
		}
	})
}
