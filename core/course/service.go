package course

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("course not found")
	ErrSectionNotFound   = errors.New("section not found")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrCodeExists        = errors.New("a course with this code already exists")
	ErrSubjectCodeExists = errors.New("a subject with this code already exists in this course")
)

type (
	Repository interface {
		CheckCourseCodeUniqueness(code string) error
		CreateCourse(c Course) (Course, error)
		QueryAllCourses() ([]Course, error)
		GetCourseByID(id string) (Course, error)
		UpdateCourse(c Course) (Course, error)
		DeleteCourse(id string) error

		CreateSection(s Section) (Section, error)
		GetSectionByID(id string) (Section, error)
		QuerySectionsByCourse(courseID string) ([]Section, error)

		CheckSubjectCodeUniqueness(courseID, code string) error
		CreateSubject(s Subject) (Subject, error)
		GetSubjectByID(id string) (Subject, error)
		QuerySubjectsBySection(sectionID string) ([]Subject, error)
		QuerySubjectsByCourse(courseID string) ([]Subject, error)
		UpdateSubject(s Subject) (Subject, error)
		DeleteSubject(id string) error
	}

	// Staff flips faculty positions and moves students between sections.
	Staff interface {
		SetFacultyPosition(id, position, courseID, sectionID string) error
		AssignSection(sectionID string, studentIDs ...string) error
	}

	// TimetableRef reports whether timetable entries still reference a subject.
	TimetableRef interface {
		SubjectReferenced(subjectID string) (bool, error)
	}

	Service struct {
		repo      Repository
		staff     Staff
		timetable TimetableRef
	}
)

func NewService(repo Repository, staff Staff, timetable TimetableRef) *Service {
	return &Service{
		repo:      repo,
		staff:     staff,
		timetable: timetable,
	}
}

// SetTimetableRef wires the timetable lookup after construction; the
// timetable service itself depends on this package's repository.
func (svc *Service) SetTimetableRef(ref TimetableRef) { svc.timetable = ref }

func (svc *Service) CheckCodeUniqueness(code string) error {
	if err := svc.repo.CheckCourseCodeUniqueness(code); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Name:          nc.Name,
		Code:          nc.Code,
		Description:   nc.Description,
		DurationYears: nc.DurationYears,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateCourse(crs)
}

func (svc *Service) QueryAll() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

func (svc *Service) GetByID(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

// CourseCode implements user.CourseInfo.
func (svc *Service) CourseCode(id string) (string, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return "", err
	}
	return crs.Code, nil
}

func (svc *Service) Update(id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Course{}, err
	}
	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.DurationYears != 0 {
		crs.DurationYears = uc.DurationYears
	}
	if uc.IsActive != nil {
		crs.IsActive = *uc.IsActive
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(crs)
}

func (svc *Service) Delete(id string) error {
	return svc.repo.DeleteCourse(id)
}

// AssignHOD puts a faculty member in charge of a course and flips their
// position to HOD.
func (svc *Service) AssignHOD(courseID, facultyUserID string) (Course, error) {
	return svc.assignLead(courseID, facultyUserID, user.PositionHOD)
}

// AssignCoordinator makes a faculty member the course coordinator.
func (svc *Service) AssignCoordinator(courseID, facultyUserID string) (Course, error) {
	return svc.assignLead(courseID, facultyUserID, user.PositionCoordinator)
}

func (svc *Service) assignLead(courseID, facultyUserID, position string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return Course{}, err
	}
	if err := svc.staff.SetFacultyPosition(facultyUserID, position, courseID, ""); err != nil {
		return Course{}, errors.Wrapf(err, "assigning %s", position)
	}
	switch position {
	case user.PositionHOD:
		crs.HODID = null.StringFrom(facultyUserID)
	case user.PositionCoordinator:
		crs.CoordinatorID = null.StringFrom(facultyUserID)
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(crs)
}

// CreateSection adds a section to a course; the class advisor, if given,
// gets their position flipped.
func (svc *Service) CreateSection(ns NewSection) (Section, error) {
	if _, err := svc.repo.GetCourseByID(ns.CourseID); err != nil {
		return Section{}, err
	}
	sec := Section{
		Name:      ns.Name,
		CourseID:  ns.CourseID,
		Year:      ns.Year,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if ns.ClassAdvisorID != "" {
		sec.ClassAdvisorID = null.StringFrom(ns.ClassAdvisorID)
	}
	sec, err := svc.repo.CreateSection(sec)
	if err != nil {
		return Section{}, err
	}
	// the advisor's scope needs the new section's ID
	if ns.ClassAdvisorID != "" {
		if err := svc.staff.SetFacultyPosition(ns.ClassAdvisorID, user.PositionClassAdvisor, ns.CourseID, sec.ID); err != nil {
			return Section{}, errors.Wrap(err, "assigning class advisor")
		}
	}
	return sec, nil
}

func (svc *Service) GetSection(id string) (Section, error) {
	return svc.repo.GetSectionByID(id)
}

func (svc *Service) QuerySections(courseID string) ([]Section, error) {
	return svc.repo.QuerySectionsByCourse(courseID)
}

// AssignStudents moves students into a section.
func (svc *Service) AssignStudents(sectionID string, studentIDs ...string) error {
	if _, err := svc.repo.GetSectionByID(sectionID); err != nil {
		return err
	}
	return svc.staff.AssignSection(sectionID, studentIDs...)
}

func (svc *Service) CreateSubject(ns NewSubject) (Subject, error) {
	if _, err := svc.repo.GetCourseByID(ns.CourseID); err != nil {
		return Subject{}, err
	}
	if err := svc.repo.CheckSubjectCodeUniqueness(ns.CourseID, ns.Code); err != nil {
		if errors.Cause(err) == ErrSubjectCodeExists {
			return Subject{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return Subject{}, err
	}
	sub := Subject{
		Name:      ns.Name,
		Code:      ns.Code,
		CourseID:  ns.CourseID,
		Year:      ns.Year,
		Credits:   ns.Credits,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if ns.SectionID != "" {
		sub.SectionID = null.StringFrom(ns.SectionID)
	}
	return svc.repo.CreateSubject(sub)
}

func (svc *Service) GetSubject(id string) (Subject, error) {
	return svc.repo.GetSubjectByID(id)
}

func (svc *Service) QuerySubjects(courseID string) ([]Subject, error) {
	return svc.repo.QuerySubjectsByCourse(courseID)
}

func (svc *Service) QuerySectionSubjects(sectionID string) ([]Subject, error) {
	return svc.repo.QuerySubjectsBySection(sectionID)
}

func (svc *Service) UpdateSubject(id string, us UpdateSubject) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(id)
	if err != nil {
		return Subject{}, err
	}
	if us.Name != "" {
		sub.Name = us.Name
	}
	if us.Credits != 0 {
		sub.Credits = us.Credits
	}
	if us.IsActive != nil {
		sub.IsActive = *us.IsActive
	}
	return svc.repo.UpdateSubject(sub)
}

// AssignFaculty puts a faculty member in charge of teaching a subject.
func (svc *Service) AssignFaculty(subjectID, facultyUserID string) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(subjectID)
	if err != nil {
		return Subject{}, err
	}
	sub.FacultyID = null.StringFrom(facultyUserID)
	return svc.repo.UpdateSubject(sub)
}

// RemoveSubject deletes a subject, or deactivates it instead when
// timetable entries still reference it.
func (svc *Service) RemoveSubject(id string) error {
	sub, err := svc.repo.GetSubjectByID(id)
	if err != nil {
		return err
	}
	referenced, err := svc.timetable.SubjectReferenced(id)
	if err != nil {
		return err
	}
	if referenced {
		sub.IsActive = false
		_, err = svc.repo.UpdateSubject(sub)
		return err
	}
	return svc.repo.DeleteSubject(id)
}
