package course

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core"
)

type Course struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code"` // unique, upper
	Description   string      `json:"description,omitempty"`
	DurationYears int         `json:"duration_years"`
	HODID         null.String `json:"hod_id,omitempty"`
	CoordinatorID null.String `json:"coordinator_id,omitempty"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC
}

type Section struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"` // e.g. "A", "B"
	CourseID       string      `json:"course_id"`
	Year           int         `json:"year"`
	ClassAdvisorID null.String `json:"class_advisor_id,omitempty"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
}

type Subject struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Code      string      `json:"code"`
	CourseID  string      `json:"course_id"`
	Year      int         `json:"year"`
	SectionID null.String `json:"section_id,omitempty"`
	FacultyID null.String `json:"faculty_id,omitempty"` // user ID of the assigned faculty
	Credits   int         `json:"credits"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name          string `json:"name" validate:"required"`
	Code          string `json:"code" validate:"required,min=2,max=8,alphanum_"`
	Description   string `json:"description"`
	DurationYears int    `json:"duration_years" validate:"required,min=1,max=5"`
}

func (nc *NewCourse) Validate(svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = strings.ToUpper(core.CleanString(nc.Code))

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(nc.Code)
}

// UpdateCourse defines what information may be provided to modify a Course.
type UpdateCourse struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	DurationYears int    `json:"duration_years" validate:"omitempty,min=1,max=5"`
	IsActive      *bool  `json:"is_active"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

// NewSection contains information needed to create a Section within a course.
type NewSection struct {
	Name           string `json:"name" validate:"required,max=8"`
	CourseID       string `json:"course_id" validate:"required"`
	Year           int    `json:"year" validate:"required,min=1,max=5"`
	ClassAdvisorID string `json:"class_advisor_id"`
}

func (ns *NewSection) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

// NewSubject contains information needed to create a Subject.
type NewSubject struct {
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code" validate:"required,min=2,max=12,alphanum_"`
	CourseID  string `json:"course_id" validate:"required"`
	Year      int    `json:"year" validate:"required,min=1,max=5"`
	SectionID string `json:"section_id"`
	Credits   int    `json:"credits" validate:"omitempty,min=1,max=10"`
}

func (ns *NewSubject) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	return core.Validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify a Subject.
type UpdateSubject struct {
	Name     string `json:"name"`
	Credits  int    `json:"credits" validate:"omitempty,min=1,max=10"`
	IsActive *bool  `json:"is_active"`
}

func (us *UpdateSubject) Validate() error {
	us.Name = core.CleanString(us.Name)
	return core.Validate.Struct(us)
}
