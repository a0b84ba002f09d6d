package placement

import (
	"time"

	"github.com/trezcool/kampus/core"
)

// Application statuses; a linear progression with no enforced transition
// order, the manager may set any stage.
const (
	AppInterested         = "interested"
	AppWrittenTest        = "written-test"
	AppTechnicalInterview = "technical-interview"
	AppCodingRound        = "coding-round"
	AppFinalRound         = "final-round"
	AppSelected           = "selected"
	AppRejected           = "rejected"
)

var appStatuses = []string{
	AppInterested, AppWrittenTest, AppTechnicalInterview,
	AppCodingRound, AppFinalRound, AppSelected, AppRejected,
}

func ValidAppStatus(s string) bool {
	for _, st := range appStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Placement is a job posting with an on-site/virtual drive date.
type Placement struct {
	ID           string    `json:"id"`
	Company      string    `json:"company"`
	Role         string    `json:"role"`
	Description  string    `json:"description,omitempty"`
	Requirements string    `json:"requirements"` // comma-separated skill tokens
	Package      string    `json:"package,omitempty"`
	CourseIDs    []string  `json:"course_ids"` // eligible courses
	DriveDate    time.Time `json:"drive_date"` // calendar day, midnight UTC
	Deadline     time.Time `json:"deadline"`   // last day to apply, midnight UTC
	CreatedBy    string    `json:"created_by"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// Application is one student's application to a placement.
type Application struct {
	ID          string    `json:"id"`
	PlacementID string    `json:"placement_id"`
	StudentID   string    `json:"student_id"`
	Status      string    `json:"status"`
	AppliedAt   time.Time `json:"applied_at"` // UTC
}

// Resume is a student's placement profile; its skills feed the matcher.
type Resume struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	Skills      []string  `json:"skills"`
	Education   string    `json:"education,omitempty"`
	Experience  string    `json:"experience,omitempty"`
	Projects    string    `json:"projects,omitempty"`
	Links       string    `json:"links,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Eligible pairs a placement with the student's skill-gate result. The
// gate filters what is highlighted, it is not an authorization boundary.
type Eligible struct {
	Placement
	SkillMatch bool `json:"skill_match"`
}

// NewPlacement contains information needed to post a placement.
type NewPlacement struct {
	Company      string    `json:"company" validate:"required"`
	Role         string    `json:"role" validate:"required"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements" validate:"required"`
	Package      string    `json:"package"`
	CourseIDs    []string  `json:"course_ids" validate:"required,min=1,dive,required"`
	DriveDate    time.Time `json:"drive_date" validate:"required"`
	Deadline     time.Time `json:"deadline" validate:"required"`
}

func (np *NewPlacement) Validate() error {
	np.Company = core.CleanString(np.Company)
	np.Role = core.CleanString(np.Role)
	np.Requirements = core.CleanString(np.Requirements)

	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	if core.NormalizeDate(np.Deadline).After(core.NormalizeDate(np.DriveDate)) {
		return core.NewValidationError(nil, core.FieldError{Field: "deadline", Error: "deadline cannot be after the drive date"})
	}
	return nil
}

// NewResume contains a student's resume content.
type NewResume struct {
	Skills     []string `json:"skills" validate:"required,min=1,dive,required"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	Projects   string   `json:"projects"`
	Links      string   `json:"links"`
	Summary    string   `json:"summary"`
}

func (nr *NewResume) Validate() error {
	nr.Skills = core.CleanStrings(nr.Skills, true /* lower */)
	return core.Validate.Struct(nr)
}
