package user

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kampus/core"
)

// Roles
const (
	RoleAdmin            = "admin"
	RoleStudent          = "student"
	RoleFaculty          = "faculty"
	RolePlacementManager = "placement-manager"
)

// Faculty positions
const (
	PositionFaculty      = "faculty"
	PositionHOD          = "hod"
	PositionCoordinator  = "coordinator"
	PositionClassAdvisor = "class-advisor"
)

// Admission statuses
const (
	AdmissionPending  = "pending"
	AdmissionApproved = "approved"
	AdmissionRejected = "rejected"
)

var (
	AllRoles     = []string{RoleAdmin, RoleStudent, RoleFaculty, RolePlacementManager}
	AllPositions = []string{PositionFaculty, PositionHOD, PositionCoordinator, PositionClassAdvisor}
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC

	// student profile
	StudentID       null.String    `json:"student_id,omitempty"`
	CourseID        null.String    `json:"course_id,omitempty"`
	SectionID       null.String    `json:"section_id,omitempty"`
	Year            null.Int       `json:"year,omitempty"`
	Skills          []string       `json:"skills,omitempty"`
	AdmissionStatus null.String    `json:"admission_status,omitempty"`
	AdmissionData   *AdmissionData `json:"admission_data,omitempty"`

	// faculty profile
	FacultyID         null.String `json:"faculty_id,omitempty"`
	Position          null.String `json:"position,omitempty"`
	Department        null.String `json:"department,omitempty"`
	MaxLecturesPerDay null.Int    `json:"max_lectures_per_day,omitempty"`
}

// AdmissionData holds the extra details submitted with a student's
// admission application.
type AdmissionData struct {
	FatherName      string  `json:"father_name"`
	MotherName      string  `json:"mother_name"`
	Phone           string  `json:"phone"`
	Address         string  `json:"address"`
	PreviousCollege string  `json:"previous_college"`
	Percentage      float64 `json:"percentage"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool            { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool          { return u.Role == RoleStudent }
func (u *User) IsFaculty() bool          { return u.Role == RoleFaculty }
func (u *User) IsPlacementManager() bool { return u.Role == RolePlacementManager }

func (u *User) HasPosition(pos string) bool {
	return u.IsFaculty() && u.Position.Valid && u.Position.String == pos
}

// NewUser contains information needed to create a new staff User
// (faculty or placement manager). Students come in through admissions.
type NewUser struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required,oneof=admin faculty placement-manager"`
	Position   string `json:"position" validate:"omitempty,oneof=faculty hod coordinator class-advisor"`
	Department string `json:"department" validate:"required_if=Role faculty"`
	CourseID   string `json:"course_id"`
	SectionID  string `json:"section_id"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Department = core.CleanString(nu.Department)
	if nu.Role == RoleFaculty && nu.Position == "" {
		nu.Position = PositionFaculty // plain faculty unless a position is named
	}

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// NewAdmission is a prospective student's application. The account stays
// inactive until an admin approves it.
type NewAdmission struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	CourseID        string   `json:"course_id" validate:"required"`
	Year            int      `json:"year" validate:"required,min=1,max=5"`
	Skills          []string `json:"skills" validate:"omitempty,dive,required"`
	FatherName      string   `json:"father_name"`
	MotherName      string   `json:"mother_name"`
	Phone           string   `json:"phone"`
	Address         string   `json:"address"`
	PreviousCollege string   `json:"previous_college"`
	Percentage      float64  `json:"percentage" validate:"omitempty,min=0,max=100"`
}

func (na *NewAdmission) Validate(svc *Service) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Skills = core.CleanStrings(na.Skills, true /* lower */)

	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	if err := validatePassword(na.Password, na.Name, na.Email); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(na.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name       string   `json:"name"`
	Email      string   `json:"email" validate:"omitempty,email"`
	IsActive   *bool    `json:"is_active"`
	Position   string   `json:"position" validate:"omitempty,oneof=faculty hod coordinator class-advisor"`
	Department string   `json:"department"`
	SectionID  string   `json:"section_id"`
	Skills     []string `json:"skills" validate:"omitempty,dive,required"`
}

func (uu *UpdateUser) Validate(origUsr User, svc *Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	uu.Skills = core.CleanStrings(uu.Skills, true /* lower */)

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(uu.Email, origUsr)
}

type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp ChangePassword) Validate(usr User) error {
	if err := core.Validate.Struct(cp); err != nil {
		return err
	}
	return validatePassword(cp.Password, usr.Name, usr.Email)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search    string `query:"search"` // matches Name, Email, StudentID or FacultyID
	Role      string `query:"role"`
	Position  string `query:"position"`
	CourseID  string `query:"course_id"`
	SectionID string `query:"section_id"`
	IsActive  *bool  `query:"is_active"`
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search, true /* lower */)
	f.Role = core.CleanString(f.Role, true /* lower */)
	f.Position = core.CleanString(f.Position, true /* lower */)
}
