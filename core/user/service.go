package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotPending         = errors.New("admission is not pending")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// User.Name, User.Email, User.StudentID or User.FacultyID.
		FilterUsers(filter QueryFilter) ([]User, error)
		UpdateUser(user User, isActive *bool) (User, error)
		DeleteUser(id string) error
	}

	// CourseInfo resolves the course code needed for student ID generation.
	CourseInfo interface {
		CourseCode(id string) (string, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		courses CourseInfo
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, courses CourseInfo, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		courses: courses,
		conf:    conf,
	}
}

// SetCourseInfo wires the course lookup after construction; the course
// service itself depends on this package for staff management.
func (svc *Service) SetCourseInfo(courses CourseInfo) { svc.courses = courses }

func (svc *Service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create registers a staff member (admin, faculty or placement manager).
// A random password is generated and emailed to them.
func (svc *Service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nu.Role == RoleFaculty {
		usr.FacultyID = null.StringFrom("FAC" + randDigits(4))
		usr.Position = null.StringFrom(nu.Position)
		usr.Department = null.StringFrom(nu.Department)
		usr.MaxLecturesPerDay = null.IntFrom(svc.conf.DefaultMaxLecturesPerDay)
		if nu.CourseID != "" {
			usr.CourseID = null.StringFrom(nu.CourseID)
		}
		if nu.SectionID != "" {
			usr.SectionID = null.StringFrom(nu.SectionID)
		}
	}

	pwd := randPassword()
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr, pwd)
	return usr, nil
}

// SubmitAdmission registers a prospective student. The account stays
// inactive with a pending admission until an admin reviews it.
func (svc *Service) SubmitAdmission(na NewAdmission) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:            na.Name,
		Email:           na.Email,
		Role:            RoleStudent,
		IsActive:        false,
		CourseID:        null.StringFrom(na.CourseID),
		Year:            null.IntFrom(na.Year),
		Skills:          na.Skills,
		AdmissionStatus: null.StringFrom(AdmissionPending),
		AdmissionData: &AdmissionData{
			FatherName:      na.FatherName,
			MotherName:      na.MotherName,
			Phone:           na.Phone,
			Address:         na.Address,
			PreviousCollege: na.PreviousCollege,
			Percentage:      na.Percentage,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(na.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

// ApproveAdmission activates a pending student account, assigns them to a
// section and generates their student ID from the course code, the current
// year and a random 4-digit suffix.
func (svc *Service) ApproveAdmission(id, sectionID string) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsStudent() || usr.AdmissionStatus.String != AdmissionPending {
		return User{}, ErrNotPending
	}

	code, err := svc.courses.CourseCode(usr.CourseID.String)
	if err != nil {
		return User{}, errors.Wrap(err, "resolving course code")
	}

	usr.StudentID = null.StringFrom(fmt.Sprintf("%s%d%s", strings.ToUpper(code), NowFunc().Year(), randDigits(4)))
	usr.SectionID = null.StringFrom(sectionID)
	usr.AdmissionStatus = null.StringFrom(AdmissionApproved)
	usr.UpdatedAt = time.Now().UTC()

	active := true
	usr, err = svc.repo.UpdateUser(usr, &active)
	if err != nil {
		return User{}, err
	}
	svc.sendAdmissionReviewedMail(usr, true)
	return usr, nil
}

// RejectAdmission marks a pending student application as rejected. The
// account stays inactive.
func (svc *Service) RejectAdmission(id string) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsStudent() || usr.AdmissionStatus.String != AdmissionPending {
		return User{}, ErrNotPending
	}

	usr.AdmissionStatus = null.StringFrom(AdmissionRejected)
	usr.UpdatedAt = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(usr, nil)
	if err != nil {
		return User{}, err
	}
	svc.sendAdmissionReviewedMail(usr, false)
	return usr, nil
}

// Authenticate checks a user's credentials and records the login time.
func (svc *Service) Authenticate(email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

// CourseStudents lists the students enrolled in a course.
func (svc *Service) CourseStudents(courseID string) ([]User, error) {
	return svc.repo.FilterUsers(QueryFilter{Role: RoleStudent, CourseID: courseID})
}

// SectionStudents lists the students of a section.
func (svc *Service) SectionStudents(sectionID string) ([]User, error) {
	return svc.repo.FilterUsers(QueryFilter{Role: RoleStudent, SectionID: sectionID})
}

func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(filter)
}

func (svc *Service) Update(id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}

	usr.Name = uu.Name
	usr.Email = uu.Email
	if uu.Position != "" && usr.IsFaculty() {
		usr.Position = null.StringFrom(uu.Position)
	}
	if uu.Department != "" && usr.IsFaculty() {
		usr.Department = null.StringFrom(uu.Department)
	}
	if uu.SectionID != "" {
		usr.SectionID = null.StringFrom(uu.SectionID)
	}
	if uu.Skills != nil {
		usr.Skills = uu.Skills
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr, uu.IsActive)
}

// SetFacultyPosition flips a faculty member's position (e.g. to HOD or
// coordinator when they get assigned to a course) and records the
// course/section scope the position is bound to.
func (svc *Service) SetFacultyPosition(id, position, courseID, sectionID string) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	if !usr.IsFaculty() {
		return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "user is not a faculty member"})
	}
	usr.Position = null.StringFrom(position)
	if courseID != "" {
		usr.CourseID = null.StringFrom(courseID)
	}
	if sectionID != "" {
		usr.SectionID = null.StringFrom(sectionID)
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(usr, nil)
	return err
}

// MaxLecturesPerDay returns a faculty member's daily lecture cap, falling
// back to the configured default when none is set on the profile.
func (svc *Service) MaxLecturesPerDay(facultyUserID string) (int, error) {
	usr, err := svc.repo.GetUserByID(facultyUserID)
	if err != nil {
		return 0, err
	}
	if usr.MaxLecturesPerDay.Valid && usr.MaxLecturesPerDay.Int > 0 {
		return usr.MaxLecturesPerDay.Int, nil
	}
	return svc.conf.DefaultMaxLecturesPerDay, nil
}

// AssignSection moves the given students into a section.
func (svc *Service) AssignSection(sectionID string, studentIDs ...string) error {
	for _, id := range studentIDs {
		usr, err := svc.repo.GetUserByID(id)
		if err != nil {
			return err
		}
		if !usr.IsStudent() {
			continue
		}
		usr.SectionID = null.StringFrom(sectionID)
		usr.UpdatedAt = time.Now().UTC()
		if _, err := svc.repo.UpdateUser(usr, nil); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service) ChangePassword(id string, cp ChangePassword) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "old_password", Error: "wrong password"})
	}
	if err := usr.SetPassword(cp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(usr, nil)
	return err
}

// RequestPasswordReset emails a reset link to the user if the email is known.
func (svc *Service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

// ResetPassword sets a new password after verifying the emailed token.
func (svc *Service) ResetPassword(rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err := verifyToken(usr, rp.Token, svc.conf); err != nil {
		return core.NewValidationError(err)
	}
	if err := validatePassword(rp.Password, usr.Name, usr.Email); err != nil {
		return err
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(usr, nil)
	return err
}

func (svc *Service) Delete(id string) error {
	return svc.repo.DeleteUser(id)
}

// emails

func (svc *Service) sendWelcomeMail(usr User, pwd string) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      svc.conf.AppName + " - Your account",
		TemplateName: "user-welcome",
		TemplateData: struct {
			User     User
			Password string
		}{usr, pwd},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *Service) sendAdmissionReviewedMail(usr User, approved bool) {
	tmpl := "admission-rejected"
	if approved {
		tmpl = "admission-approved"
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      svc.conf.AppName + " - Admission update",
		TemplateName: tmpl,
		TemplateData: struct{ User User }{usr},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *Service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr, svc.conf)
	if err != nil {
		return
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      svc.conf.AppName + " - Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			User  User
			UID   string
			Token string
		}{usr, EncodeUID(usr), token},
	}
	svc.mailSvc.SendMessages(msg)
}

// randDigits returns n cryptographically random decimal digits.
func randDigits(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			num = big.NewInt(0)
		}
		sb.WriteString(num.String())
	}
	return sb.String()
}

const pwdAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%^&*"

// randPassword generates a random initial password for staff accounts.
func randPassword() string {
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(pwdAlphabet))))
		if err != nil {
			idx = big.NewInt(0)
		}
		sb.WriteByte(pwdAlphabet[idx.Int64()])
	}
	return sb.String()
}
