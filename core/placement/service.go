package placement

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/notification"
	"github.com/trezcool/kampus/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("placement not found")
	ErrAppNotFound    = errors.New("application not found")
	ErrResumeNotFound = errors.New("resume not found")
	ErrUnauthorized   = errors.New("not allowed to act on this placement")
	ErrClosed         = errors.New("applications for this placement are closed")
	ErrInvalidStatus  = errors.New("invalid application status")
)

type (
	Repository interface {
		CreatePlacement(p Placement) (Placement, error)
		QueryAllPlacements() ([]Placement, error)
		QueryActivePlacementsByCourse(courseID string) ([]Placement, error)
		QueryPlacementsByDriveDate(date time.Time) ([]Placement, error)
		QueryPlacementsClosingBetween(from, to time.Time) ([]Placement, error)
		GetPlacementByID(id string) (Placement, error)
		UpdatePlacement(p Placement) (Placement, error)

		CreateApplication(a Application) (Application, error)
		// GetApplication looks an application up by its natural key.
		GetApplication(placementID, studentID string) (Application, error)
		GetApplicationByID(id string) (Application, error)
		QueryApplicationsByPlacement(placementID string) ([]Application, error)
		UpdateApplication(a Application) (Application, error)

		UpsertResume(r Resume) (Resume, error)
		GetResumeByStudent(studentID string) (Resume, error)
	}

	// AutoLeaver files the auto-applied leave for a drive date.
	AutoLeaver interface {
		CreateAuto(studentID, sectionID, placementID, reason string, date time.Time) (leave.Leave, error)
	}

	// Notifier creates per-day-deduplicated placement notifications.
	Notifier interface {
		CreateForPlacement(userID, placementID, title, message, typ string) (notification.Notification, error)
	}

	// Directory resolves students for the notification fan-out.
	Directory interface {
		GetByID(id string) (user.User, error)
		CourseStudents(courseID string) ([]user.User, error)
	}

	Service struct {
		repo    Repository
		leaves  AutoLeaver
		notifs  Notifier
		users   Directory
		mailSvc core.EmailService
		match   MatchFunc
		conf    *core.Config
	}
)

// NewService wires the placement workflow. match may be nil, in which case
// the default token-overlap matcher with the configured threshold is used.
func NewService(
	repo Repository,
	leaves AutoLeaver,
	notifs Notifier,
	users Directory,
	mailSvc core.EmailService,
	match MatchFunc,
	conf *core.Config,
) *Service {
	if match == nil {
		match = TokenOverlapMatcher(conf.SkillMatchThreshold)
	}
	return &Service{
		repo:    repo,
		leaves:  leaves,
		notifs:  notifs,
		users:   users,
		mailSvc: mailSvc,
		match:   match,
		conf:    conf,
	}
}

// Create posts a placement and fans out a notification plus an email to
// every admitted student of the eligible courses.
func (svc *Service) Create(act user.Actor, np NewPlacement) (Placement, error) {
	if !act.IsPlacementManager() && !act.IsAdmin() {
		return Placement{}, ErrUnauthorized
	}

	p := Placement{
		Company:      np.Company,
		Role:         np.Role,
		Description:  np.Description,
		Requirements: np.Requirements,
		Package:      np.Package,
		CourseIDs:    np.CourseIDs,
		DriveDate:    core.NormalizeDate(np.DriveDate),
		Deadline:     core.NormalizeDate(np.Deadline),
		CreatedBy:    act.UserID,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	p, err := svc.repo.CreatePlacement(p)
	if err != nil {
		return Placement{}, err
	}
	svc.announce(p)
	return p, nil
}

func (svc *Service) announce(p Placement) {
	title := "New placement: " + p.Company
	msg := fmt.Sprintf("%s is hiring for %s. Apply before %s.", p.Company, p.Role, p.Deadline.Format("2006-01-02"))

	var emails []*core.EmailMessage
	for _, courseID := range p.CourseIDs {
		students, err := svc.users.CourseStudents(courseID)
		if err != nil {
			continue
		}
		for _, st := range students {
			if !st.IsActive || st.AdmissionStatus.String != user.AdmissionApproved {
				continue
			}
			_, _ = svc.notifs.CreateForPlacement(st.ID, p.ID, title, msg, notification.TypeInfo)
			emails = append(emails, &core.EmailMessage{
				To:           []mail.Address{{Name: st.Name, Address: st.Email}},
				Subject:      svc.conf.AppName + " - " + title,
				TemplateName: "placement-announced",
				TemplateData: struct {
					Student   user.User
					Placement Placement
				}{st, p},
			})
		}
	}
	if len(emails) > 0 {
		svc.mailSvc.SendMessages(emails...)
	}
}

func (svc *Service) QueryAll() ([]Placement, error) {
	return svc.repo.QueryAllPlacements()
}

func (svc *Service) GetByID(id string) (Placement, error) {
	return svc.repo.GetPlacementByID(id)
}

// EligibleForStudent lists active placements for the student's course, each
// flagged with the skill-gate result. The gate uses the completed resume's
// skills when one exists, the profile skills otherwise.
func (svc *Service) EligibleForStudent(studentID string) ([]Eligible, error) {
	st, err := svc.users.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	placements, err := svc.repo.QueryActivePlacementsByCourse(st.CourseID.String)
	if err != nil {
		return nil, err
	}

	skills := svc.skillsFor(st)
	eligible := make([]Eligible, 0, len(placements))
	for _, p := range placements {
		eligible = append(eligible, Eligible{
			Placement:  p,
			SkillMatch: svc.match(skills, p.Requirements),
		})
	}
	return eligible, nil
}

func (svc *Service) skillsFor(st user.User) []string {
	if resume, err := svc.repo.GetResumeByStudent(st.ID); err == nil && resume.IsCompleted {
		return resume.Skills
	}
	return st.Skills
}

// Matches reports whether the student passes the skill gate for a placement.
func (svc *Service) Matches(st user.User, p Placement) bool {
	return svc.match(svc.skillsFor(st), p.Requirements)
}

// MatchesResume is the skill gate over a completed resume only. Students
// without one never match; the deadline nudge targets students ready to apply.
func (svc *Service) MatchesResume(st user.User, p Placement) bool {
	resume, err := svc.repo.GetResumeByStudent(st.ID)
	if err != nil || !resume.IsCompleted {
		return false
	}
	return svc.match(resume.Skills, p.Requirements)
}

// Apply files a student's application. Applying twice is idempotent: the
// existing application comes back untouched. A pending auto leave for the
// drive date is created alongside, deduplicated by (student, date).
func (svc *Service) Apply(act user.Actor, placementID string) (Application, error) {
	if !act.IsStudent() {
		return Application{}, ErrUnauthorized
	}
	p, err := svc.repo.GetPlacementByID(placementID)
	if err != nil {
		return Application{}, err
	}
	if !p.IsActive || core.Today().After(p.Deadline) {
		return Application{}, ErrClosed
	}

	if existing, err := svc.repo.GetApplication(p.ID, act.UserID); err == nil {
		return existing, nil
	} else if errors.Cause(err) != ErrAppNotFound {
		return Application{}, err
	}

	app := Application{
		PlacementID: p.ID,
		StudentID:   act.UserID,
		Status:      AppInterested,
		AppliedAt:   time.Now().UTC(),
	}
	app, err = svc.repo.CreateApplication(app)
	if err != nil {
		return Application{}, err
	}

	reason := "Placement Drive - " + p.Company
	if _, err := svc.leaves.CreateAuto(act.UserID, act.SectionID, p.ID, reason, p.DriveDate); err != nil {
		return Application{}, errors.Wrap(err, "filing auto leave")
	}
	return app, nil
}

// Applications lists a placement's applications for its manager.
func (svc *Service) Applications(act user.Actor, placementID string) ([]Application, error) {
	if !act.IsPlacementManager() && !act.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if _, err := svc.repo.GetPlacementByID(placementID); err != nil {
		return nil, err
	}
	return svc.repo.QueryApplicationsByPlacement(placementID)
}

// UpdateApplicationStatus moves an application to any stage and notifies
// the student. No transition order is enforced.
func (svc *Service) UpdateApplicationStatus(act user.Actor, appID, status string) (Application, error) {
	if !act.IsPlacementManager() && !act.IsAdmin() {
		return Application{}, ErrUnauthorized
	}
	if !ValidAppStatus(status) {
		return Application{}, ErrInvalidStatus
	}
	app, err := svc.repo.GetApplicationByID(appID)
	if err != nil {
		return Application{}, err
	}
	app.Status = status
	app, err = svc.repo.UpdateApplication(app)
	if err != nil {
		return Application{}, err
	}

	if p, err := svc.repo.GetPlacementByID(app.PlacementID); err == nil {
		title := "Application update: " + p.Company
		msg := fmt.Sprintf("Your application for %s at %s moved to %q.", p.Role, p.Company, status)
		_, _ = svc.notifs.CreateForPlacement(app.StudentID, p.ID, title, msg, notification.TypeInfo)
	}
	return app, nil
}

// UpsertResume creates or replaces the student's resume.
func (svc *Service) UpsertResume(studentID string, nr NewResume) (Resume, error) {
	r := Resume{
		StudentID:   studentID,
		Skills:      nr.Skills,
		Education:   nr.Education,
		Experience:  nr.Experience,
		Projects:    nr.Projects,
		Links:       nr.Links,
		Summary:     nr.Summary,
		IsCompleted: len(nr.Skills) > 0 && nr.Education != "",
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpsertResume(r)
}

func (svc *Service) GetResume(studentID string) (Resume, error) {
	return svc.repo.GetResumeByStudent(studentID)
}

// scheduler support

// ByDriveDate lists placements whose drive falls on the given day.
func (svc *Service) ByDriveDate(date time.Time) ([]Placement, error) {
	return svc.repo.QueryPlacementsByDriveDate(core.NormalizeDate(date))
}

// ClosingBetween lists placements whose deadline falls within [from, to].
func (svc *Service) ClosingBetween(from, to time.Time) ([]Placement, error) {
	return svc.repo.QueryPlacementsClosingBetween(core.NormalizeDate(from), core.NormalizeDate(to))
}
