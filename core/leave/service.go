package leave

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/course"
	"github.com/trezcool/kampus/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("leave not found")
	ErrUnauthorized      = errors.New("not allowed to act on this leave")
	ErrInvalidTransition = errors.New("leave is not in the required stage for this action")
)

type (
	Repository interface {
		CreateLeave(l Leave) (Leave, error)
		GetLeaveByID(id string) (Leave, error)
		GetLeaveByStudentDate(studentID string, date time.Time) (Leave, error)
		QueryLeavesByStudent(studentID string) ([]Leave, error)
		QueryLeavesBySectionStatus(sectionID, status string) ([]Leave, error)
		QueryLeavesByCourseStatus(courseID, status string) ([]Leave, error)
		UpdateLeave(l Leave) (Leave, error)
	}

	// Sections resolves a leave's section for scope checks and to find the
	// course owning it.
	Sections interface {
		GetSection(id string) (course.Section, error)
	}

	// Finalizer is notified after a leave reaches its terminal approved
	// stage. The attendance reconciler implements it; it runs synchronously
	// before the approval returns success.
	Finalizer interface {
		LeaveFinalized(l Leave, approvedBy string) error
	}

	Service struct {
		repo      Repository
		secs      Sections
		finalizer Finalizer
	}
)

func NewService(repo Repository, secs Sections, finalizer Finalizer) *Service {
	return &Service{
		repo:      repo,
		secs:      secs,
		finalizer: finalizer,
	}
}

// Create files a leave request for a student. The requesting actor must be
// that student.
func (svc *Service) Create(act user.Actor, nl NewLeave) (Leave, error) {
	if !act.IsStudent() {
		return Leave{}, ErrUnauthorized
	}
	l := Leave{
		StudentID: act.UserID,
		SectionID: act.SectionID,
		Date:      core.NormalizeDate(nl.Date),
		Reason:    nl.Reason,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateLeave(l)
}

// CreateAuto files a pending leave on behalf of a student who applied to a
// placement drive, deduplicated by (student, date): if the student already
// has a leave on that day the existing one is returned untouched.
func (svc *Service) CreateAuto(studentID, sectionID, placementID, reason string, date time.Time) (Leave, error) {
	day := core.NormalizeDate(date)
	if existing, err := svc.repo.GetLeaveByStudentDate(studentID, day); err == nil {
		return existing, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Leave{}, err
	}

	if reason == "" {
		reason = "Placement Drive"
	}
	l := Leave{
		StudentID:     studentID,
		SectionID:     sectionID,
		Date:          day,
		Reason:        reason,
		Status:        StatusPending,
		IsAutoApplied: true,
		PlacementID:   null.StringFrom(placementID),
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateLeave(l)
}

func (svc *Service) GetByID(id string) (Leave, error) {
	return svc.repo.GetLeaveByID(id)
}

func (svc *Service) QueryByStudent(studentID string) ([]Leave, error) {
	return svc.repo.QueryLeavesByStudent(studentID)
}

// QueryPending lists the leaves awaiting the actor's stage of review,
// scoped to their section or course.
func (svc *Service) QueryPending(act user.Actor) ([]Leave, error) {
	switch act.Kind {
	case user.ActorClassAdvisor:
		return svc.repo.QueryLeavesBySectionStatus(act.SectionID, StatusPending)
	case user.ActorCoordinator:
		return svc.repo.QueryLeavesByCourseStatus(act.CourseID, StatusApprovedByAdvisor)
	case user.ActorHOD:
		return svc.repo.QueryLeavesByCourseStatus(act.CourseID, StatusApprovedByCoordinator)
	}
	return nil, ErrUnauthorized
}

// Approve advances a leave one stage. Each stage belongs to exactly one
// actor kind; approving from any other stage is an invalid transition, so
// stage-skipping is impossible. When the HOD stage completes, the finalizer
// runs before success is returned.
func (svc *Service) Approve(act user.Actor, id string) (Leave, error) {
	l, err := svc.repo.GetLeaveByID(id)
	if err != nil {
		return Leave{}, err
	}

	sec, err := svc.secs.GetSection(l.SectionID)
	if err != nil {
		return Leave{}, err
	}

	switch act.Kind {
	case user.ActorClassAdvisor:
		if act.SectionID != sec.ID {
			return Leave{}, ErrUnauthorized
		}
		if l.Status != StatusPending {
			return Leave{}, ErrInvalidTransition
		}
		l.Status = StatusApprovedByAdvisor
		l.ApprovedByAdvisor = null.StringFrom(act.UserID)

	case user.ActorCoordinator:
		if act.CourseID != sec.CourseID {
			return Leave{}, ErrUnauthorized
		}
		if l.Status != StatusApprovedByAdvisor {
			return Leave{}, ErrInvalidTransition
		}
		l.Status = StatusApprovedByCoordinator
		l.ApprovedByCoordinator = null.StringFrom(act.UserID)

	case user.ActorHOD:
		if act.CourseID != sec.CourseID {
			return Leave{}, ErrUnauthorized
		}
		if l.Status != StatusApprovedByCoordinator {
			return Leave{}, ErrInvalidTransition
		}
		l.Status = StatusApprovedByHOD
		l.ApprovedByHOD = null.StringFrom(act.UserID)

	default:
		return Leave{}, ErrUnauthorized
	}

	l, err = svc.repo.UpdateLeave(l)
	if err != nil {
		return Leave{}, err
	}

	if l.Status == StatusApprovedByHOD && svc.finalizer != nil {
		if err := svc.finalizer.LeaveFinalized(l, act.UserID); err != nil {
			return Leave{}, errors.Wrap(err, "finalizing leave")
		}
	}
	return l, nil
}

// Reject terminates a leave from any non-terminal stage. The actor must
// hold one of the reviewing roles for the leave's section or course, and a
// reason is mandatory.
func (svc *Service) Reject(act user.Actor, id string, rej Rejection) (Leave, error) {
	l, err := svc.repo.GetLeaveByID(id)
	if err != nil {
		return Leave{}, err
	}

	sec, err := svc.secs.GetSection(l.SectionID)
	if err != nil {
		return Leave{}, err
	}

	switch act.Kind {
	case user.ActorClassAdvisor:
		if act.SectionID != sec.ID {
			return Leave{}, ErrUnauthorized
		}
	case user.ActorCoordinator, user.ActorHOD:
		if act.CourseID != sec.CourseID {
			return Leave{}, ErrUnauthorized
		}
	default:
		return Leave{}, ErrUnauthorized
	}

	if l.Terminal() {
		return Leave{}, ErrInvalidTransition
	}

	l.Status = StatusRejected
	l.RejectedBy = null.StringFrom(act.UserID)
	l.RejectionReason = null.StringFrom(rej.Reason)
	return svc.repo.UpdateLeave(l)
}

// ApprovedOn reports whether the student holds a fully approved leave for
// the given day. Faculty attendance marking records such students as on
// leave regardless of the submitted status.
func (svc *Service) ApprovedOn(studentID string, date time.Time) (bool, error) {
	l, err := svc.repo.GetLeaveByStudentDate(studentID, core.NormalizeDate(date))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return l.Status == StatusApprovedByHOD, nil
}
