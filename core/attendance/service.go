package attendance

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/timetable"
	"github.com/trezcool/kampus/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("attendance record not found")
	ErrUnauthorized  = errors.New("not allowed to mark attendance for this lecture")
	ErrInvalidStatus = errors.New("invalid attendance status")
)

type (
	Repository interface {
		QueryByStudent(studentID string) ([]Attendance, error)
		QueryBySlotDate(subjectID, sectionID string, date time.Time) ([]Attendance, error)
		// ReplaceMarks deletes prior non-leave rows for (subject, section,
		// date) and inserts rows, as one unit of work.
		ReplaceMarks(subjectID, sectionID string, date time.Time, rows []Attendance) error
		// ReplaceStudentDayWithLeave deletes the student's rows for date
		// scoped to subjectIDs and inserts rows, as one unit of work.
		ReplaceStudentDayWithLeave(studentID string, date time.Time, subjectIDs []string, rows []Attendance) error
	}

	// Entries resolves timetable slots.
	Entries interface {
		GetByID(id string) (timetable.Entry, error)
	}

	// LeaveChecker reports whether a student holds a fully approved leave
	// for a day.
	LeaveChecker interface {
		ApprovedOn(studentID string, date time.Time) (bool, error)
	}

	Service struct {
		repo    Repository
		entries Entries
		leaves  LeaveChecker
	}
)

func NewService(repo Repository, entries Entries, leaves LeaveChecker) *Service {
	return &Service{
		repo:    repo,
		entries: entries,
		leaves:  leaves,
	}
}

// Mark records today's attendance for a lecture slot in bulk. Only the
// faculty member teaching the slot (or an admin) may mark it. A student
// holding an approved leave for the day is recorded as on leave no matter
// what the faculty submitted. Prior non-leave rows for the slot and day are
// replaced.
func (svc *Service) Mark(act user.Actor, timetableID string, marks map[string]string) ([]Attendance, error) {
	entry, err := svc.entries.GetByID(timetableID)
	if err != nil {
		return nil, err
	}
	if !act.IsAdmin() && (!act.IsStaff() || act.UserID != entry.FacultyID) {
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	date := core.Today()
	rows := make([]Attendance, 0, len(marks))
	for studentID, status := range marks {
		if !ValidStatus(status) {
			return nil, ErrInvalidStatus
		}
		onLeave, err := svc.leaves.ApprovedOn(studentID, date)
		if err != nil {
			return nil, err
		}
		if onLeave {
			status = StatusLeave
		}
		rows = append(rows, Attendance{
			StudentID: studentID,
			SubjectID: entry.SubjectID,
			SectionID: entry.SectionID,
			Date:      date,
			Status:    status,
			MarkedBy:  act.UserID,
			CreatedAt: now,
		})
	}

	if err := svc.repo.ReplaceMarks(entry.SubjectID, entry.SectionID, date, rows); err != nil {
		return nil, errors.Wrap(err, "replacing attendance marks")
	}
	return svc.repo.QueryBySlotDate(entry.SubjectID, entry.SectionID, date)
}

// SlotMarks lists today's recorded marks for a lecture slot.
func (svc *Service) SlotMarks(timetableID string) ([]Attendance, error) {
	entry, err := svc.entries.GetByID(timetableID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryBySlotDate(entry.SubjectID, entry.SectionID, core.Today())
}

// StudentSummary aggregates a student's marks per subject with an
// attendance percentage.
func (svc *Service) StudentSummary(studentID string) ([]SubjectSummary, error) {
	rows, err := svc.repo.QueryByStudent(studentID)
	if err != nil {
		return nil, err
	}

	bySubject := make(map[string]*SubjectSummary)
	order := make([]string, 0)
	for _, row := range rows {
		sum, ok := bySubject[row.SubjectID]
		if !ok {
			sum = &SubjectSummary{SubjectID: row.SubjectID}
			bySubject[row.SubjectID] = sum
			order = append(order, row.SubjectID)
		}
		sum.Total++
		switch row.Status {
		case StatusPresent:
			sum.Present++
		case StatusAbsent:
			sum.Absent++
		case StatusLeave:
			sum.Leave++
		}
	}

	summaries := make([]SubjectSummary, 0, len(order))
	for _, subjectID := range order {
		sum := bySubject[subjectID]
		if sum.Total > 0 {
			sum.Percentage = float64(sum.Present) / float64(sum.Total) * 100
		}
		summaries = append(summaries, *sum)
	}
	return summaries, nil
}
