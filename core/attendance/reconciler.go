package attendance

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core"
	"github.com/trezcool/kampus/core/leave"
	"github.com/trezcool/kampus/core/timetable"
)

// DayEntries lists a section's active timetable entries on a weekday.
type DayEntries interface {
	ActiveEntriesOn(sectionID, weekday string) ([]timetable.Entry, error)
}

// Reconciler materializes authoritative leave marks when a leave request
// completes its approval chain. It implements leave.Finalizer.
type Reconciler struct {
	repo    Repository
	entries DayEntries
}

var _ leave.Finalizer = (*Reconciler)(nil)

func NewReconciler(repo Repository, entries DayEntries) *Reconciler {
	return &Reconciler{repo: repo, entries: entries}
}

// LeaveFinalized overwrites the student's attendance for the leave date:
// every active timetable entry of their section on that weekday gets a
// leave row marked by the approving HOD. Prior rows for those subjects are
// removed in the same unit of work; subjects with no class that day are
// left untouched.
func (r *Reconciler) LeaveFinalized(l leave.Leave, approvedBy string) error {
	weekday := core.WeekdayName(l.Date)
	entries, err := r.entries.ActiveEntriesOn(l.SectionID, weekday)
	if err != nil {
		return errors.Wrap(err, "resolving day entries")
	}
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	date := core.NormalizeDate(l.Date)
	subjectIDs := make([]string, 0, len(entries))
	rows := make([]Attendance, 0, len(entries))
	for _, entry := range entries {
		subjectIDs = append(subjectIDs, entry.SubjectID)
		rows = append(rows, Attendance{
			StudentID: l.StudentID,
			SubjectID: entry.SubjectID,
			SectionID: l.SectionID,
			Date:      date,
			Status:    StatusLeave,
			MarkedBy:  approvedBy,
			CreatedAt: now,
		})
	}

	if err := r.repo.ReplaceStudentDayWithLeave(l.StudentID, date, subjectIDs, rows); err != nil {
		return errors.Wrap(err, "replacing day with leave")
	}
	return nil
}
