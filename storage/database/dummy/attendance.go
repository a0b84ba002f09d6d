package dummydb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kampus/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) QueryByStudent(studentID string) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []attendance.Attendance
	for _, a := range repo.db.table {
		if a.StudentID == studentID {
			rows = append(rows, *a)
		}
	}
	sortRows(rows)
	return rows, nil
}

func (repo *attendanceRepository) QueryBySlotDate(subjectID, sectionID string, date time.Time) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []attendance.Attendance
	for _, a := range repo.db.table {
		if a.SubjectID == subjectID && a.SectionID == sectionID && a.Date.Equal(date) {
			rows = append(rows, *a)
		}
	}
	sortRows(rows)
	return rows, nil
}

func (repo *attendanceRepository) ReplaceMarks(subjectID, sectionID string, date time.Time, rows []attendance.Attendance) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, a := range repo.db.table {
		if a.SubjectID == subjectID && a.SectionID == sectionID && a.Date.Equal(date) &&
			a.Status != attendance.StatusLeave {
			delete(repo.db.table, id)
		}
	}
	for _, row := range rows {
		// a leave row written by the reconciler wins over a new mark
		if repo.hasLeaveRow(row.StudentID, row.SubjectID, date) {
			continue
		}
		row.ID = uuid.New().String()
		stored := row
		repo.db.table[row.ID] = &stored
	}
	return nil
}

func (repo *attendanceRepository) hasLeaveRow(studentID, subjectID string, date time.Time) bool {
	for _, a := range repo.db.table {
		if a.StudentID == studentID && a.SubjectID == subjectID && a.Date.Equal(date) &&
			a.Status == attendance.StatusLeave {
			return true
		}
	}
	return false
}

func (repo *attendanceRepository) ReplaceStudentDayWithLeave(studentID string, date time.Time, subjectIDs []string, rows []attendance.Attendance) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	subjects := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		subjects[id] = true
	}

	for id, a := range repo.db.table {
		if a.StudentID == studentID && a.Date.Equal(date) && subjects[a.SubjectID] {
			delete(repo.db.table, id)
		}
	}
	for _, row := range rows {
		row.ID = uuid.New().String()
		stored := row
		repo.db.table[row.ID] = &stored
	}
	return nil
}

func sortRows(rows []attendance.Attendance) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].SubjectID < rows[j].SubjectID
	})
}
