package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kampus/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

type attendanceRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	SubjectID string    `db:"subject_id"`
	SectionID string    `db:"section_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
	MarkedBy  string    `db:"marked_by"`
	CreatedAt time.Time `db:"created_at"`
}

func (r attendanceRow) toCore() attendance.Attendance { return attendance.Attendance(r) }

func (repo *attendanceRepository) queryAttendance(query string, args ...interface{}) ([]attendance.Attendance, error) {
	var rows []attendanceRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	marks := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, row.toCore())
	}
	return marks, nil
}

func (repo *attendanceRepository) QueryByStudent(studentID string) ([]attendance.Attendance, error) {
	return repo.queryAttendance(`SELECT * FROM attendance WHERE student_id = $1 ORDER BY date DESC`, studentID)
}

func (repo *attendanceRepository) QueryBySlotDate(subjectID, sectionID string, date time.Time) ([]attendance.Attendance, error) {
	query := `SELECT * FROM attendance WHERE subject_id = $1 AND section_id = $2 AND date = $3`
	return repo.queryAttendance(query, subjectID, sectionID, date)
}

const insertAttendance = `
	INSERT INTO attendance (student_id, subject_id, section_id, date, status, marked_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// ReplaceMarks clears prior rows for the slot and day and inserts the new
// marks, keeping leave rows authoritative: existing leave rows survive and
// suppress the incoming mark for that student.
func (repo *attendanceRepository) ReplaceMarks(subjectID, sectionID string, date time.Time, rows []attendance.Attendance) error {
	return inTx(repo.db, func(tx *sqlx.Tx) error {
		del := `
			DELETE FROM attendance
			WHERE subject_id = $1 AND section_id = $2 AND date = $3 AND status <> $4`
		if _, err := tx.Exec(del, subjectID, sectionID, date, attendance.StatusLeave); err != nil {
			return errors.Wrap(err, "clearing attendance marks")
		}

		var onLeave []string
		sel := `
			SELECT student_id FROM attendance
			WHERE subject_id = $1 AND section_id = $2 AND date = $3 AND status = $4`
		if err := tx.Select(&onLeave, sel, subjectID, sectionID, date, attendance.StatusLeave); err != nil {
			return errors.Wrap(err, "querying leave marks")
		}
		leaveSet := make(map[string]struct{}, len(onLeave))
		for _, id := range onLeave {
			leaveSet[id] = struct{}{}
		}

		for _, a := range rows {
			if _, ok := leaveSet[a.StudentID]; ok {
				continue
			}
			_, err := tx.Exec(insertAttendance,
				a.StudentID, a.SubjectID, a.SectionID, a.Date, a.Status, a.MarkedBy, a.CreatedAt)
			if err != nil {
				return errors.Wrap(err, "inserting attendance mark")
			}
		}
		return nil
	})
}

// ReplaceStudentDayWithLeave clears the student's rows for the day, scoped
// to the given subjects, and inserts the leave rows.
func (repo *attendanceRepository) ReplaceStudentDayWithLeave(studentID string, date time.Time, subjectIDs []string, rows []attendance.Attendance) error {
	return inTx(repo.db, func(tx *sqlx.Tx) error {
		del := `
			DELETE FROM attendance
			WHERE student_id = $1 AND date = $2 AND subject_id = ANY($3)`
		if _, err := tx.Exec(del, studentID, date, pq.Array(subjectIDs)); err != nil {
			return errors.Wrap(err, "clearing attendance marks")
		}
		for _, a := range rows {
			_, err := tx.Exec(insertAttendance,
				a.StudentID, a.SubjectID, a.SectionID, a.Date, a.Status, a.MarkedBy, a.CreatedAt)
			if err != nil {
				return errors.Wrap(err, "inserting leave mark")
			}
		}
		return nil
	})
}
