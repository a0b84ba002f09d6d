package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kampus/core/leave"
)

type leaveRepository struct {
	db *sqlx.DB
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(db *sqlx.DB) leave.Repository {
	return &leaveRepository{db: db}
}

type leaveRow struct {
	ID                    string      `db:"id"`
	StudentID             string      `db:"student_id"`
	SectionID             string      `db:"section_id"`
	Date                  time.Time   `db:"date"`
	Reason                string      `db:"reason"`
	Status                string      `db:"status"`
	ApprovedByAdvisor     null.String `db:"approved_by_advisor"`
	ApprovedByCoordinator null.String `db:"approved_by_coordinator"`
	ApprovedByHOD         null.String `db:"approved_by_hod"`
	RejectedBy            null.String `db:"rejected_by"`
	RejectionReason       null.String `db:"rejection_reason"`
	IsAutoApplied         bool        `db:"is_auto_applied"`
	PlacementID           null.String `db:"placement_id"`
	CreatedAt             time.Time   `db:"created_at"`
}

func (r leaveRow) toCore() leave.Leave { return leave.Leave(r) }

func (repo *leaveRepository) CreateLeave(l leave.Leave) (leave.Leave, error) {
	query := `
		INSERT INTO leave (student_id, section_id, date, reason, status, approved_by_advisor,
		                   approved_by_coordinator, approved_by_hod, rejected_by, rejection_reason,
		                   is_auto_applied, placement_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := repo.db.Get(&l.ID, query,
		l.StudentID, l.SectionID, l.Date, l.Reason, l.Status, l.ApprovedByAdvisor,
		l.ApprovedByCoordinator, l.ApprovedByHOD, l.RejectedBy, l.RejectionReason,
		l.IsAutoApplied, l.PlacementID, l.CreatedAt)
	if err != nil {
		return leave.Leave{}, errors.Wrap(err, "creating leave")
	}
	return l, nil
}

func (repo *leaveRepository) getLeave(query string, args ...interface{}) (leave.Leave, error) {
	var row leaveRow
	if err := repo.db.Get(&row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return leave.Leave{}, leave.ErrNotFound
		}
		return leave.Leave{}, errors.Wrap(err, "getting leave")
	}
	return row.toCore(), nil
}

func (repo *leaveRepository) GetLeaveByID(id string) (leave.Leave, error) {
	return repo.getLeave(`SELECT * FROM leave WHERE id = $1`, id)
}

func (repo *leaveRepository) GetLeaveByStudentDate(studentID string, date time.Time) (leave.Leave, error) {
	return repo.getLeave(`SELECT * FROM leave WHERE student_id = $1 AND date = $2`, studentID, date)
}

func (repo *leaveRepository) queryLeaves(query string, args ...interface{}) ([]leave.Leave, error) {
	var rows []leaveRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying leaves")
	}
	leaves := make([]leave.Leave, 0, len(rows))
	for _, row := range rows {
		leaves = append(leaves, row.toCore())
	}
	return leaves, nil
}

func (repo *leaveRepository) QueryLeavesByStudent(studentID string) ([]leave.Leave, error) {
	return repo.queryLeaves(`SELECT * FROM leave WHERE student_id = $1 ORDER BY date DESC`, studentID)
}

func (repo *leaveRepository) QueryLeavesBySectionStatus(sectionID, status string) ([]leave.Leave, error) {
	query := `SELECT * FROM leave WHERE section_id = $1 AND status = $2 ORDER BY date`
	return repo.queryLeaves(query, sectionID, status)
}

func (repo *leaveRepository) QueryLeavesByCourseStatus(courseID, status string) ([]leave.Leave, error) {
	query := `
		SELECT l.* FROM leave l
		JOIN section s ON s.id = l.section_id
		WHERE s.course_id = $1 AND l.status = $2
		ORDER BY l.date`
	return repo.queryLeaves(query, courseID, status)
}

func (repo *leaveRepository) UpdateLeave(l leave.Leave) (leave.Leave, error) {
	query := `
		UPDATE leave
		SET status = $1, approved_by_advisor = $2, approved_by_coordinator = $3, approved_by_hod = $4,
		    rejected_by = $5, rejection_reason = $6
		WHERE id = $7`
	res, err := repo.db.Exec(query,
		l.Status, l.ApprovedByAdvisor, l.ApprovedByCoordinator, l.ApprovedByHOD,
		l.RejectedBy, l.RejectionReason, l.ID)
	if err != nil {
		return leave.Leave{}, errors.Wrap(err, "updating leave")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.Leave{}, leave.ErrNotFound
	}
	return l, nil
}
